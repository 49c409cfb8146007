package service

import (
	"time"

	"go.uber.org/zap"

	"shop-api/internal/core/auth"
	"shop-api/internal/core/cache"
	"shop-api/internal/core/events"
	"shop-api/internal/repo"
)

// 列表接口的单次上限
const listLimit = 100

type Deps struct {
	Repos      *repo.Repositories
	Cache      *cache.Cache // 可为 nil
	ProductTTL time.Duration
	Events     events.Publisher // 可为 nil
	JWT        *auth.JWTer
	Logger     *zap.Logger
}

type Services struct {
	Users    *UserService
	Catalog  *CatalogService
	Cart     *CartService
	Orders   *OrderService
	Chat     *ChatService
	Feedback *FeedbackService
}

func New(d Deps) *Services {
	l := d.Logger
	if l == nil {
		l = zap.NewNop()
	}
	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}
	catalog := NewCatalogService(d.Repos.Products, d.Repos.Sellers, d.Cache, d.ProductTTL, l)
	cart := NewCartService(d.Repos.Carts, catalog, l)
	return &Services{
		Users:    NewUserService(d.Repos.Users, d.JWT, l),
		Catalog:  catalog,
		Cart:     cart,
		Orders:   NewOrderService(d.Repos.Orders, cart, catalog, pub, l),
		Chat:     NewChatService(d.Repos.Chats, catalog, pub, l),
		Feedback: NewFeedbackService(d.Repos.Feedback, catalog, l),
	}
}

// pageOf page 从 1 开始；size 超界回落到默认 20
func pageOf(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > listLimit {
		size = 20
	}
	return (page - 1) * size, size
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
