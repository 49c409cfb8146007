package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"shop-api/internal/domain"
	"shop-api/internal/feature/cart"
	"shop-api/internal/feature/catalog"
	"shop-api/internal/feature/chat"
	"shop-api/internal/feature/feedback"
	"shop-api/internal/feature/order"
	"shop-api/internal/feature/user"
)

// Repositories 各存储端口的集合，gorm 与 mongo 两套实现都装配成它
type Repositories struct {
	Users    domain.UserRepository
	Products domain.ProductRepository
	Sellers  domain.SellerRepository
	Carts    domain.CartRepository
	Orders   domain.OrderRepository
	Chats    domain.ChatRepository
	Feedback domain.FeedbackRepository
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepo(db),
		Products: NewProductRepo(db),
		Sellers:  NewSellerRepo(db),
		Carts:    NewCartRepo(db),
		Orders:   NewOrderRepo(db),
		Chats:    NewChatRepo(db),
		Feedback: NewFeedbackRepo(db),
	}
}

func Models() []any {
	return []any{
		&user.UserModel{}, &user.AddressModel{},
		&catalog.SellerModel{}, &catalog.ProductModel{},
		&cart.LineModel{},
		&order.OrderModel{}, &order.ItemModel{},
		&chat.RoomModel{}, &chat.MessageModel{},
		&feedback.FeedbackModel{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未做错误翻译时按消息兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func byInsertion(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// capped limit<=0 表示不限制（gorm 的 Limit(-1)）
func capped(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
