package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-api/internal/domain"
)

// CartItem 购物车展示行：名称、价格、图片取当前目录，SnapshotPrice 为加入时价格
type CartItem struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	SnapshotPrice decimal.Decimal `json:"snapshot_price"`
}

type CartService struct {
	carts   domain.CartRepository
	catalog *CatalogService
	l       *zap.Logger
}

func NewCartService(carts domain.CartRepository, catalog *CatalogService, l *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, l: l.Named("cart")}
}

// AddItem 快照价格/图片原样保存，不与目录核对
func (s *CartService) AddItem(ctx context.Context, userID string, line domain.CartLine) error {
	if line.Quantity <= 0 {
		return domain.InvalidArgument("Quantity must be greater than 0")
	}
	line.ProductID = strings.TrimSpace(line.ProductID)
	if line.ProductID == "" {
		return domain.InvalidArgument("product_id is required")
	}
	if err := domain.CheckLen("product_id", line.ProductID, domain.MaxIDLen); err != nil {
		return err
	}
	if err := domain.CheckLen("image", line.Image, domain.MaxImageLen); err != nil {
		return err
	}
	if err := domain.CheckPrice("price", line.Price); err != nil {
		return err
	}
	return s.carts.AddLine(ctx, userID, line)
}

// GetCart 没有购物车返回空列表；目录里已不存在的商品行直接略过
func (s *CartService) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]CartItem, 0, len(lines))
	if len(lines) == 0 {
		return out, nil
	}
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		out = append(out, CartItem{
			ProductID:     l.ProductID,
			Name:          p.Name,
			Quantity:      l.Quantity,
			Price:         p.Price,
			Image:         p.PrimaryImage(),
			SnapshotPrice: l.Price,
		})
	}
	return out, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.InvalidArgument("Quantity must be greater than 0")
	}
	found, err := s.carts.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("Cart item not found")
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	found, err := s.carts.RemoveLine(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("Cart item not found")
	}
	return nil
}

// RemoveItems 下单后清理购物车用；不存在的行忽略
func (s *CartService) RemoveItems(ctx context.Context, userID string, productIDs []string) (int64, error) {
	return s.carts.RemoveLines(ctx, userID, dedupe(productIDs))
}
