package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-api/internal/core/events"
	"shop-api/internal/domain"
)

const createdAtLayout = time.RFC3339

type CreateOrderInput struct {
	Lines    []domain.OrderLine
	Address  domain.ShippingAddress
	FromCart bool // 为真时下单后从购物车移除这些商品
}

type OrderItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
}

type OrderView struct {
	OrderID    string                  `json:"order_id"`
	Status     string                  `json:"status"`
	TotalPrice decimal.Decimal         `json:"total_price"`
	Address    *domain.ShippingAddress `json:"address,omitempty"`
	Items      []OrderItem             `json:"items"`
	CreatedAt  string                  `json:"created_at"`
}

type OrderService struct {
	orders  domain.OrderRepository
	cart    *CartService
	catalog *CatalogService
	events  events.Publisher
	l       *zap.Logger
	now     func() time.Time
}

func NewOrderService(orders domain.OrderRepository, cart *CartService, catalog *CatalogService, pub events.Publisher, l *zap.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		cart:    cart,
		catalog: catalog,
		events:  pub,
		l:       l.Named("order"),
		now:     time.Now,
	}
}

func validateOrder(in CreateOrderInput) error {
	if len(in.Lines) == 0 {
		return domain.InvalidArgument("Cart items are required")
	}
	if in.Address.IsZero() {
		return domain.InvalidArgument("Address is required")
	}
	if err := in.Address.Validate(); err != nil {
		return err
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.InvalidArgument("product_id is required")
		}
		if err := domain.CheckLen("product_id", l.ProductID, domain.MaxIDLen); err != nil {
			return err
		}
		if l.Quantity <= 0 {
			return domain.InvalidArgument("Quantity must be greater than 0")
		}
	}
	return nil
}

// CreateOrder 任一商品不存在则整单拒绝；总价按当前目录价计算并随订单落库
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*domain.Order, error) {
	if err := validateOrder(in); err != nil {
		return nil, err
	}
	ids := make([]string, len(in.Lines))
	for i, l := range in.Lines {
		ids[i] = l.ProductID
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, l := range in.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, domain.NotFound("Product %s not found", l.ProductID)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	o := &domain.Order{
		UserID:    userID,
		Lines:     append([]domain.OrderLine(nil), in.Lines...),
		Address:   in.Address,
		Status:    domain.OrderStatusPaid,
		Total:     total,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	s.l.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID),
		zap.String("total", total.StringFixed(2)),
		zap.Int("lines", len(o.Lines)),
	)

	// 订单已落库，后续步骤失败只记日志
	if in.FromCart {
		if n, err := s.cart.RemoveItems(ctx, userID, ids); err != nil {
			s.l.Warn("remove ordered lines from cart", zap.String("order_id", o.ID), zap.Error(err))
		} else {
			s.l.Debug("cart lines removed", zap.String("order_id", o.ID), zap.Int64("removed", n))
		}
	}
	s.publish(ctx, events.Event{
		Type:       events.TypeOrderCreated,
		Key:        userID,
		OccurredAt: o.CreatedAt,
		Payload: map[string]any{
			"order_id":    o.ID,
			"user_id":     userID,
			"total_price": total.StringFixed(2),
			"items":       o.Lines,
		},
	})
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.l.Warn("publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}

func (s *OrderService) view(o domain.Order, products map[string]domain.Product) OrderView {
	items := make([]OrderItem, 0, len(o.Lines))
	for _, l := range o.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		items = append(items, OrderItem{
			ProductID:   l.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Quantity:    l.Quantity,
			Image:       p.PrimaryImage(),
			Price:       p.Price,
		})
	}
	return OrderView{
		OrderID:    o.ID,
		Status:     o.Status,
		TotalPrice: o.Total,
		Items:      items,
		CreatedAt:  o.CreatedAt.UTC().Format(createdAtLayout),
	}
}

// ListOrders 没有订单返回 NotFound
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.NotFound("No orders found")
	}
	var ids []string
	for _, o := range orders {
		for _, l := range o.Lines {
			ids = append(ids, l.ProductID)
		}
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, len(orders))
	for i, o := range orders {
		out[i] = s.view(o, products)
	}
	return out, nil
}

// OrderDetails id 与 owner 都匹配才返回；已下架商品的行省略
func (s *OrderService) OrderDetails(ctx context.Context, orderID, userID string) (*OrderView, error) {
	o, err := s.orders.FindForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("Order not found")
	}
	ids := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		ids[i] = l.ProductID
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	v := s.view(*o, products)
	addr := o.Address
	v.Address = &addr
	return &v, nil
}
