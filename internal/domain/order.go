package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPaid = "Paid"

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (a ShippingAddress) IsZero() bool {
	return a.Name == "" && a.Phone == "" && a.Address == ""
}

// Order 创建后不可变；Total 为下单时目录价 × 数量之和
type Order struct {
	ID        string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Lines     []OrderLine     `json:"items"`
	Address   ShippingAddress `json:"address"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total_price"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderRepository interface {
	// Create 订单头与明细一次性写入；ID 为空时由存储生成
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
	// FindForUser id 与 owner 同时匹配才返回
	FindForUser(ctx context.Context, orderID, userID string) (*Order, error)
}
