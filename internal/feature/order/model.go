package order

import (
	"time"

	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
)

type OrderModel struct {
	ID          string          `gorm:"primaryKey;type:varchar(32)"`
	UserID      string          `gorm:"index:idx_orders_user_created,priority:1;type:varchar(32);not null"`
	ShipName    string          `gorm:"size:64"`
	ShipPhone   string          `gorm:"size:32"`
	ShipAddress string          `gorm:"size:512"`
	Status      string          `gorm:"size:16;not null"`
	Total       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time       `gorm:"index:idx_orders_user_created,priority:2"`

	Items []ItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string { return "orders" }

type ItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"index;type:varchar(32);not null"`
	ProductID string `gorm:"type:varchar(32);not null"`
	Quantity  int    `gorm:"not null"`
}

func (ItemModel) TableName() string { return "order_items" }

func (m *OrderModel) ToDomain() domain.Order {
	o := domain.Order{
		ID:     m.ID,
		UserID: m.UserID,
		Address: domain.ShippingAddress{
			Name:    m.ShipName,
			Phone:   m.ShipPhone,
			Address: m.ShipAddress,
		},
		Status:    m.Status,
		Total:     m.Total,
		CreatedAt: m.CreatedAt.UTC(),
	}
	o.Lines = make([]domain.OrderLine, len(m.Items))
	for i, it := range m.Items {
		o.Lines[i] = domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return o
}

func FromDomain(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:          o.ID,
		UserID:      o.UserID,
		ShipName:    o.Address.Name,
		ShipPhone:   o.Address.Phone,
		ShipAddress: o.Address.Address,
		Status:      o.Status,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
	}
	m.Items = make([]ItemModel, len(o.Lines))
	for i, l := range o.Lines {
		m.Items[i] = ItemModel{OrderID: o.ID, ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return m
}
