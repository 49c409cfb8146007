package cart

import (
	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
)

// LineModel 一行一个商品；(user_id, product_id) 唯一，自增 ID 保证加入顺序
type LineModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	UserID    string          `gorm:"type:varchar(32);not null;uniqueIndex:uk_cart_user_product,priority:1"`
	ProductID string          `gorm:"type:varchar(32);not null;uniqueIndex:uk_cart_user_product,priority:2"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Image     string          `gorm:"size:512"`
}

func (LineModel) TableName() string { return "cart_lines" }

func (m *LineModel) ToDomain() domain.CartLine {
	return domain.CartLine{ProductID: m.ProductID, Quantity: m.Quantity, Price: m.Price, Image: m.Image}
}
