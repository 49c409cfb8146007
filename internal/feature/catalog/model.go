package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
)

type ProductModel struct {
	ID          string          `gorm:"primaryKey;type:varchar(32)"`
	SellerID    string          `gorm:"index;type:varchar(32)"`
	Name        string          `gorm:"index;size:128;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Image       string          `gorm:"size:512"`
	Images      []string        `gorm:"serializer:json;type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProductModel) TableName() string { return "products" }

func (m *ProductModel) ToDomain() domain.Product {
	return domain.Product{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Image:       m.Image,
		Images:      m.Images,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ProductFromDomain(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Images:      p.Images,
	}
}

type SellerModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)"`
	Name      string    `gorm:"size:128;not null"`
	Image     string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SellerModel) TableName() string { return "sellers" }

func (m *SellerModel) ToDomain() domain.Seller {
	return domain.Seller{ID: m.ID, Name: m.Name, Image: m.Image, CreatedAt: m.CreatedAt}
}
