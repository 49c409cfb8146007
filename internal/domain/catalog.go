package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PrimaryImage image 优先，其次 images[0]
func (p *Product) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductFilter struct {
	Q        string
	SellerID string
	Offset   int
	Limit    int
}

type ProductRepository interface {
	// FindByIDs 不存在的 id 直接忽略，不报错
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) (found bool, err error)
	Delete(ctx context.Context, id string) (found bool, err error)
}

type SellerRepository interface {
	FindByID(ctx context.Context, id string) (*Seller, error)
	FindByIDs(ctx context.Context, ids []string) ([]Seller, error)
	Create(ctx context.Context, s *Seller) error
}
