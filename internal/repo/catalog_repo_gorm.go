package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shop-api/internal/domain"
	"shop-api/internal/feature/catalog"
	"shop-api/pkg/utils"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []catalog.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	out := make([]domain.Product, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var m catalog.ProductModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := m.ToDomain()
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&catalog.ProductModel{})
	if f.Q != "" {
		tx = tx.Where("name LIKE ?", "%"+f.Q+"%")
	}
	if f.SellerID != "" {
		tx = tx.Where("seller_id = ?", f.SellerID)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []catalog.ProductModel
	if err := tx.Order("created_at desc").Order("id").Offset(f.Offset).Limit(f.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Product, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, total, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	m := catalog.ProductFromDomain(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("product %s already exists", p.ID)
		}
		return fmt.Errorf("create product: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&catalog.ProductModel{ID: p.ID}).
		Select("seller_id", "name", "description", "price", "image", "images", "updated_at").
		Updates(catalog.ProductFromDomain(p))
	if res.Error != nil {
		return false, fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// mysql 值未变时 RowsAffected 为 0，再确认一次是否存在
	var n int64
	if err := db.Model(&catalog.ProductModel{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalog.ProductModel{})
	if res.Error != nil {
		return false, fmt.Errorf("delete product: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

type SellerRepo struct{ db *gorm.DB }

func NewSellerRepo(db *gorm.DB) *SellerRepo { return &SellerRepo{db: db} }

func (r *SellerRepo) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	var m catalog.SellerModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find seller: %w", err)
	}
	s := m.ToDomain()
	return &s, nil
}

func (r *SellerRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Seller, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []catalog.SellerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("find sellers: %w", err)
	}
	out := make([]domain.Seller, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

func (r *SellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	if s.ID == "" {
		s.ID = utils.NewID()
	}
	m := &catalog.SellerModel{ID: s.ID, Name: s.Name, Image: s.Image}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("seller %s already exists", s.ID)
		}
		return fmt.Errorf("create seller: %w", err)
	}
	s.CreatedAt = m.CreatedAt
	return nil
}
