package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop-api/internal/domain"
	"shop-api/internal/feature/order"
	"shop-api/pkg/utils"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = utils.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	m := order.FromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	var ms []order.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", byInsertion).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(capped(limit)).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]domain.Order, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

func (r *OrderRepo) FindForUser(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	var m order.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", byInsertion).
		First(&m, "id = ? AND user_id = ?", orderID, userID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	o := m.ToDomain()
	return &o, nil
}
