package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop-api/internal/domain"
	"shop-api/internal/feature/cart"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

// AddLine 依赖 uk_cart_user_product，单条 upsert 完成"有则累加、无则追加"
func (r *CartRepo) AddLine(ctx context.Context, userID string, line domain.CartLine) error {
	m := &cart.LineModel{
		UserID:    userID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		Price:     line.Price,
		Image:     line.Image,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_lines.quantity + ?", line.Quantity),
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var ms []cart.LineModel
	if err := byInsertion(r.db.WithContext(ctx).Where("user_id = ?", userID)).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	if len(ms) == 0 {
		return nil, nil
	}
	out := make([]domain.CartLine, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}

func (r *CartRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&cart.LineModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, fmt.Errorf("set cart quantity: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var n int64
	if err := db.Model(&cart.LineModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CartRepo) RemoveLine(ctx context.Context, userID, productID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&cart.LineModel{})
	if res.Error != nil {
		return false, fmt.Errorf("remove cart line: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *CartRepo) RemoveLines(ctx context.Context, userID string, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&cart.LineModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("remove cart lines: %w", res.Error)
	}
	return res.RowsAffected, nil
}
