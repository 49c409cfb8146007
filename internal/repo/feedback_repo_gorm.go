package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shop-api/internal/domain"
	"shop-api/internal/feature/feedback"
	"shop-api/pkg/utils"
)

type FeedbackRepo struct{ db *gorm.DB }

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func (r *FeedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	if f.ID == "" {
		f.ID = utils.NewID()
	}
	m := &feedback.FeedbackModel{
		ID:        f.ID,
		UserID:    f.UserID,
		ProductID: f.ProductID,
		Content:   f.Content,
		Rating:    f.Rating,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	f.CreatedAt = m.CreatedAt
	return nil
}

func (r *FeedbackRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Feedback, error) {
	var ms []feedback.FeedbackModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(capped(limit)).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	out := make([]domain.Feedback, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}
