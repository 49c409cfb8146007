package domain

import (
	"context"
	"time"
)

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id,omitempty"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Feedback, error)
}
