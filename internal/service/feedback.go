package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"shop-api/internal/domain"
)

type FeedbackService struct {
	feedback domain.FeedbackRepository
	catalog  *CatalogService
	l        *zap.Logger
}

func NewFeedbackService(repo domain.FeedbackRepository, catalog *CatalogService, l *zap.Logger) *FeedbackService {
	return &FeedbackService{feedback: repo, catalog: catalog, l: l.Named("feedback")}
}

// Submit rating 为 0 表示未评分，否则须在 1..5
func (s *FeedbackService) Submit(ctx context.Context, userID, productID, content string, rating int) (*domain.Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.InvalidArgument("content is required")
	}
	if rating < 0 || rating > 5 {
		return nil, domain.InvalidArgument("rating must be between 1 and 5")
	}
	if productID != "" {
		if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
			return nil, err
		}
	}
	f := &domain.Feedback{UserID: userID, ProductID: productID, Content: content, Rating: rating}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context, userID string) ([]domain.Feedback, error) {
	list, err := s.feedback.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Feedback{}
	}
	return list, nil
}
