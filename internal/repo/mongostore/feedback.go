package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-api/internal/domain"
)

type feedbackDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	ProductID string             `bson:"product_id,omitempty"`
	Content   string             `bson:"content"`
	Rating    int                `bson:"rating,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

type FeedbackRepo struct{ c *mongo.Collection }

func (r *FeedbackRepo) Create(ctx context.Context, f *domain.Feedback) error {
	id, err := newID(f.ID)
	if err != nil {
		return domain.InvalidArgument("%v", err)
	}
	doc := feedbackDoc{
		ID:        id,
		UserID:    f.UserID,
		ProductID: f.ProductID,
		Content:   f.Content,
		Rating:    f.Rating,
		CreatedAt: now(),
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	f.ID, f.CreatedAt = id.Hex(), doc.CreatedAt
	return nil
}

func (r *FeedbackRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Feedback, error) {
	opts := limitOpt(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	var docs []feedbackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Feedback, len(docs))
	for i, d := range docs {
		out[i] = domain.Feedback{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			ProductID: d.ProductID,
			Content:   d.Content,
			Rating:    d.Rating,
			CreatedAt: d.CreatedAt,
		}
	}
	return out, nil
}
