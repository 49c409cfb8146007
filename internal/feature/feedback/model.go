package feedback

import (
	"time"

	"shop-api/internal/domain"
)

type FeedbackModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)"`
	UserID    string    `gorm:"index;type:varchar(32);not null"`
	ProductID string    `gorm:"type:varchar(32)"`
	Content   string    `gorm:"type:text;not null"`
	Rating    int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (FeedbackModel) TableName() string { return "feedback" }

func (m *FeedbackModel) ToDomain() domain.Feedback {
	return domain.Feedback{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Content:   m.Content,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	}
}
