package chat

import (
	"time"

	"shop-api/internal/domain"
)

type RoomModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)"`
	UserID    string    `gorm:"type:varchar(32);not null;uniqueIndex:uk_chat_pair,priority:1"`
	SellerID  string    `gorm:"type:varchar(32);not null;uniqueIndex:uk_chat_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Messages []MessageModel `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

func (RoomModel) TableName() string { return "chatrooms" }

type MessageModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	RoomID    string    `gorm:"index;type:varchar(32);not null"`
	Sender    string    `gorm:"size:32;not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (MessageModel) TableName() string { return "chat_messages" }

func (m *RoomModel) ToDomain() domain.Chatroom {
	r := domain.Chatroom{
		ID:        m.ID,
		UserID:    m.UserID,
		SellerID:  m.SellerID,
		CreatedAt: m.CreatedAt,
	}
	if m.Messages != nil {
		r.Messages = make([]domain.Message, len(m.Messages))
		for i, msg := range m.Messages {
			r.Messages[i] = domain.Message{Sender: msg.Sender, Content: msg.Content, Timestamp: msg.Timestamp.UTC()}
		}
	}
	return r
}
