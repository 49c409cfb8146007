package domain

import (
	"context"
	"time"
)

const (
	SenderUser   = "user"
	SenderSeller = "seller"

	AutoReplySender  = "Seller"
	AutoReplyContent = "Thank you for your message. We will get back to you shortly."
)

type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Chatroom 每个 (买家, 卖家) 对唯一，消息只追加
type Chatroom struct {
	ID        string    `json:"chatroom_id"`
	UserID    string    `json:"user_id"`
	SellerID  string    `json:"seller_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Chatroom) IsParticipant(userID string) bool {
	return userID != "" && (userID == r.UserID || userID == r.SellerID)
}

// SenderTag 买家侧为 user，卖家侧为 seller
func (r *Chatroom) SenderTag(userID string) string {
	if userID == r.SellerID && userID != r.UserID {
		return SenderSeller
	}
	return SenderUser
}

type ChatRepository interface {
	FindByPair(ctx context.Context, userID, sellerID string) (*Chatroom, error)
	// Create 同一对已存在时返回 Conflict
	Create(ctx context.Context, room *Chatroom) error
	FindByID(ctx context.Context, id string, withMessages bool) (*Chatroom, error)
	// AppendMessages 多条消息在一次原子写内追加
	AppendMessages(ctx context.Context, chatroomID string, msgs ...Message) (found bool, err error)
	// ListByUser 买家或卖家身份参与的聊天室，不含消息
	ListByUser(ctx context.Context, userID string, limit int) ([]Chatroom, error)
}
