package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shop-api/internal/domain"
	"shop-api/internal/feature/chat"
	"shop-api/pkg/utils"
)

type ChatRepo struct{ db *gorm.DB }

func NewChatRepo(db *gorm.DB) *ChatRepo { return &ChatRepo{db: db} }

func (r *ChatRepo) FindByPair(ctx context.Context, userID, sellerID string) (*domain.Chatroom, error) {
	var m chat.RoomModel
	err := r.db.WithContext(ctx).First(&m, "user_id = ? AND seller_id = ?", userID, sellerID).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chatroom: %w", err)
	}
	room := m.ToDomain()
	return &room, nil
}

func (r *ChatRepo) Create(ctx context.Context, room *domain.Chatroom) error {
	if room.ID == "" {
		room.ID = utils.NewID()
	}
	m := &chat.RoomModel{ID: room.ID, UserID: room.UserID, SellerID: room.SellerID}
	if err := r.db.WithContext(ctx).Omit("Messages").Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("chatroom already exists")
		}
		return fmt.Errorf("create chatroom: %w", err)
	}
	room.CreatedAt = m.CreatedAt
	return nil
}

func (r *ChatRepo) FindByID(ctx context.Context, id string, withMessages bool) (*domain.Chatroom, error) {
	q := r.db.WithContext(ctx)
	if withMessages {
		q = q.Preload("Messages", byInsertion)
	}
	var m chat.RoomModel
	err := q.First(&m, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chatroom: %w", err)
	}
	room := m.ToDomain()
	if withMessages && room.Messages == nil {
		room.Messages = []domain.Message{}
	}
	return &room, nil
}

// AppendMessages 多条消息同一事务、同一条 INSERT 写入，自增 ID 保持顺序
func (r *ChatRepo) AppendMessages(ctx context.Context, chatroomID string, msgs ...domain.Message) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&chat.RoomModel{}).Where("id = ?", chatroomID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true
		if len(msgs) == 0 {
			return nil
		}
		rows := make([]chat.MessageModel, len(msgs))
		for i, m := range msgs {
			rows[i] = chat.MessageModel{
				RoomID:    chatroomID,
				Sender:    m.Sender,
				Content:   m.Content,
				Timestamp: m.Timestamp.UTC(),
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return false, fmt.Errorf("append messages: %w", err)
	}
	return found, nil
}

func (r *ChatRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Chatroom, error) {
	var ms []chat.RoomModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR seller_id = ?", userID, userID).
		Order("created_at ASC").
		Limit(capped(limit)).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list chatrooms: %w", err)
	}
	out := make([]domain.Chatroom, len(ms))
	for i := range ms {
		out[i] = ms[i].ToDomain()
	}
	return out, nil
}
