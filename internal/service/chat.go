package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"shop-api/internal/core/events"
	"shop-api/internal/domain"
)

const MessageTimeLayout = "2006-01-02 15:04:05"

type ChatroomRef struct {
	ChatroomID string `json:"chatroom_id"`
	SellerName string `json:"seller_name"`
}

type ChatroomSummary struct {
	ChatroomID   string `json:"chatroom_id"`
	SellerName   string `json:"seller_name"`
	SellerAvatar string `json:"seller_avatar"`
}

type ChatService struct {
	rooms   domain.ChatRepository
	catalog *CatalogService
	events  events.Publisher
	l       *zap.Logger
	now     func() time.Time
}

func NewChatService(rooms domain.ChatRepository, catalog *CatalogService, pub events.Publisher, l *zap.Logger) *ChatService {
	return &ChatService{rooms: rooms, catalog: catalog, events: pub, l: l.Named("chat"), now: time.Now}
}

func (s *ChatService) sellerName(ctx context.Context, sellerID string) string {
	seller, err := s.catalog.GetSeller(ctx, sellerID)
	if err != nil {
		return "Unknown"
	}
	return seller.Name
}

// CreateOrGet 同一 (买家, 卖家) 重复调用返回同一个聊天室
func (s *ChatService) CreateOrGet(ctx context.Context, userID, sellerID string) (*ChatroomRef, error) {
	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		return nil, domain.InvalidArgument("seller_id is required")
	}
	room, err := s.rooms.FindByPair(ctx, userID, sellerID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return &ChatroomRef{ChatroomID: room.ID, SellerName: s.sellerName(ctx, sellerID)}, nil
	}

	seller, err := s.catalog.GetSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	room = &domain.Chatroom{UserID: userID, SellerID: sellerID}
	if err := s.rooms.Create(ctx, room); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		// 并发创建：唯一索引挡下后读回已有的那个
		if room, err = s.rooms.FindByPair(ctx, userID, sellerID); err != nil || room == nil {
			return nil, errors.Join(domain.Conflict("chatroom already exists"), err)
		}
	}
	return &ChatroomRef{ChatroomID: room.ID, SellerName: seller.Name}, nil
}

func (s *ChatService) participantRoom(ctx context.Context, roomID, userID string, withMessages bool) (*domain.Chatroom, error) {
	room, err := s.rooms.FindByID(ctx, roomID, withMessages)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, domain.NotFound("Chatroom not found")
	}
	if !room.IsParticipant(userID) {
		return nil, domain.Forbidden("You are not part of this chatroom")
	}
	return room, nil
}

// Messages 按写入顺序返回全部消息
func (s *ChatService) Messages(ctx context.Context, roomID, userID string) ([]domain.Message, error) {
	room, err := s.participantRoom(ctx, roomID, userID, true)
	if err != nil {
		return nil, err
	}
	if room.Messages == nil {
		return []domain.Message{}, nil
	}
	return room.Messages, nil
}

// Send 调用方消息之后固定追加一条自动回复，两条在一次写入内完成
func (s *ChatService) Send(ctx context.Context, roomID, userID, content string) error {
	if strings.TrimSpace(content) == "" {
		return domain.InvalidArgument("content is required")
	}
	room, err := s.participantRoom(ctx, roomID, userID, false)
	if err != nil {
		return err
	}
	ts := s.now().UTC().Truncate(time.Second)
	msgs := []domain.Message{
		{Sender: room.SenderTag(userID), Content: content, Timestamp: ts},
		{Sender: domain.AutoReplySender, Content: domain.AutoReplyContent, Timestamp: ts},
	}
	found, err := s.rooms.AppendMessages(ctx, room.ID, msgs...)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("Chatroom not found")
	}
	ev := events.Event{
		Type:       events.TypeChatMessageSent,
		Key:        room.ID,
		OccurredAt: ts,
		Payload: map[string]any{
			"chatroom_id": room.ID,
			"seller_id":   room.SellerID,
			"sender_id":   userID,
			"content":     content,
		},
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.l.Warn("publish event", zap.String("type", ev.Type), zap.Error(err))
	}
	return nil
}

// ListForUser 没有聊天室返回 NotFound；卖家已不存在的聊天室不展示
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]ChatroomSummary, error) {
	rooms, err := s.rooms.ListByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, domain.NotFound("No chatrooms found for this user")
	}
	ids := make([]string, len(rooms))
	for i, r := range rooms {
		ids[i] = r.SellerID
	}
	sellers, err := s.catalog.SellersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ChatroomSummary, 0, len(rooms))
	for _, r := range rooms {
		seller, ok := sellers[r.SellerID]
		if !ok {
			continue
		}
		out = append(out, ChatroomSummary{ChatroomID: r.ID, SellerName: seller.Name, SellerAvatar: seller.Image})
	}
	return out, nil
}
