package events

import (
	"context"
	"time"
)

const (
	TypeOrderCreated    = "order.created"
	TypeChatMessageSent = "chat.message_sent"
)

// Event 领域事件；Key 决定分区（同一用户的事件保持有序）
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, evs ...Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                             { return nil }
