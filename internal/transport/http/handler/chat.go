package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type ChatHandler struct {
	svc *service.ChatService
}

func NewChatHandler(svc *service.ChatService) *ChatHandler { return &ChatHandler{svc: svc} }

func (h *ChatHandler) Priority() int { return 50 }

type newChatroomIn struct {
	SellerID string `json:"seller_id"`
}

type chatroomsOut struct {
	Chatrooms []service.ChatroomSummary `json:"chatrooms"`
}

type chatroomURI struct {
	ChatroomID string `uri:"chatroom_id" binding:"required"`
}

type messageOut struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type messagesOut struct {
	Messages []messageOut `json:"messages"`
}

type sendMessageIn struct {
	Content string `json:"content"`
}

func (h *ChatHandler) MountAPI(_, authed *gin.RouterGroup) {
	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[newChatroomIn, *service.ChatroomRef]{
		Method: http.MethodPost,
		Path:   "/new_chatroom/",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *newChatroomIn) (*service.ChatroomRef, error) {
			return h.svc.CreateOrGet(c.Request.Context(), ez.UserID(c), in.SellerID)
		},
	})

	ez.RegisterAction(api, ez.Action[struct{}, chatroomsOut]{
		Method: http.MethodGet,
		Path:   "/chatrooms",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (chatroomsOut, error) {
			rooms, err := h.svc.ListForUser(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return chatroomsOut{}, err
			}
			return chatroomsOut{Chatrooms: rooms}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[chatroomURI, messagesOut]{
		Method: http.MethodGet,
		Path:   "/chatrooms/:chatroom_id/messages",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *chatroomURI) (messagesOut, error) {
			msgs, err := h.svc.Messages(c.Request.Context(), in.ChatroomID, ez.UserID(c))
			if err != nil {
				return messagesOut{}, err
			}
			out := messagesOut{Messages: make([]messageOut, len(msgs))}
			for i, m := range msgs {
				out.Messages[i] = messageOut{Sender: m.Sender, Content: m.Content, Timestamp: m.Timestamp.UTC().Format(service.MessageTimeLayout)}
			}
			return out, nil
		},
	})

	ez.RegisterAction(api, ez.Action[sendMessageIn, Empty]{
		Method: http.MethodPost,
		Path:   "/chatrooms/:chatroom_id/send_message",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *sendMessageIn) (Empty, error) {
			return Empty{}, h.svc.Send(c.Request.Context(), c.Param("chatroom_id"), ez.UserID(c), in.Content)
		},
	})
}
