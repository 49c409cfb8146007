package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func (h *FeedbackHandler) Priority() int { return 60 }

type feedbackIn struct {
	ProductID string `json:"product_id"`
	Content   string `json:"content"`
	Rating    int    `json:"rating"`
}

type feedbackListOut struct {
	Feedback []domain.Feedback `json:"feedback"`
}

func (h *FeedbackHandler) MountAPI(_, authed *gin.RouterGroup) {
	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[feedbackIn, *domain.Feedback]{
		Method: http.MethodPost,
		Path:   "/feedback",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *feedbackIn) (*domain.Feedback, error) {
			return h.svc.Submit(c.Request.Context(), ez.UserID(c), in.ProductID, in.Content, in.Rating)
		},
	})

	ez.RegisterAction(api, ez.Action[struct{}, feedbackListOut]{
		Method: http.MethodGet,
		Path:   "/feedback",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (feedbackListOut, error) {
			list, err := h.svc.List(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return feedbackListOut{}, err
			}
			return feedbackListOut{Feedback: list}, nil
		},
	})
}
