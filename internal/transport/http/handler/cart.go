package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler { return &CartHandler{svc: svc} }

func (h *CartHandler) Priority() int { return 30 }

type addToCartIn struct {
	ProductID string          `json:"product_id" binding:"max=32"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image" binding:"max=512"`
}

type cartOut struct {
	Cart []service.CartItem `json:"cart"`
}

type productURI struct {
	ProductID string `uri:"product_id" binding:"required"`
}

type updateCartIn struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) MountAPI(_, authed *gin.RouterGroup) {
	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[addToCartIn, Message]{
		Method: http.MethodPost,
		Path:   "/cart",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *addToCartIn) (Message, error) {
			line := domain.CartLine{ProductID: in.ProductID, Quantity: in.Quantity, Price: in.Price, Image: in.Image}
			if err := h.svc.AddItem(c.Request.Context(), ez.UserID(c), line); err != nil {
				return Message{}, err
			}
			return Message{Message: "Item added to cart successfully"}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[struct{}, cartOut]{
		Method: http.MethodGet,
		Path:   "/cart",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (cartOut, error) {
			items, err := h.svc.GetCart(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return cartOut{}, err
			}
			return cartOut{Cart: items}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[updateCartIn, Message]{
		Method: http.MethodPut,
		Path:   "/cart/:product_id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateCartIn) (Message, error) {
			if err := h.svc.UpdateQuantity(c.Request.Context(), ez.UserID(c), c.Param("product_id"), in.Quantity); err != nil {
				return Message{}, err
			}
			return Message{Message: "Cart updated successfully"}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[productURI, Message]{
		Method: http.MethodDelete,
		Path:   "/delete_cart/:product_id",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *productURI) (Message, error) {
			if err := h.svc.RemoveItem(c.Request.Context(), ez.UserID(c), in.ProductID); err != nil {
				return Message{}, err
			}
			return Message{Message: "Item removed from cart"}, nil
		},
	})
}
