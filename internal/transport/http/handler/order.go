package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler { return &OrderHandler{svc: svc} }

func (h *OrderHandler) Priority() int { return 40 }

type orderLineIn struct {
	ProductID string `json:"product_id" binding:"max=32"`
	Quantity  int    `json:"quantity"`
}

type shippingIn struct {
	Name    string `json:"name" binding:"max=64"`
	Phone   string `json:"phone" binding:"max=32"`
	Address string `json:"address" binding:"max=512"`
}

type createOrderIn struct {
	OrderProducts []orderLineIn `json:"order_products" binding:"dive"`
	FromCart      bool          `json:"from_cart"`
	Address       *shippingIn   `json:"address"`
}

func (in *createOrderIn) toInput() service.CreateOrderInput {
	out := service.CreateOrderInput{FromCart: in.FromCart}
	out.Lines = make([]domain.OrderLine, len(in.OrderProducts))
	for i, l := range in.OrderProducts {
		out.Lines[i] = domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if in.Address != nil {
		out.Address = domain.ShippingAddress{Name: in.Address.Name, Phone: in.Address.Phone, Address: in.Address.Address}
	}
	return out
}

type createOrderOut struct {
	Message    string          `json:"message"`
	OrderID    string          `json:"order_id"`
	CreatedAt  string          `json:"created_at"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type ordersOut struct {
	Orders []service.OrderView `json:"orders"`
}

type orderURI struct {
	OrderID string `uri:"order_id" binding:"required"`
}

func (h *OrderHandler) MountAPI(_, authed *gin.RouterGroup) {
	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[createOrderIn, createOrderOut]{
		Method: http.MethodPost,
		Path:   "/create_order",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *createOrderIn) (createOrderOut, error) {
			o, err := h.svc.CreateOrder(c.Request.Context(), ez.UserID(c), in.toInput())
			if err != nil {
				return createOrderOut{}, err
			}
			return createOrderOut{
				Message:    "Order created successfully",
				OrderID:    o.ID,
				CreatedAt:  o.CreatedAt.UTC().Format(timeLayout),
				TotalPrice: o.Total,
			}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[struct{}, ordersOut]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (ordersOut, error) {
			views, err := h.svc.ListOrders(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return ordersOut{}, err
			}
			return ordersOut{Orders: views}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[orderURI, *service.OrderView]{
		Method: http.MethodGet,
		Path:   "/orders/:order_id/details",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *orderURI) (*service.OrderView, error) {
			return h.svc.OrderDetails(c.Request.Context(), in.OrderID, ez.UserID(c))
		},
	})
}
