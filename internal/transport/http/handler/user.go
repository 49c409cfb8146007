package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Priority() int { return 10 }

type credentialsIn struct {
	Username string `json:"username" binding:"max=64"`
	Password string `json:"password"`
}

type registerOut struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginOut struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type profileOut struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

type addressOut struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsDefault int    `json:"is_default"`
}

type addressesOut struct {
	Addresses []addressOut `json:"addresses"`
}

// is_default 缺省视为 1
type newAddressIn struct {
	Name      string `json:"name" binding:"max=64"`
	Phone     string `json:"phone" binding:"max=32"`
	Address   string `json:"address" binding:"max=512"`
	IsDefault *Flag  `json:"is_default"`
}

func (h *UserHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := ez.New(public)

	ez.RegisterAction(pub, ez.Action[credentialsIn, registerOut]{
		Method: http.MethodPost,
		Path:   "/users/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *credentialsIn) (registerOut, error) {
			id, err := h.svc.Register(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{Message: "User registered successfully", UserID: id}, nil
		},
	})

	ez.RegisterAction(pub, ez.Action[credentialsIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/users/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *credentialsIn) (loginOut, error) {
			tok, id, err := h.svc.Login(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Token: tok, UserID: id}, nil
		},
	})

	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[struct{}, profileOut]{
		Method: http.MethodGet,
		Path:   "/users/profile",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (profileOut, error) {
			u, err := h.svc.Profile(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return profileOut{}, err
			}
			return profileOut{UserID: u.ID, Username: u.Username, Image: u.Image}, nil
		},
	})

	ez.RegisterAction(api, ez.Action[struct{}, addressesOut]{
		Method: http.MethodGet,
		Path:   "/users/addresses",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (addressesOut, error) {
			addrs, err := h.svc.Addresses(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return addressesOut{}, err
			}
			out := addressesOut{Addresses: make([]addressOut, len(addrs))}
			for i, a := range addrs {
				out.Addresses[i] = addressOut{Name: a.Name, Phone: a.Phone, Address: a.Address, IsDefault: flagInt(a.IsDefault)}
			}
			return out, nil
		},
	})

	ez.RegisterAction(api, ez.Action[newAddressIn, Message]{
		Method: http.MethodPost,
		Path:   "/users/new_address",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *newAddressIn) (Message, error) {
			a := domain.Address{Name: in.Name, Phone: in.Phone, Address: in.Address, IsDefault: in.IsDefault == nil || bool(*in.IsDefault)}
			if err := h.svc.AddAddress(c.Request.Context(), ez.UserID(c), a); err != nil {
				return Message{}, err
			}
			return Message{Message: "Address added successfully"}, nil
		},
	})
}

type adminUserOut struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	ez.RegisterAction(ez.New(admin), ez.Action[PageQuery, Page[adminUserOut]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *PageQuery) (Page[adminUserOut], error) {
			users, total, err := h.svc.ListUsers(c.Request.Context(), in.Page, in.Size, in.Q)
			if err != nil {
				return Page[adminUserOut]{}, err
			}
			list := make([]adminUserOut, len(users))
			for i, u := range users {
				list[i] = adminUserOut{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt.UTC().Format(timeLayout)}
			}
			return newPage(list, total, *in), nil
		},
	})
}
