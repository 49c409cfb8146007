package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shop-api/internal/domain"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/ez"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Priority() int { return 20 }

type productQuery struct {
	PageQuery
	SellerID string `form:"seller_id"`
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type sellerOut struct {
	SellerID string `json:"seller_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

func (h *CatalogHandler) MountAPI(_, authed *gin.RouterGroup) {
	api := ez.New(authed)

	ez.RegisterAction(api, ez.Action[productQuery, Page[domain.Product]]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *productQuery) (Page[domain.Product], error) {
			list, total, err := h.svc.ListProducts(c.Request.Context(), in.Page, in.Size, in.Q, in.SellerID)
			if err != nil {
				return Page[domain.Product]{}, err
			}
			return newPage(list, total, in.PageQuery), nil
		},
	})

	ez.RegisterAction(api, ez.Action[idURI, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (*domain.Product, error) {
			return h.svc.GetProduct(c.Request.Context(), in.ID)
		},
	})

	ez.RegisterAction(api, ez.Action[idURI, sellerOut]{
		Method: http.MethodGet,
		Path:   "/sellers/:id",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (sellerOut, error) {
			s, err := h.svc.GetSeller(c.Request.Context(), in.ID)
			if err != nil {
				return sellerOut{}, err
			}
			return sellerOut{SellerID: s.ID, Name: s.Name, Avatar: s.Image}, nil
		},
	})
}

type productIn struct {
	SellerID    string          `json:"seller_id"`
	Name        string          `json:"name" binding:"required,max=128"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" binding:"max=512"`
	Images      []string        `json:"images"`
}

func (in productIn) toDomain(id string) *domain.Product {
	return &domain.Product{
		ID:          id,
		SellerID:    in.SellerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Images:      in.Images,
	}
}

type sellerIn struct {
	Name  string `json:"name" binding:"required,max=128"`
	Image string `json:"image" binding:"max=512"`
}

type idOut struct {
	ID string `json:"id"`
}

func (h *CatalogHandler) MountAdmin(admin *gin.RouterGroup) {
	g := ez.New(admin)
	roles := []string{domain.RoleAdmin}

	ez.RegisterAction(g, ez.Action[productIn, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *productIn) (*domain.Product, error) {
			p := in.toDomain("")
			if err := h.svc.CreateProduct(c.Request.Context(), p); err != nil {
				return nil, err
			}
			return p, nil
		},
	})

	ez.RegisterAction(g, ez.Action[productIn, idOut]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *productIn) (idOut, error) {
			id := c.Param("id")
			if err := h.svc.UpdateProduct(c.Request.Context(), in.toDomain(id)); err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[idURI, idOut]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: ez.BindURI,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *idURI) (idOut, error) {
			if err := h.svc.DeleteProduct(c.Request.Context(), in.ID); err != nil {
				return idOut{}, err
			}
			return idOut{ID: in.ID}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[sellerIn, sellerOut]{
		Method: http.MethodPost,
		Path:   "/sellers",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *sellerIn) (sellerOut, error) {
			s := &domain.Seller{Name: in.Name, Image: in.Image}
			if err := h.svc.CreateSeller(c.Request.Context(), s); err != nil {
				return sellerOut{}, err
			}
			return sellerOut{SellerID: s.ID, Name: s.Name, Avatar: s.Image}, nil
		},
	})
}
