package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"shop-api/internal/core/auth"
	"shop-api/internal/core/config"
	"shop-api/internal/core/server"
	"shop-api/internal/domain"
	"shop-api/internal/repo"
	"shop-api/internal/repo/repotest"
	"shop-api/internal/service"
)

type envelope struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (c *client) data(method, path string, body any, out any) {
	c.t.Helper()
	code, env := c.do(method, path, body)
	require.Equal(c.t, http.StatusOK, code, "%s %s: %s", method, path, env.Msg)
	require.Equal(c.t, "OK", env.Status)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
}

type testApp struct {
	api, admin *gin.Engine
	svc        *service.Services
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	jwter := &auth.JWTer{Secret: []byte("router-test"), Issuer: "shop-test", TTL: time.Hour}
	svc := service.New(service.Deps{
		Repos:  repo.NewGormRepositories(repotest.NewDB(t)),
		JWT:    jwter,
		Logger: zaptest.NewLogger(t),
	})
	o := Options{
		Logger:   zaptest.NewLogger(t),
		JWT:      jwter,
		Services: svc,
		Limits:   config.Limits{IPRPS: 1000, IPBurst: 1000},
		Server:   server.Options{Mode: gin.TestMode},
	}
	return &testApp{api: NewAPIEngine(o), admin: NewAdminEngine(o), svc: svc}
}

func (a *testApp) login(t *testing.T, username, password string, register bool) *client {
	t.Helper()
	c := &client{t: t, h: a.api}
	creds := gin.H{"username": username, "password": password}
	if register {
		var reg struct {
			Message string `json:"message"`
			UserID  string `json:"user_id"`
		}
		c.data(http.MethodPost, "/api/v1/users/register", creds, &reg)
		require.Equal(t, "User registered successfully", reg.Message)
	}
	var out struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	c.data(http.MethodPost, "/api/v1/users/login", creds, &out)
	require.NotEmpty(t, out.Token)
	c.token = out.Token
	return c
}

func TestPublicEndpoints(t *testing.T) {
	app := newApp(t)
	c := &client{t: t, h: app.api}

	var welcome struct{ Message string }
	c.data(http.MethodGet, "/", nil, &welcome)
	assert.Equal(t, "Welcome to the E-Commerce API", welcome.Message)
	c.data(http.MethodGet, "/health", nil, nil)

	code, env := c.do(http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", env.Status)
	assert.JSONEq(t, `{}`, string(env.Data))

	c.data(http.MethodPost, "/api/v1/users/register", gin.H{"username": "amy", "password": "pw"}, nil)
	code, env = c.do(http.MethodPost, "/api/v1/users/register", gin.H{"username": "amy", "password": "pw"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username already exists", env.Msg)

	code, env = c.do(http.MethodPost, "/api/v1/users/login", gin.H{"username": "amy", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", env.Msg)
}

func TestShoppingFlow(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	seller := &domain.Seller{Name: "Acme", Image: "acme.png"}
	require.NoError(t, app.svc.Catalog.CreateSeller(ctx, seller))
	p := &domain.Product{Name: "Lamp", Description: "warm", SellerID: seller.ID, Price: decimal.RequireFromString("10.0"), Images: []string{"lamp.png"}}
	require.NoError(t, app.svc.Catalog.CreateProduct(ctx, p))

	c := app.login(t, "bob", "secret", true)

	var profile struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
	}
	c.data(http.MethodGet, "/api/v1/users/profile", nil, &profile)
	assert.Equal(t, "bob", profile.Username)

	// 购物车
	var cart struct {
		Cart []struct {
			ProductID string  `json:"product_id"`
			Name      string  `json:"name"`
			Quantity  int     `json:"quantity"`
			Price     float64 `json:"price"`
			Image     string  `json:"image"`
		} `json:"cart"`
	}
	c.data(http.MethodGet, "/api/v1/cart", nil, &cart)
	assert.Empty(t, cart.Cart)

	code, env := c.do(http.MethodPost, "/api/v1/cart", gin.H{"product_id": p.ID, "quantity": 0, "price": 10.0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Quantity must be greater than 0", env.Msg)

	c.data(http.MethodPost, "/api/v1/cart", gin.H{"product_id": p.ID, "quantity": 2, "price": 10.0, "image": "lamp.png"}, nil)
	c.data(http.MethodGet, "/api/v1/cart", nil, &cart)
	require.Len(t, cart.Cart, 1)
	assert.Equal(t, 2, cart.Cart[0].Quantity)
	assert.Equal(t, 10.0, cart.Cart[0].Price)
	assert.Equal(t, "Lamp", cart.Cart[0].Name)

	// 下单（默认不动购物车）
	order := gin.H{
		"order_products": []gin.H{{"product_id": p.ID, "quantity": 2}},
		"address":        gin.H{"name": "Bob", "phone": "123", "address": "1 Road"},
	}
	var created struct {
		Message    string  `json:"message"`
		OrderID    string  `json:"order_id"`
		CreatedAt  string  `json:"created_at"`
		TotalPrice float64 `json:"total_price"`
	}
	c.data(http.MethodPost, "/api/v1/create_order", order, &created)
	assert.Equal(t, "Order created successfully", created.Message)
	assert.Equal(t, 20.0, created.TotalPrice)
	_, err := time.Parse(time.RFC3339, created.CreatedAt)
	assert.NoError(t, err)

	c.data(http.MethodGet, "/api/v1/cart", nil, &cart)
	require.Len(t, cart.Cart, 1)

	var orders struct {
		Orders []struct {
			OrderID    string  `json:"order_id"`
			Status     string  `json:"status"`
			TotalPrice float64 `json:"total_price"`
			Items      []struct {
				Name     string `json:"name"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
		} `json:"orders"`
	}
	c.data(http.MethodGet, "/api/v1/orders", nil, &orders)
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, "Paid", orders.Orders[0].Status)
	assert.Equal(t, "Lamp", orders.Orders[0].Items[0].Name)

	var details struct {
		OrderID string `json:"order_id"`
		Address struct {
			Name string `json:"name"`
		} `json:"address"`
	}
	c.data(http.MethodGet, "/api/v1/orders/"+created.OrderID+"/details", nil, &details)
	assert.Equal(t, "Bob", details.Address.Name)

	code, _ = c.do(http.MethodPost, "/api/v1/create_order", gin.H{"order_products": []gin.H{}, "address": gin.H{"name": "x"}})
	assert.Equal(t, http.StatusBadRequest, code)
	code, env = c.do(http.MethodPost, "/api/v1/create_order", gin.H{"order_products": []gin.H{{"product_id": "ghost", "quantity": 1}}, "address": gin.H{"name": "x"}})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product ghost not found", env.Msg)

	// 从购物车下单后移除对应行
	order["from_cart"] = true
	c.data(http.MethodPost, "/api/v1/create_order", order, nil)
	c.data(http.MethodGet, "/api/v1/cart", nil, &cart)
	assert.Empty(t, cart.Cart)

	code, env = c.do(http.MethodDelete, "/api/v1/delete_cart/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cart item not found", env.Msg)

	other := app.login(t, "eve", "pw", true)
	code, _ = other.do(http.MethodGet, "/api/v1/orders/"+created.OrderID+"/details", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, env = other.do(http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No orders found", env.Msg)
}

func TestAddressesAndChat(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()
	seller := &domain.Seller{Name: "Acme", Image: "acme.png"}
	require.NoError(t, app.svc.Catalog.CreateSeller(ctx, seller))
	c := app.login(t, "cat", "pw", true)

	var addrs struct {
		Addresses []struct {
			Name      string `json:"name"`
			IsDefault int    `json:"is_default"`
		} `json:"addresses"`
	}
	c.data(http.MethodGet, "/api/v1/users/addresses", nil, &addrs)
	assert.Empty(t, addrs.Addresses)

	c.data(http.MethodPost, "/api/v1/users/new_address", gin.H{"name": "home", "phone": "1", "address": "a"}, nil)
	c.data(http.MethodPost, "/api/v1/users/new_address", gin.H{"name": "work", "phone": "2", "address": "b", "is_default": 0}, nil)
	c.data(http.MethodPost, "/api/v1/users/new_address", gin.H{"name": "cabin", "phone": "3", "address": "c", "is_default": true}, nil)
	c.data(http.MethodGet, "/api/v1/users/addresses", nil, &addrs)
	require.Len(t, addrs.Addresses, 3)
	assert.Equal(t, 0, addrs.Addresses[0].IsDefault)
	assert.Equal(t, 0, addrs.Addresses[1].IsDefault)
	assert.Equal(t, 1, addrs.Addresses[2].IsDefault)

	code, _ := c.do(http.MethodGet, "/api/v1/chatrooms", nil)
	assert.Equal(t, http.StatusNotFound, code)

	var room struct {
		ChatroomID string `json:"chatroom_id"`
		SellerName string `json:"seller_name"`
	}
	c.data(http.MethodPost, "/api/v1/new_chatroom/", gin.H{"seller_id": seller.ID}, &room)
	assert.Equal(t, "Acme", room.SellerName)

	code, env := c.do(http.MethodPost, "/api/v1/new_chatroom/", gin.H{"seller_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Seller not found", env.Msg)

	c.data(http.MethodPost, "/api/v1/chatrooms/"+room.ChatroomID+"/send_message", gin.H{"content": "hello"}, nil)
	var msgs struct {
		Messages []struct {
			Sender    string `json:"sender"`
			Content   string `json:"content"`
			Timestamp string `json:"timestamp"`
		} `json:"messages"`
	}
	c.data(http.MethodGet, "/api/v1/chatrooms/"+room.ChatroomID+"/messages", nil, &msgs)
	require.Len(t, msgs.Messages, 2)
	assert.Equal(t, "user", msgs.Messages[0].Sender)
	assert.Equal(t, "Seller", msgs.Messages[1].Sender)
	_, err := time.Parse(service.MessageTimeLayout, msgs.Messages[0].Timestamp)
	assert.NoError(t, err)

	var rooms struct {
		Chatrooms []struct {
			SellerAvatar string `json:"seller_avatar"`
		} `json:"chatrooms"`
	}
	c.data(http.MethodGet, "/api/v1/chatrooms", nil, &rooms)
	require.Len(t, rooms.Chatrooms, 1)
	assert.Equal(t, "acme.png", rooms.Chatrooms[0].SellerAvatar)

	intruder := app.login(t, "mallory", "pw", true)
	code, env = intruder.do(http.MethodGet, "/api/v1/chatrooms/"+room.ChatroomID+"/messages", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", env.Status)
	code, _ = intruder.do(http.MethodPost, "/api/v1/chatrooms/nope/send_message", gin.H{"content": "x"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOverlongInputRejected(t *testing.T) {
	app := newApp(t)
	c := app.login(t, "lena", "pw", true)
	long := strings.Repeat("x", 600)

	cases := []struct {
		name, method, path string
		body               any
	}{
		{"address", http.MethodPost, "/api/v1/users/new_address", gin.H{"name": "home", "phone": "1", "address": long}},
		{"phone", http.MethodPost, "/api/v1/users/new_address", gin.H{"name": "home", "phone": strings.Repeat("9", 33), "address": "a"}},
		{"username", http.MethodPost, "/api/v1/users/register", gin.H{"username": strings.Repeat("u", 65), "password": "pw"}},
		{"cart image", http.MethodPost, "/api/v1/cart", gin.H{"product_id": "p1", "quantity": 1, "price": 1, "image": long}},
		{"cart product id", http.MethodPost, "/api/v1/cart", gin.H{"product_id": strings.Repeat("p", 33), "quantity": 1, "price": 1}},
		{"order address", http.MethodPost, "/api/v1/create_order", gin.H{
			"order_products": []gin.H{{"product_id": "p1", "quantity": 1}},
			"address":        gin.H{"name": "n", "phone": "1", "address": long},
		}},
		{"order product id", http.MethodPost, "/api/v1/create_order", gin.H{
			"order_products": []gin.H{{"product_id": strings.Repeat("p", 33), "quantity": 1}},
			"address":        gin.H{"name": "n", "phone": "1", "address": "a"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.t = t
			code, env := c.do(tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, code, env.Msg)
			assert.Equal(t, "Bad Request", env.Status)
		})
	}

	// 未写入任何地址
	c.t = t
	var addrs struct {
		Addresses []json.RawMessage `json:"addresses"`
	}
	c.data(http.MethodGet, "/api/v1/users/addresses", nil, &addrs)
	assert.Empty(t, addrs.Addresses)
}

func TestAdminCatalog(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.svc.Users.EnsureAdmin(context.Background(), "root", "rootpw"))
	adminTok := app.login(t, "root", "rootpw", false).token
	admin := &client{t: t, h: app.admin, token: adminTok}

	code, _ := (&client{t: t, h: app.admin, token: app.login(t, "joe", "pw", true).token}).do(http.MethodGet, "/admin/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, code)

	var seller struct {
		SellerID string `json:"seller_id"`
	}
	admin.data(http.MethodPost, "/admin/v1/sellers", gin.H{"name": "Acme"}, &seller)
	var product domain.Product
	admin.data(http.MethodPost, "/admin/v1/products", gin.H{"name": "Mug", "price": 4.5, "seller_id": seller.SellerID}, &product)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("4.5")))

	user := app.login(t, "kim", "pw", true)
	var got domain.Product
	user.data(http.MethodGet, "/api/v1/products/"+product.ID, nil, &got)
	assert.Equal(t, "Mug", got.Name)

	admin.data(http.MethodPut, "/admin/v1/products/"+product.ID, gin.H{"name": "Big Mug", "price": 6, "seller_id": seller.SellerID}, nil)
	user.data(http.MethodGet, "/api/v1/products/"+product.ID, nil, &got)
	assert.Equal(t, "Big Mug", got.Name)

	var page struct {
		List  []domain.Product `json:"list"`
		Total int64            `json:"total"`
	}
	user.data(http.MethodGet, "/api/v1/products?q=Mug", nil, &page)
	assert.EqualValues(t, 1, page.Total)

	admin.data(http.MethodDelete, "/admin/v1/products/"+product.ID, nil, nil)
	code, _ = user.do(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var users struct {
		Total int64 `json:"total"`
	}
	admin.data(http.MethodGet, "/admin/v1/users", nil, &users)
	assert.EqualValues(t, 3, users.Total)
}

func TestFeedbackEndpoints(t *testing.T) {
	app := newApp(t)
	c := app.login(t, "fay", "pw", true)

	code, _ := c.do(http.MethodPost, "/api/v1/feedback", gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	c.data(http.MethodPost, "/api/v1/feedback", gin.H{"content": "nice shop", "rating": 5}, nil)

	var list struct {
		Feedback []domain.Feedback `json:"feedback"`
	}
	c.data(http.MethodGet, "/api/v1/feedback", nil, &list)
	require.Len(t, list.Feedback, 1)
	assert.Equal(t, "nice shop", list.Feedback[0].Content)
}

func TestPerIPRateLimitWired(t *testing.T) {
	o := Options{
		Logger:   zaptest.NewLogger(t),
		JWT:      &auth.JWTer{Secret: []byte("k"), TTL: time.Hour},
		Services: service.New(service.Deps{Repos: repo.NewGormRepositories(repotest.NewDB(t))}),
		Limits:   config.Limits{IPRPS: 0.001, IPBurst: 1},
		Server:   server.Options{Mode: gin.TestMode},
	}
	c := &client{t: t, h: NewAPIEngine(o)}
	c.data(http.MethodGet, "/", nil, nil)
	code, env := c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "too many requests", env.Msg)
}

func TestRegistryPriority(t *testing.T) {
	var order []string
	reg := NewRegistry(
		prioMod{name: "late", prio: 50, order: &order},
		plainMod{name: "default", order: &order},
		prioMod{name: "early", prio: 1, order: &order},
	)
	reg.MountAllAdmin(gin.New().Group(""))
	assert.Equal(t, []string{"early", "late", "default"}, order)
}

type plainMod struct {
	name  string
	order *[]string
}

func (m plainMod) MountAdmin(*gin.RouterGroup) { *m.order = append(*m.order, m.name) }

type prioMod struct {
	name  string
	prio  int
	order *[]string
}

func (m prioMod) MountAdmin(*gin.RouterGroup) { *m.order = append(*m.order, m.name) }
func (m prioMod) Priority() int               { return m.prio }
