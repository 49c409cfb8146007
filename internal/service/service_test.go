package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"shop-api/internal/core/auth"
	"shop-api/internal/core/cache"
	"shop-api/internal/core/events"
	"shop-api/internal/domain"
	"shop-api/internal/repo"
	"shop-api/internal/repo/repotest"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, evs ...events.Event) error {
	args := m.Called(ctx, evs)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type fixture struct {
	svc   *Services
	repos *repo.Repositories
	pub   *mockPublisher
	cache *cache.Cache
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = c.Close() })

	repos := repo.NewGormRepositories(repotest.NewDB(t))
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := New(Deps{
		Repos:      repos,
		Cache:      c,
		ProductTTL: time.Minute,
		Events:     pub,
		JWT:        &auth.JWTer{Secret: []byte("test-secret"), Issuer: "shop-test", TTL: time.Hour},
		Logger:     zaptest.NewLogger(t),
	})
	return &fixture{svc: svc, repos: repos, pub: pub, cache: c, mr: mr}
}

func (f *fixture) seller(t *testing.T, name string) *domain.Seller {
	t.Helper()
	s := &domain.Seller{Name: name, Image: name + ".png"}
	require.NoError(t, f.svc.Catalog.CreateSeller(context.Background(), s))
	return s
}

func (f *fixture) product(t *testing.T, name, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Description: name + " desc", Price: decimal.RequireFromString(price), Images: []string{name + ".png"}}
	require.NoError(t, f.svc.Catalog.CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	id, err := f.svc.Users.Register(context.Background(), name, "pw-"+name)
	require.NoError(t, err)
	return id
}
