package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"shop-api/internal/core/cache"
	"shop-api/internal/domain"
)

type CatalogService struct {
	products domain.ProductRepository
	sellers  domain.SellerRepository
	cache    *cache.Cache
	ttl      time.Duration
	l        *zap.Logger
}

func NewCatalogService(products domain.ProductRepository, sellers domain.SellerRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{products: products, sellers: sellers, cache: c, ttl: ttl, l: l.Named("catalog")}
}

func productKey(id string) string { return "product:" + id }

// ProductsByIDs 批量取商品，不存在的 id 不出现在结果里
func (s *CatalogService) ProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	ids = dedupe(ids)
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	hits, misses := cache.GetManyJSON[domain.Product](s.cache, ctx, keys)
	for _, p := range hits {
		out[p.ID] = p
	}
	if len(misses) == 0 {
		return out, nil
	}
	missIDs := make([]string, len(misses))
	for i, k := range misses {
		missIDs[i] = strings.TrimPrefix(k, "product:")
	}
	loaded, err := s.products.FindByIDs(ctx, missIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range loaded {
		out[p.ID] = p
		if err := cache.SetJSON(s.cache, ctx, productKey(p.ID), p, s.ttl); err != nil {
			s.l.Debug("cache product", zap.String("product_id", p.ID), zap.Error(err))
		}
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := cache.GetOrLoadJSON(s.cache, ctx, productKey(id), s.ttl, func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product %s not found", id)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, size int, q, sellerID string) ([]domain.Product, int64, error) {
	offset, limit := pageOf(page, size)
	return s.products.List(ctx, domain.ProductFilter{
		Q:        strings.TrimSpace(q),
		SellerID: sellerID,
		Offset:   offset,
		Limit:    limit,
	})
}

func (s *CatalogService) GetSeller(ctx context.Context, id string) (*domain.Seller, error) {
	seller, err := s.sellers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, domain.NotFound("Seller not found")
	}
	return seller, nil
}

func (s *CatalogService) SellersByIDs(ctx context.Context, ids []string) (map[string]domain.Seller, error) {
	list, err := s.sellers.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Seller, len(list))
	for _, sl := range list {
		out[sl.ID] = sl
	}
	return out, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.InvalidArgument("product name is required")
	}
	if err := domain.CheckLen("name", p.Name, domain.MaxProductNameLen); err != nil {
		return err
	}
	if err := domain.CheckLen("image", p.Image, domain.MaxImageLen); err != nil {
		return err
	}
	if err := domain.CheckPrice("price", p.Price); err != nil {
		return err
	}
	if p.SellerID != "" {
		if _, err := s.GetSeller(ctx, p.SellerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.validateProduct(ctx, p); err != nil {
		return err
	}
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	s.l.Info("product created", zap.String("product_id", p.ID))
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.validateProduct(ctx, p); err != nil {
		return err
	}
	found, err := s.products.Update(ctx, p)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("Product %s not found", p.ID)
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	found, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.NotFound("Product %s not found", id)
	}
	s.invalidate(ctx, id)
	s.l.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *CatalogService) CreateSeller(ctx context.Context, seller *domain.Seller) error {
	seller.Name = strings.TrimSpace(seller.Name)
	if seller.Name == "" {
		return domain.InvalidArgument("seller name is required")
	}
	if err := domain.CheckLen("name", seller.Name, domain.MaxSellerNameLen); err != nil {
		return err
	}
	if err := domain.CheckLen("image", seller.Image, domain.MaxImageLen); err != nil {
		return err
	}
	return s.sellers.Create(ctx, seller)
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, productKey(id)); err != nil {
		s.l.Warn("invalidate product cache", zap.String("product_id", id), zap.Error(err))
	}
}
