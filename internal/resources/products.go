package resources

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/upstream"
)

const productsEntity = "produtos"

// Products wraps the /products endpoints.
type Products struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewProducts(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Products {
	return &Products{api: api, cache: cache, listTTL: listTTL}
}

type productRow struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Price         flexFloat `json:"price"`
	URL           string    `json:"url"`
	CategoryID    flexInt   `json:"category_id"`
	AffiliateID   flexInt   `json:"affiliate_id"`
	Source        string    `json:"source"`
	AffiliateCode string    `json:"affiliate_code"`
	IsActive      flexBool  `json:"is_active"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
}

func mapProduct(row productRow) models.Product {
	return models.Product{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		ImageURL:      row.ImageURL,
		Price:         float64(row.Price),
		URL:           row.URL,
		CategoryID:    int64(row.CategoryID),
		AffiliateID:   int64(row.AffiliateID),
		Source:        row.Source,
		AffiliateCode: row.AffiliateCode,
		Active:        bool(row.IsActive),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (s *Products) List(ctx context.Context, token string) ([]models.Product, error) {
	var cached []models.Product
	hit, err := s.cache.GetList(ctx, productsEntity, &cached)
	if err != nil {
		log.Printf("WARN: product list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []productRow
	if err := s.api.Get(ctx, token, "/products", &rows); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProduct(row))
	}

	if err := s.cache.SetList(ctx, productsEntity, products, s.listTTL); err != nil {
		log.Printf("WARN: product list cache write failed: %v", err)
	}
	return products, nil
}

func (s *Products) Create(ctx context.Context, token string, in models.ProductInput) error {
	if _, err := s.api.Post(ctx, token, "/products", in); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Products) Update(ctx context.Context, token string, id int64, in models.ProductInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/products/%d", id), in); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Products) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/products/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Products) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, productsEntity); err != nil {
		log.Printf("WARN: product list invalidation failed: %v", err)
	}
	return nil
}
