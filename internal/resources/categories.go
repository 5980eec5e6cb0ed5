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

const categoriesEntity = "categorias"

// Categories wraps the /category endpoints. List is read-through cached;
// every successful mutation invalidates the cached collection exactly once.
type Categories struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewCategories(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Categories {
	return &Categories{api: api, cache: cache, listTTL: listTTL}
}

type categoryRow struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Description   string  `json:"description"`
	Color         string  `json:"color"`
	Icon          string  `json:"icon"`
	Status        string  `json:"status"`
	ProductsCount flexInt `json:"products_count"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func mapCategory(row categoryRow) models.Category {
	description := row.Description
	if description == "" {
		description = "Sem descrição"
	}
	color := row.Color
	if color == "" {
		color = "#3b82f6"
	}
	icon := row.Icon
	if icon == "" {
		icon = "📦"
	}
	return models.Category{
		ID:            row.ID,
		Name:          row.Name,
		Slug:          row.Slug,
		Description:   description,
		Color:         color,
		Icon:          icon,
		Active:        row.Status != "inativo",
		ProductsCount: int(row.ProductsCount),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (s *Categories) List(ctx context.Context, token string) ([]models.Category, error) {
	var cached []models.Category
	hit, err := s.cache.GetList(ctx, categoriesEntity, &cached)
	if err != nil {
		log.Printf("WARN: category list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []categoryRow
	if err := s.api.Get(ctx, token, "/category", &rows); err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, mapCategory(row))
	}

	if err := s.cache.SetList(ctx, categoriesEntity, categories, s.listTTL); err != nil {
		log.Printf("WARN: category list cache write failed: %v", err)
	}
	return categories, nil
}

// CategoryInput is the payload for category mutations.
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
	Icon        string
	Active      bool
}

func (in CategoryInput) payload() mutationPayload {
	p := mutationPayload{
		"name": in.Name,
		"slug": in.Slug,
	}
	if in.Description != "" {
		p["description"] = in.Description
	}
	if in.Color != "" {
		p["color"] = in.Color
	}
	if in.Icon != "" {
		p["icon"] = in.Icon
	}
	p["status"] = models.StatusLabel(in.Active)
	return p
}

func (s *Categories) Create(ctx context.Context, token string, in CategoryInput) error {
	if _, err := s.api.Post(ctx, token, "/category", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Categories) Update(ctx context.Context, token string, id int64, in CategoryInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/category/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Categories) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/category/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Categories) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, categoriesEntity); err != nil {
		log.Printf("WARN: category list invalidation failed: %v", err)
	}
	return nil
}
