package resources

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/upstream"
)

const linktreeEntity = "linktree"

// Linktree wraps the /linktree endpoints behind the public landing page.
type Linktree struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewLinktree(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Linktree {
	return &Linktree{api: api, cache: cache, listTTL: listTTL}
}

type linktreeRow struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Icon      string   `json:"icon"`
	Order     flexInt  `json:"order"`
	IsActive  flexBool `json:"is_active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func mapLinktreeItem(row linktreeRow) models.LinktreeItem {
	return models.LinktreeItem{
		ID:        row.ID,
		Title:     row.Title,
		URL:       row.URL,
		Icon:      row.Icon,
		Order:     int(row.Order),
		Active:    bool(row.IsActive),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (s *Linktree) List(ctx context.Context, token string) ([]models.LinktreeItem, error) {
	var cached []models.LinktreeItem
	hit, err := s.cache.GetList(ctx, linktreeEntity, &cached)
	if err != nil {
		log.Printf("WARN: linktree list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []linktreeRow
	if err := s.api.Get(ctx, token, "/linktree", &rows); err != nil {
		return nil, err
	}

	items := make([]models.LinktreeItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLinktreeItem(row))
	}

	if err := s.cache.SetList(ctx, linktreeEntity, items, s.listTTL); err != nil {
		log.Printf("WARN: linktree list cache write failed: %v", err)
	}
	return items, nil
}

// Public returns the active items sorted by order, the projection the public
// route renders. The public page is unauthenticated, so the empty token is
// fine when the upstream leaves /linktree open.
func (s *Linktree) Public(ctx context.Context, token string) ([]models.LinktreeItem, error) {
	items, err := s.List(ctx, token)
	if err != nil {
		return nil, err
	}
	public := make([]models.LinktreeItem, 0, len(items))
	for _, item := range items {
		if item.Active {
			public = append(public, item)
		}
	}
	sort.SliceStable(public, func(i, j int) bool {
		return public[i].Order < public[j].Order
	})
	return public, nil
}

// LinktreeInput is the payload for linktree mutations.
type LinktreeInput struct {
	Title  string
	URL    string
	Icon   string
	Order  int
	Active bool
}

func (in LinktreeInput) payload() mutationPayload {
	p := mutationPayload{
		"title":     in.Title,
		"url":       in.URL,
		"order":     in.Order,
		"is_active": in.Active,
	}
	if in.Icon != "" {
		p["icon"] = in.Icon
	}
	return p
}

func (s *Linktree) Create(ctx context.Context, token string, in LinktreeInput) error {
	if _, err := s.api.Post(ctx, token, "/linktree", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Linktree) Update(ctx context.Context, token string, id int64, in LinktreeInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/linktree/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Linktree) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/linktree/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Linktree) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, linktreeEntity); err != nil {
		log.Printf("WARN: linktree list invalidation failed: %v", err)
	}
	return nil
}
