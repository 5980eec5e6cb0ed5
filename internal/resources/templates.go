package resources

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/upstream"
)

const templatesEntity = "templates"

// Templates wraps the /templates endpoints.
type Templates struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewTemplates(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Templates {
	return &Templates{api: api, cache: cache, listTTL: listTTL}
}

type templateRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func mapTemplate(row templateRow) models.Template {
	return models.Template{
		ID:        row.ID,
		Name:      row.Name,
		Content:   row.Content,
		Length:    utf8.RuneCountInString(row.Content),
		TimesUsed: 0, // not populated by the upstream API
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (s *Templates) List(ctx context.Context, token string) ([]models.Template, error) {
	var cached []models.Template
	hit, err := s.cache.GetList(ctx, templatesEntity, &cached)
	if err != nil {
		log.Printf("WARN: template list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []templateRow
	if err := s.api.Get(ctx, token, "/templates", &rows); err != nil {
		return nil, err
	}

	templates := make([]models.Template, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, mapTemplate(row))
	}

	if err := s.cache.SetList(ctx, templatesEntity, templates, s.listTTL); err != nil {
		log.Printf("WARN: template list cache write failed: %v", err)
	}
	return templates, nil
}

// TemplateInput is the payload for template mutations.
type TemplateInput struct {
	Name    string
	Content string
}

func (in TemplateInput) payload() mutationPayload {
	return mutationPayload{
		"name":    in.Name,
		"content": in.Content,
	}
}

func (s *Templates) Create(ctx context.Context, token string, in TemplateInput) error {
	if _, err := s.api.Post(ctx, token, "/templates", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Templates) Update(ctx context.Context, token string, id int64, in TemplateInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/templates/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Templates) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/templates/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Templates) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, templatesEntity); err != nil {
		log.Printf("WARN: template list invalidation failed: %v", err)
	}
	return nil
}
