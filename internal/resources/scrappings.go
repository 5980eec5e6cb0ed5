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

const scrappingsEntity = "scrappings"

// Scrappings wraps the /affiliates endpoints, the product sources the scraper
// collects from.
type Scrappings struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewScrappings(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Scrappings {
	return &Scrappings{api: api, cache: cache, listTTL: listTTL}
}

type scrappingRow struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	NameType      string   `json:"name_type"`
	URL           string   `json:"url"`
	Login         string   `json:"login"`
	Password      string   `json:"password"`
	Key1          string   `json:"key1"`
	Key2          string   `json:"key2"`
	IsActive      flexBool `json:"is_active"`
	Status        string   `json:"status"`
	LastExecution string   `json:"last_execution"`
	ProductsCount flexInt  `json:"products_count"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func mapScrapping(row scrappingRow) models.Scrapping {
	return models.Scrapping{
		ID:            row.ID,
		Name:          row.Name,
		Type:          row.Type,
		TypeName:      row.NameType,
		URL:           row.URL,
		Login:         row.Login,
		Password:      row.Password,
		Key1:          row.Key1,
		Key2:          row.Key2,
		Active:        bool(row.IsActive),
		Execution:     models.ParseExecutionStatus(row.Status),
		ProductsCount: int(row.ProductsCount),
		LastExecution: row.LastExecution,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (s *Scrappings) List(ctx context.Context, token string) ([]models.Scrapping, error) {
	var cached []models.Scrapping
	hit, err := s.cache.GetList(ctx, scrappingsEntity, &cached)
	if err != nil {
		log.Printf("WARN: scrapping list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []scrappingRow
	if err := s.api.Get(ctx, token, "/affiliates", &rows); err != nil {
		return nil, err
	}

	scrappings := make([]models.Scrapping, 0, len(rows))
	for _, row := range rows {
		scrappings = append(scrappings, mapScrapping(row))
	}

	if err := s.cache.SetList(ctx, scrappingsEntity, scrappings, s.listTTL); err != nil {
		log.Printf("WARN: scrapping list cache write failed: %v", err)
	}
	return scrappings, nil
}

// ScrappingInput is the payload for scrapping mutations. Key1/Key2 carry the
// affiliate codes of scraping-type sources and stay empty for API sources.
type ScrappingInput struct {
	Name     string
	Type     string
	TypeName string
	URL      string
	Login    string
	Password string
	Key1     string
	Key2     string
	Active   bool
}

func (in ScrappingInput) payload() mutationPayload {
	p := mutationPayload{
		"name":      in.Name,
		"type":      in.Type,
		"url":       in.URL,
		"is_active": in.Active,
	}
	if in.TypeName != "" {
		p["name_type"] = in.TypeName
	}
	if in.Login != "" {
		p["login"] = in.Login
	}
	if in.Password != "" {
		p["password"] = in.Password
	}
	// API sources carry no scraping keys
	if in.Type != models.TypeAPI {
		if in.Key1 != "" {
			p["key1"] = in.Key1
		}
		if in.Key2 != "" {
			p["key2"] = in.Key2
		}
	}
	return p
}

func (s *Scrappings) Create(ctx context.Context, token string, in ScrappingInput) error {
	if _, err := s.api.Post(ctx, token, "/affiliates", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Scrappings) Update(ctx context.Context, token string, id int64, in ScrappingInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/affiliates/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Scrappings) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/affiliates/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Scrappings) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, scrappingsEntity); err != nil {
		log.Printf("WARN: scrapping list invalidation failed: %v", err)
	}
	return nil
}
