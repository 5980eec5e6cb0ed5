package resources

import (
	"context"
	"log"
	"time"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/upstream"
)

const usersEntity = "usuarios"

// Users is read-only: the panel lists operators but never mutates them.
type Users struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewUsers(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Users {
	return &Users{api: api, cache: cache, listTTL: listTTL}
}

func (s *Users) List(ctx context.Context, token string) ([]models.User, error) {
	var cached []models.User
	hit, err := s.cache.GetList(ctx, usersEntity, &cached)
	if err != nil {
		log.Printf("WARN: user list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var users []models.User
	if err := s.api.Get(ctx, token, "/users", &users); err != nil {
		return nil, err
	}

	if err := s.cache.SetList(ctx, usersEntity, users, s.listTTL); err != nil {
		log.Printf("WARN: user list cache write failed: %v", err)
	}
	return users, nil
}
