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

const groupsEntity = "grupos"

// Groups wraps the /groups endpoints, including the two side actions the
// groups page offers: sending an immediate message and switching the
// instance that fires a group's sends.
type Groups struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewGroups(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Groups {
	return &Groups{api: api, cache: cache, listTTL: listTTL}
}

type groupRow struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	GroupID     string   `json:"group_id"`
	Description string   `json:"description"`
	InviteCode  string   `json:"invite_code"`
	ImageURL    string   `json:"image_url"`
	IsActive    flexBool `json:"is_active"`
	CategoryID  flexInt  `json:"category_id"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func mapGroup(row groupRow) models.Group {
	description := row.Description
	if description == "" {
		description = "Sem descrição"
	}
	return models.Group{
		ID:          row.ID,
		Name:        row.Name,
		GroupID:     row.GroupID,
		Description: description,
		InviteCode:  row.InviteCode,
		ImageURL:    row.ImageURL,
		Active:      bool(row.IsActive),
		CategoryID:  int64(row.CategoryID),
		Members:     0, // not populated by the upstream API
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (s *Groups) List(ctx context.Context, token string) ([]models.Group, error) {
	var cached []models.Group
	hit, err := s.cache.GetList(ctx, groupsEntity, &cached)
	if err != nil {
		log.Printf("WARN: group list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []groupRow
	if err := s.api.Get(ctx, token, "/groups", &rows); err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, mapGroup(row))
	}

	if err := s.cache.SetList(ctx, groupsEntity, groups, s.listTTL); err != nil {
		log.Printf("WARN: group list cache write failed: %v", err)
	}
	return groups, nil
}

// GroupInput is the payload for group mutations.
type GroupInput struct {
	Name        string
	GroupID     string
	Description string
	InviteCode  string
	ImageURL    string
	CategoryID  int64
	Active      bool
}

func (in GroupInput) payload() mutationPayload {
	p := mutationPayload{
		"name":      in.Name,
		"group_id":  in.GroupID,
		"is_active": in.Active,
	}
	if in.Description != "" {
		p["description"] = in.Description
	}
	if in.InviteCode != "" {
		p["invite_code"] = in.InviteCode
	}
	if in.ImageURL != "" {
		p["image_url"] = in.ImageURL
	}
	if in.CategoryID != 0 {
		p["category_id"] = in.CategoryID
	}
	return p
}

func (s *Groups) Create(ctx context.Context, token string, in GroupInput) error {
	if _, err := s.api.Post(ctx, token, "/groups", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Groups) Update(ctx context.Context, token string, id int64, in GroupInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/groups/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Groups) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/groups/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// SendMessage fires an immediate message into a group. The collection does
// not change, so nothing is invalidated.
func (s *Groups) SendMessage(ctx context.Context, token string, id int64, message string) error {
	_, err := s.api.Post(ctx, token, fmt.Sprintf("/groups/%d/send-message", id), mutationPayload{
		"message": message,
	})
	return err
}

// UpdateTrigger points a group's scheduled sends at another instance.
func (s *Groups) UpdateTrigger(ctx context.Context, token string, id, instanceID int64) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/groups/%d/trigger", id), mutationPayload{
		"instance_id": instanceID,
	}); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Groups) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, groupsEntity); err != nil {
		log.Printf("WARN: group list invalidation failed: %v", err)
	}
	return nil
}
