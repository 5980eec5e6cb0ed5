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

const schedulesEntity = "agendamentos"

// Schedules wraps the /schedules endpoints.
type Schedules struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewSchedules(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Schedules {
	return &Schedules{api: api, cache: cache, listTTL: listTTL}
}

type scheduleRow struct {
	ID            int64    `json:"id"`
	GroupID       flexInt  `json:"group_id"`
	CategoryID    flexInt  `json:"category_id"`
	TemplateID    flexInt  `json:"template_id"`
	ScheduleTime  string   `json:"schedule_time"`
	IsActive      flexBool `json:"is_active"`
	GroupName     string   `json:"group_name"`
	CategoryName  string   `json:"category_name"`
	TemplateTitle string   `json:"template_title"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

func mapSchedule(row scheduleRow) models.Schedule {
	return models.Schedule{
		ID:           row.ID,
		GroupID:      int64(row.GroupID),
		CategoryID:   int64(row.CategoryID),
		TemplateID:   int64(row.TemplateID),
		Time:         row.ScheduleTime,
		Active:       bool(row.IsActive),
		GroupName:    row.GroupName,
		CategoryName: row.CategoryName,
		TemplateName: row.TemplateTitle,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (s *Schedules) List(ctx context.Context, token string) ([]models.Schedule, error) {
	var cached []models.Schedule
	hit, err := s.cache.GetList(ctx, schedulesEntity, &cached)
	if err != nil {
		log.Printf("WARN: schedule list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []scheduleRow
	if err := s.api.Get(ctx, token, "/schedules", &rows); err != nil {
		return nil, err
	}

	schedules := make([]models.Schedule, 0, len(rows))
	for _, row := range rows {
		schedules = append(schedules, mapSchedule(row))
	}

	if err := s.cache.SetList(ctx, schedulesEntity, schedules, s.listTTL); err != nil {
		log.Printf("WARN: schedule list cache write failed: %v", err)
	}
	return schedules, nil
}

// ScheduleInput is the payload for schedule mutations.
type ScheduleInput struct {
	GroupID    int64
	CategoryID int64
	TemplateID int64
	Time       string
	Active     bool
}

func (in ScheduleInput) payload() mutationPayload {
	return mutationPayload{
		"group_id":      in.GroupID,
		"category_id":   in.CategoryID,
		"template_id":   in.TemplateID,
		"schedule_time": in.Time,
		"is_active":     in.Active,
	}
}

func (s *Schedules) Create(ctx context.Context, token string, in ScheduleInput) error {
	if _, err := s.api.Post(ctx, token, "/schedules", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Schedules) Update(ctx context.Context, token string, id int64, in ScheduleInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/schedules/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// SetActive cancels or reactivates a schedule without touching the rest of
// the record.
func (s *Schedules) SetActive(ctx context.Context, token string, id int64, active bool) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/schedules/%d", id), mutationPayload{
		"is_active": active,
	}); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Schedules) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/schedules/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Schedules) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, schedulesEntity); err != nil {
		log.Printf("WARN: schedule list invalidation failed: %v", err)
	}
	return nil
}
