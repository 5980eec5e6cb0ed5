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

const instancesEntity = "instancias"

// Instances wraps the /instances endpoints. Status observations are never
// cached, the poller needs them fresh.
type Instances struct {
	api     *upstream.Client
	cache   caching.CacheService
	listTTL time.Duration
}

func NewInstances(api *upstream.Client, cache caching.CacheService, listTTL time.Duration) *Instances {
	return &Instances{api: api, cache: cache, listTTL: listTTL}
}

type instanceRow struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Number          string `json:"number"`
	Status          string `json:"status"`
	APIToken        string `json:"api_token"`
	LastConnectedAt string `json:"last_connected_at"`
	CreatedAt       string `json:"created_at"`
}

func mapInstance(row instanceRow) models.Instance {
	connection := models.ConnectionDisconnected
	if row.Status == "active" {
		connection = models.ConnectionConnected
	}
	return models.Instance{
		ID:              row.ID,
		Name:            row.Name,
		Phone:           row.Number,
		Connection:      connection,
		Token:           row.APIToken,
		Sent:            0, // not populated by the upstream API
		Received:        0,
		LastConnectedAt: row.LastConnectedAt,
		CreatedAt:       row.CreatedAt,
	}
}

func (s *Instances) List(ctx context.Context, token string) ([]models.Instance, error) {
	var cached []models.Instance
	hit, err := s.cache.GetList(ctx, instancesEntity, &cached)
	if err != nil {
		log.Printf("WARN: instance list cache read failed: %v", err)
	}
	if hit {
		return cached, nil
	}

	var rows []instanceRow
	if err := s.api.Get(ctx, token, "/instances", &rows); err != nil {
		return nil, err
	}

	instances := make([]models.Instance, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, mapInstance(row))
	}

	if err := s.cache.SetList(ctx, instancesEntity, instances, s.listTTL); err != nil {
		log.Printf("WARN: instance list cache write failed: %v", err)
	}
	return instances, nil
}

// InstanceInput is the payload for instance mutations.
type InstanceInput struct {
	Name  string
	Phone string
}

func (in InstanceInput) payload() mutationPayload {
	p := mutationPayload{"name": in.Name}
	if in.Phone != "" {
		p["number"] = in.Phone
	}
	return p
}

func (s *Instances) Create(ctx context.Context, token string, in InstanceInput) error {
	if _, err := s.api.Post(ctx, token, "/instances", in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Instances) Update(ctx context.Context, token string, id int64, in InstanceInput) error {
	if _, err := s.api.Put(ctx, token, fmt.Sprintf("/instances/%d", id), in.payload()); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *Instances) Delete(ctx context.Context, token string, id int64) error {
	if _, err := s.api.Delete(ctx, token, fmt.Sprintf("/instances/%d", id)); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

type instanceStatusRow struct {
	Instance *struct {
		InstanceName string `json:"instanceName"`
		State        string `json:"state"`
	} `json:"instance"`
	PairingCode string  `json:"pairingCode"`
	Code        string  `json:"code"`
	Base64      string  `json:"base64"`
	Count       flexInt `json:"count"`
}

// Status fetches one fresh status observation, including the QR image used
// by the reconnect modal. A missing instance block reads as a closed session.
func (s *Instances) Status(ctx context.Context, token string, id int64) (*models.InstanceStatus, error) {
	var row instanceStatusRow
	if err := s.api.Get(ctx, token, fmt.Sprintf("/instances/%d/status", id), &row); err != nil {
		return nil, err
	}

	status := &models.InstanceStatus{
		State:        "closed",
		PairingCode:  row.PairingCode,
		Code:         row.Code,
		QRCodeBase64: row.Base64,
		Count:        int(row.Count),
	}
	if row.Instance != nil {
		status.InstanceName = row.Instance.InstanceName
		if row.Instance.State != "" {
			status.State = row.Instance.State
		}
	}
	return status, nil
}

func (s *Instances) invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateList(ctx, instancesEntity); err != nil {
		log.Printf("WARN: instance list invalidation failed: %v", err)
	}
	return nil
}
