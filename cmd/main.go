package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/random"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/config"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/poller"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/scraper"
	"github.com/disparabot/admin/internal/server"
	"github.com/disparabot/admin/internal/services"
	"github.com/disparabot/admin/internal/toast"
	"github.com/disparabot/admin/internal/upstream"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Session.JWTSecret == "" {
		cfg.Session.JWTSecret = random.String(32) // generated secret for development
		log.Printf("WARNING: session.jwtsecret not set, using a generated secret; sessions will not survive restarts")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	api := upstream.NewClient(cfg.Upstream.BaseURL, cfg.UpstreamTimeout())

	listTTL := cfg.ListTTL()
	categories := resources.NewCategories(api, cacheSvc, listTTL)
	groups := resources.NewGroups(api, cacheSvc, listTTL)
	products := resources.NewProducts(api, cacheSvc, listTTL)
	instances := resources.NewInstances(api, cacheSvc, listTTL)
	scrappings := resources.NewScrappings(api, cacheSvc, listTTL)
	schedules := resources.NewSchedules(api, cacheSvc, listTTL)
	templates := resources.NewTemplates(api, cacheSvc, listTTL)
	linktree := resources.NewLinktree(api, cacheSvc, listTTL)
	users := resources.NewUsers(api, cacheSvc, listTTL)

	authSvc := services.NewAuthService(api, cacheSvc, cfg.Session.JWTSecret, cfg.SessionTTL())

	var mediaSvc services.MediaService
	if cfg.Minio.Endpoint != "" {
		mediaSvc, err = services.NewMinioMediaService(
			cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.Bucket, cfg.Minio.PublicBaseURL, cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
		if err := mediaSvc.EnsureBucketExists(context.Background()); err != nil {
			log.Printf("WARN: could not ensure MinIO bucket %s: %v", cfg.Minio.Bucket, err)
		}
	}

	notifier := toast.NewNotifier(toast.DefaultDuration)
	defer notifier.Close()

	serviceToken := cfg.Upstream.ServiceToken

	watcher, err := poller.NewWatcher(
		func(ctx context.Context, instanceID int64) (*models.InstanceStatus, error) {
			return instances.Status(ctx, serviceToken, instanceID)
		},
		func(instanceID int64, connection, qrCode string) {
			severity := toast.SeverityError
			text := fmt.Sprintf("Instância %d desconectada", instanceID)
			if connection == models.ConnectionConnected {
				severity = toast.SeveritySuccess
				text = fmt.Sprintf("Instância %d conectada", instanceID)
			}
			notifier.Show(text, severity)
		},
		cfg.PollInterval(),
	)
	if err != nil {
		log.Fatalf("Failed to create status watcher: %v", err)
	}

	runner := scraper.NewRunner(products, cfg.Scraper.UserAgent, cfg.Scraper.MaxProducts, func(result scraper.Result) {
		if result.Err != nil {
			notifier.Show(fmt.Sprintf("Coleta da fonte %d falhou", result.SourceID), toast.SeverityError)
			return
		}
		notifier.Show(fmt.Sprintf("Coleta concluída: %d produtos", result.Collected), toast.SeveritySuccess)
	})

	// Reconcile the watched instance set against the upstream listing. The
	// watcher only polls while a service token is configured.
	if serviceToken != "" {
		syncScheduler, err := gocron.NewScheduler()
		if err != nil {
			log.Fatalf("Failed to create sync scheduler: %v", err)
		}
		_, err = syncScheduler.NewJob(
			gocron.DurationJob(time.Minute),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout())
				defer cancel()
				list, err := instances.List(ctx, serviceToken)
				if err != nil {
					log.Printf("WARN: instance sync failed: %v", err)
					return
				}
				ids := make([]int64, 0, len(list))
				for _, inst := range list {
					ids = append(ids, inst.ID)
				}
				watcher.Sync(ids)
			}),
			gocron.WithName("instance-sync"),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			log.Fatalf("Failed to schedule instance sync: %v", err)
		}
		syncScheduler.Start()
		defer func() {
			if err := syncScheduler.Shutdown(); err != nil {
				log.Printf("WARN: sync scheduler shutdown: %v", err)
			}
		}()

		watcher.Start()
		defer func() {
			if err := watcher.Stop(); err != nil {
				log.Printf("WARN: watcher shutdown: %v", err)
			}
		}()
	}

	e, err := server.New(server.Deps{
		Config:     cfg,
		Cache:      cacheSvc,
		Auth:       authSvc,
		Media:      mediaSvc,
		Notifier:   notifier,
		Watcher:    watcher,
		Runner:     runner,
		Categories: categories,
		Groups:     groups,
		Products:   products,
		Instances:  instances,
		Scrappings: scrappings,
		Schedules:  schedules,
		Templates:  templates,
		Linktree:   linktree,
		Users:      users,
	})
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	log.Printf("🚀 Disparabot admin v%s starting on port %d", version, cfg.Server.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
