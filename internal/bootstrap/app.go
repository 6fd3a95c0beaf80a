package bootstrap

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"cvbuilder-backend/cv/render"
	"cvbuilder-backend/internal/forms"
	"cvbuilder-backend/internal/services/health"
	"cvbuilder-backend/internal/shared/config"
	"cvbuilder-backend/internal/shared/server"
	templatestore "cvbuilder-backend/internal/shared/storage/template"
	localstore "cvbuilder-backend/internal/shared/storage/template/local"
	s3store "cvbuilder-backend/internal/shared/storage/template/s3"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	TemplateStore templatestore.Store
	Sessions      *forms.Store
	FormService   *forms.Service
	FormHandler   *forms.Handler
	HealthService *health.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	store := buildTemplateStore(ctx, cfg)
	sessions := forms.NewStore(cfg.SessionTTL)
	svc := forms.NewService(sessions, render.NewRenderer(store))
	handler := forms.NewHandler(svc, forms.StartOptions{
		RequireConfirm: cfg.RequireConfirm,
		TemplateName:   cfg.TemplateName,
		Filename:       cfg.OutputFilename,
	})
	healthSvc := health.NewService(sessions)

	return &App{
		Config:        cfg,
		Router:        server.NewRouter(cfg, handler, healthSvc),
		TemplateStore: store,
		Sessions:      sessions,
		FormService:   svc,
		FormHandler:   handler,
		HealthService: healthSvc,
	}, nil
}

func buildTemplateStore(ctx context.Context, cfg config.Config) templatestore.Store {
	if cfg.TemplateStoreType == "s3" {
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err == nil {
			return store
		}
		log.Printf("failed to build s3 template store, falling back to local: %v", err)
	}
	return localstore.New(cfg.TemplateDir)
}
