package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/converter"
	"resume-builder/internal/converter/local"
	"resume-builder/internal/converter/pandoc"
	"resume-builder/internal/documents"
	"resume-builder/internal/resumes"
	"resume-builder/internal/sections"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/keylock"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/internal/versions"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	Converter converter.Converter
	Health    *health.Service

	Templates *templates.Service
	Resumes   *resumes.Service
	Sections  *sections.Service
	Versions  *versions.Service
	Documents *documents.Service
}

// Build prepares every dependency and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	conv, pandocClient, err := buildConverter(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Converter: conv,
		Health:    health.NewService(),
	}
	if sqlDB != nil {
		app.Health.Register("database", sqlDB.PingContext)
	}
	if pandocClient != nil {
		app.Health.Register("converter", pandocClient.Ping)
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: app.Health,
		Handlers: []server.RouteRegistrar{
			templates.NewHandler(app.Templates),
			resumes.NewHandler(app.Resumes, cfg.MaxImportSizeBytes),
			sections.NewHandler(app.Sections),
			versions.NewHandler(app.Versions),
			documents.NewHandler(app.Documents),
		},
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildConverter returns the converter documents use. The pandoc client is
// also returned so health checks can ping it.
func buildConverter(cfg config.Config) (converter.Converter, *pandoc.Client, error) {
	if cfg.Converter == "local" {
		return local.New(), nil, nil
	}
	client, err := pandoc.NewClient(cfg.PandocURL, cfg.PandocTimeout)
	if err != nil {
		return nil, nil, err
	}
	conv := converter.NewBreaker(converter.NewRetrying(client), converter.DefaultBreakerConfig("pandoc"))
	return conv, client, nil
}

func buildServices(app *App) {
	var (
		templateRepo templates.Repo
		resumeRepo   resumes.Repo
		sectionRepo  sections.Repo
		versionRepo  versions.Repo
		documentRepo documents.Repo
	)
	if app.DB != nil {
		templateRepo = &templates.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		sectionRepo = &sections.PGRepo{DB: app.DB}
		versionRepo = &versions.PGRepo{DB: app.DB}
		documentRepo = &documents.PGRepo{DB: app.DB}
	} else {
		templateRepo = templates.NewMemoryRepo(time.Now().UTC())
		resumeRepo = resumes.NewMemoryRepo()
		sectionRepo = sections.NewMemoryRepo()
		versionRepo = versions.NewMemoryRepo()
		documentRepo = documents.NewMemoryRepo()
	}

	// Resume deletes, section writes and version snapshots of one resume share a lock.
	locks := &keylock.Map{}

	app.Templates = &templates.Service{Repo: templateRepo, Store: app.Store}
	app.Resumes = &resumes.Service{Repo: resumeRepo, Templates: app.Templates, Store: app.Store, Locks: locks}
	app.Sections = &sections.Service{Repo: sectionRepo, Resumes: app.Resumes, Locks: locks}
	app.Versions = &versions.Service{
		Repo:      versionRepo,
		Resumes:   app.Resumes,
		Content:   app.Sections,
		Templates: app.Templates,
		Locks:     locks,
	}
	app.Documents = &documents.Service{
		Repo:      documentRepo,
		Resumes:   app.Resumes,
		Content:   app.Sections,
		Versions:  app.Versions,
		Templates: app.Templates,
		Converter: app.Converter,
		Store:     app.Store,
	}
	app.Resumes.Cascade = []resumes.Cascader{app.Documents, app.Versions, app.Sections}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
