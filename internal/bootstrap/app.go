package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"docarchive/internal/compress"
	"docarchive/internal/documents"
	"docarchive/internal/extract"
	"docarchive/internal/ingest"
	"docarchive/internal/ocr"
	"docarchive/internal/ocr/tesseract"
	"docarchive/internal/services/health"
	"docarchive/internal/shared/config"
	"docarchive/internal/shared/server"
	"docarchive/internal/shared/storage/db"
	"docarchive/internal/shared/storage/disk"
	"docarchive/internal/shared/storage/object"
	miniostore "docarchive/internal/shared/storage/object/minio"
	s3store "docarchive/internal/shared/storage/object/s3"
	"docarchive/internal/shared/telemetry"
	"docarchive/internal/uploads"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Files            *disk.Store
	Objects          object.ObjectStore
	DocumentsRepo    documents.DocumentsRepo
	DocumentsService *documents.Service
	IngestService    *ingest.Service
	HealthService    *health.Service
	DocumentsHandler *documents.Handler
	IngestHandler    *ingest.Handler
	UploadsHandler   *uploads.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "none"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Files:   disk.New(cfg.StorageRoot),
		Objects: objects,
	}

	if err := buildServices(app); err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    app.Config,
		Documents: app.DocumentsHandler,
		Ingest:    app.IngestHandler,
		Uploads:   app.UploadsHandler,
		Health:    app.HealthService,
	})

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("bootstrap: migrations applied")
	}

	return sqlDB, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	case "minio":
		if strings.TrimSpace(cfg.MinIOBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=minio requires MINIO_BUCKET")
		}
		return miniostore.New(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.S3Prefix, cfg.MinIOUseSSL)
	default:
		log.Printf("bootstrap: no object store configured; presign and from-object routes disabled")
		return nil, nil
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	var docRepo documents.DocumentsRepo
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
	}

	recognizer := ocr.NewAdapter(
		tesseract.NewTextRecognizer(cfg.TessdataDir, cfg.OCRLanguage),
		&tesseract.PDFRenderer{
			Binary:      cfg.TesseractBinary,
			TessdataDir: cfg.TessdataDir,
			Language:    cfg.OCRLanguage,
			Timeout:     cfg.OCRTimeout,
		},
		cfg.TempDir,
		cfg.OCRMaxConcurrent,
	)

	ingestSvc := &ingest.Service{
		Files:     app.Files,
		Extractor: extract.Extractor{},
		OCR:       recognizer,
		PDF:       compress.NewGhostscript(cfg.GhostscriptBinary, cfg.PDFImageResolution, cfg.TempDir, cfg.GhostscriptTimeout),
		Images:    compress.Raster{MaxPixels: cfg.ImageMaxPixels},
		Repo:      docRepo,
		Image: ingest.ImageOptions{
			MaxWidth:  cfg.ImageMaxWidth,
			MaxHeight: cfg.ImageMaxHeight,
			Quality:   cfg.ImageQuality,
		},
	}
	docSvc := &documents.Service{Repo: docRepo}

	app.DocumentsRepo = docRepo
	app.DocumentsService = docSvc
	app.IngestService = ingestSvc
	app.HealthService = health.NewService(app.DB)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.IngestHandler = ingest.NewHandler(ingestSvc, app.Objects, cfg.MaxUploadBytes)
	if app.Objects != nil {
		app.UploadsHandler = uploads.NewHandler(app.Objects, cfg.MaxUploadBytes)
	}

	if app.DocumentsHandler == nil || app.IngestHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
