package app

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/frameweavers/showreel"
	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/db"
	"github.com/frameweavers/showreel/internal/gallery"
	"github.com/frameweavers/showreel/internal/repository"
	"github.com/frameweavers/showreel/internal/service"
	"github.com/frameweavers/showreel/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB // nil for a static catalog

	// Catalog serves reads in both modes; CatalogService is nil when the
	// catalog is static and writes are unavailable.
	Catalog        service.Catalog
	CatalogService *service.CatalogService
	StaticCatalog  *service.StaticCatalog
	SitemapService *service.SitemapService
	Classifier     *gallery.Classifier

	// UploadDir is set when uploads live on local disk and must be served.
	UploadDir string
}

func New(cfg *config.Config) (*App, error) {
	content, err := ContentFS(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Cfg:           cfg,
		StaticCatalog: service.NewStaticCatalog(content),
		Classifier:    gallery.NewClassifier(cfg.MediaHosts...),
	}

	if cfg.IsStatic() {
		slog.Info("serving static catalog", "content_path", cfg.ContentPath)
		app.Catalog = app.StaticCatalog
	} else {
		err = app.openDatabase()
		if err != nil {
			return nil, err
		}
		app.Catalog = app.CatalogService
	}

	app.SitemapService = service.NewSitemapService(app.Catalog, cfg.AppURL)

	return app, nil
}

func (a *App) openDatabase() error {
	database, err := db.Init(a.Cfg.DBDriver, a.Cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = database

	err = db.RunMigrations(database.DB, a.Cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fileStorage, err := storage.New(a.Cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		a.UploadDir = local.Dir()
	}

	a.CatalogService = service.NewCatalogService(
		repository.NewEntryRepository(database),
		storage.NewMediaGateway(fileStorage, a.Cfg.UploadFolder),
		a.Cfg.RequestTimeout,
		a.Cfg.UploadTimeout,
	)
	return nil
}

// ContentFS is the directory holding portfolio/*.md: CONTENT_PATH when set,
// otherwise the copy embedded in the binary.
func ContentFS(cfg *config.Config) (fs.FS, error) {
	if cfg.ContentPath != "" {
		return os.DirFS(cfg.ContentPath), nil
	}
	content, err := fs.Sub(showreel.ContentFS, "content")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded content: %w", err)
	}
	return content, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
