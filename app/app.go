package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cotizador/app/controller"
	"cotizador/app/router"
	"cotizador/config"
	"cotizador/db"
	"cotizador/repository"
	"cotizador/service"
	"cotizador/templates"
	"cotizador/utils"
)

// pdfTimeout bounds one headless Chrome print
const pdfTimeout = 30 * time.Second

// App is the wired application
type App struct {
	Handler   http.Handler
	Sessions  *service.SessionService
	debouncer *utils.Debouncer
	usesDB    bool
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg config.Config) (*App, error) {
	// Client storage: Postgres when configured, memory otherwise
	var storage repository.StorageRepositoryInterface
	usesDB := cfg.StorageEnabled()
	if usesDB {
		if err := db.RunMigrations(cfg.MigrationURL, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		storage = repository.NewStorageRepository()
	} else {
		zap.S().Warnf("⚠️  DATABASE_URL not set, client storage kept in memory")
		storage = repository.NewMemoryStorageRepository()
	}

	tmpl, err := templates.Parse()
	if err != nil {
		return nil, err
	}

	// Optional Drive archive of generated quotations
	var archiver service.ArchiverInterface
	if cfg.ArchiveEnabled() {
		drive, err := service.NewDriveService(ctx, cfg.GoogleCredentials, cfg.DriveArchiveFolderID)
		if err != nil {
			return nil, err
		}
		archiver = drive
	}

	api := service.NewPricingAPI(cfg.RequestTimeout, cfg.AuthScheme, cfg.PricingPath)
	store := service.NewStateStore(storage, cfg.APIURL, utils.RealClock{})
	debouncer := utils.NewDebouncer(cfg.DiscountDebounce)

	catalog := service.NewCatalogService(api)
	sessions := service.NewSessionService(api, store, catalog, debouncer, cfg.SessionTimeout, cfg.SessionCheckInterval)
	quotes := service.NewQuoteService(api, store, catalog, debouncer)
	auths := service.NewAuthorizationService(api, store)
	logos := service.NewLogoLoader(&http.Client{Timeout: cfg.RequestTimeout}, cfg.LogoDir)
	pdfs := service.NewPDFService(api, store, catalog, tmpl, service.NewChromeRenderer(cfg.ChromePath, pdfTimeout), logos, archiver)
	dashboard := service.NewDashboardService(api, store, cfg.DemoMetrics)
	exports := service.NewExportService(store, dashboard)
	search := service.NewSearchService(api, cfg.SearchDebounce)

	// Create controllers
	controllers := &router.Controllers{
		Session:       controller.NewSessionController(sessions, quotes, auths, tmpl, cfg.DiscountDebounce),
		Quote:         controller.NewQuoteController(quotes, catalog, store, pdfs, exports, tmpl),
		Authorization: controller.NewAuthorizationController(auths, sessions, tmpl),
		Dashboard:     controller.NewDashboardController(dashboard, exports, tmpl),
		Search:        controller.NewSearchController(search, sessions, tmpl),
	}

	return &App{
		Handler:   router.SetupRoutes(controllers, sessions),
		Sessions:  sessions,
		debouncer: debouncer,
		usesDB:    usesDB,
	}, nil
}

// Close stops pending discount checks and closes the database
func (a *App) Close() error {
	a.debouncer.Stop()
	if a.usesDB {
		return db.CloseDB()
	}
	return nil
}
