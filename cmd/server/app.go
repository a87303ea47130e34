package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mgnegypt/nano-image/internal/blob"
	"github.com/mgnegypt/nano-image/internal/config"
	"github.com/mgnegypt/nano-image/internal/platform/mailtm"
	"github.com/mgnegypt/nano-image/internal/platform/nanabanana"
	"github.com/mgnegypt/nano-image/internal/platform/postgres"
	"github.com/mgnegypt/nano-image/internal/provision"
	"github.com/mgnegypt/nano-image/internal/service"
	"github.com/mgnegypt/nano-image/internal/service/auth"
	"github.com/mgnegypt/nano-image/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	accountStore  store.AccountStore
	taskStore     store.TaskStore
	artifactStore store.ArtifactStore
	uploadStore   store.UploadStore

	tokenVerifier  auth.TokenVerifier
	accountService service.AccountService
	imageService   service.ImageService
	uploadService  service.UploadService

	blobStore blob.Store
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenVerifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.accountStore = postgres.NewAccountStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)
	app.artifactStore = postgres.NewArtifactStore(db, logger)
	app.uploadStore = postgres.NewUploadStore(db, logger)

	app.blobStore, err = blob.NewFSStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	mailClient := mailtm.NewClient(cfg.Mail.BaseURL, httpClient)
	providerClient := nanabanana.NewClient(cfg.Provider.BaseURL, httpClient)

	provisioner := provision.NewProvisioner(mailClient, providerClient, provision.Config{
		SenderDomain: cfg.Provider.SenderDomain,
		PollInterval: cfg.Mail.PollInterval,
		PollTimeout:  cfg.Mail.PollTimeout,
	}, logger)

	runTx := service.NewSQLTxRunner(db)
	quota := service.NewQuotaLedger(app.accountStore, logger)

	app.accountService = service.NewAccountService(
		app.accountStore,
		provisioner,
		runTx,
		cfg.Provider.MaxUses,
		logger,
	)
	app.imageService = service.NewImageService(
		runTx,
		app.accountStore,
		app.taskStore,
		app.artifactStore,
		app.uploadStore,
		quota,
		providerClient,
		app.blobStore,
		logger,
	)
	app.uploadService = service.NewUploadService(app.uploadStore, app.blobStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
