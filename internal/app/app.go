package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/chernandez90/InsurancePortal/internal/config"
	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/handler"
	"github.com/chernandez90/InsurancePortal/internal/hub"
	"github.com/chernandez90/InsurancePortal/internal/idgen"
	"github.com/chernandez90/InsurancePortal/internal/repository"
	"github.com/chernandez90/InsurancePortal/internal/service"
	"github.com/chernandez90/InsurancePortal/pkg/database"
	"github.com/chernandez90/InsurancePortal/pkg/jwt"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/pubsub"
	"github.com/chernandez90/InsurancePortal/pkg/ratelimit"
	"github.com/chernandez90/InsurancePortal/pkg/storage"
)

// App holds the wired portal: storage, hub, services and both routers.
type App struct {
	cfg       *config.Config
	db        *gorm.DB
	tokens    *jwt.Manager
	hub       *hub.Hub
	publisher pubsub.Publisher
	api       *gin.Engine
	realtime  *mux.Router
}

// New connects every dependency named in cfg and builds the routers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: db}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// OpenDatabase connects and migrates the claim and user tables.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return db, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.cfg
	l := log.L()

	ids, err := idgen.New(cfg.Claims.IDGen)
	if err != nil {
		return err
	}

	a.tokens, err = jwt.NewManager(cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	if cfg.JWT.Secret == "" {
		l.Warn().Msg("jwt.secret not set, signing with an ephemeral RSA key")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	a.publisher, err = pubsub.NewPublisher(cfg.PubSub)
	if err != nil {
		return fmt.Errorf("failed to create publisher: %w", err)
	}

	a.hub = hub.New(cfg.WebSocket)

	claimRepo := repository.NewGormClaimRepository(a.db, ids)
	userRepo := repository.NewGormUserRepository(a.db)

	commands := service.NewClaimCommandHandler(claimRepo)
	queries := service.NewClaimQueryHandler(claimRepo)
	submitter := service.NewSubmissionService(commands, a.hub, a.publisher)
	documents := service.NewDocumentService(claimRepo, store, a.hub, a.publisher, cfg.Claims.URLExpiry)
	authService := service.NewAuthService(userRepo, a.tokens, 0)

	authMiddleware := middleware.NewAuthMiddleware(a.tokens)
	var limiter *ratelimit.Limiter
	if cfg.Claims.SubmitRate > 0 {
		limiter = ratelimit.New(cfg.Claims.SubmitRate, cfg.Claims.SubmitBurst, 0)
	}

	a.api = newAPIRouter(cfg, l,
		handler.NewClaimHandler(submitter, queries, authMiddleware, limiter),
		handler.NewDocumentHandler(documents, authMiddleware, cfg.Server.MaxUploadSize),
		handler.NewAuthHandler(authService, authMiddleware),
	)
	if dir, prefix, ok := localFiles(cfg.Storage); ok {
		files := a.api.Group(prefix, authMiddleware.RequireAuth())
		files.StaticFS("/", gin.Dir(dir, false))
	}
	a.realtime = newRealtimeRouter(cfg, l, a.hub,
		handler.NewWSHandler(a.hub, authMiddleware, cfg.WebSocket, cfg.CORS.AllowedOrigins),
	)

	l.Info().
		Str("db_driver", cfg.Database.Driver).
		Str("storage_driver", cfg.Storage.Driver).
		Str("pubsub_driver", cfg.PubSub.Driver).
		Str("id_scheme", ids.Scheme()).
		Msg("portal wired")
	return nil
}

func (a *App) API() http.Handler      { return a.api }
func (a *App) Realtime() http.Handler { return a.realtime }
func (a *App) Hub() *hub.Hub          { return a.hub }
func (a *App) Tokens() *jwt.Manager   { return a.tokens }

// localFiles reports where local document URLs are served from, when the
// local driver hands out same-origin paths.
func localFiles(cfg storage.Config) (dir, prefix string, ok bool) {
	if cfg.Driver != "" && cfg.Driver != "local" {
		return "", "", false
	}
	prefix = strings.TrimSuffix(cfg.Local.BaseURL, "/")
	if !strings.HasPrefix(prefix, "/") || prefix == "/" {
		return "", "", false
	}
	dir = cfg.Local.BasePath
	if dir == "" {
		dir = "./data/uploads"
	}
	return dir, prefix, true
}

// Close releases the publisher and database.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}
	return errors.Join(errs...)
}
