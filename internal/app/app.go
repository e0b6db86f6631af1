package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/alumni"
	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/comment"
	"github.com/haniSalm/FAST-E-Learning/internal/config"
	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/health"
	"github.com/haniSalm/FAST-E-Learning/internal/kafka"
	"github.com/haniSalm/FAST-E-Learning/internal/logger"
	"github.com/haniSalm/FAST-E-Learning/internal/messaging"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/middleware"
	"github.com/haniSalm/FAST-E-Learning/internal/rating"
	"github.com/haniSalm/FAST-E-Learning/internal/resource"
	"github.com/haniSalm/FAST-E-Learning/internal/schema"
	"github.com/haniSalm/FAST-E-Learning/internal/storage"
	"github.com/haniSalm/FAST-E-Learning/internal/telemetry"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	events    *events.Dispatcher
	telemetry *telemetry.Telemetry
}

// Deps are the collaborators Build wires into the router.
type Deps struct {
	Config    *config.Config
	DB        *bun.DB
	Storage   storage.Storage
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, cfg.Env, slogLogger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(ServiceName)
	if err := tel.Metrics.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}
	if err := tel.Metrics.Health.RegisterDependencies(meter, "postgres"); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, schema.Tables()...); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, slogLogger)
	if err != nil {
		db.Close(database)
		return nil, err
	}

	app := Build(Deps{
		Config:    cfg,
		DB:        database,
		Storage:   store,
		Publisher: newPublisher(cfg.Events, tel.Metrics, slogLogger),
		Metrics:   tel.Metrics,
		Logger:    slogLogger,
	})
	app.telemetry = tel

	slogLogger.Info("application initialized successfully")
	return app, nil
}

// Build wires handlers around already-open dependencies.
func Build(d Deps) *App {
	cfg := d.Config
	log := d.Logger

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: log,
		db:     d.DB,
		events: events.NewDispatcher(d.Publisher, log),
	}

	alumniPattern, err := regexp.Compile(cfg.Alumni.EmailPattern)
	if err != nil {
		log.Warn("invalid alumni email pattern, using default", "pattern", cfg.Alumni.EmailPattern, "error", err)
		alumniPattern = nil
	}
	validator := validation.New(validation.WithAlumniPattern(alumniPattern))
	uploader := storage.NewUploader(d.Storage, cfg.Storage.MaxUploadMB)

	r := app.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	deps := map[string]health.Pinger{"postgres": d.DB}
	if pinger, ok := d.Storage.(health.Pinger); ok {
		deps["storage"] = pinger
	}
	health.NewHandler(deps, d.Metrics, log).RegisterRoutes(r)

	if local, ok := d.Storage.(*storage.Local); ok {
		r.Handle(cfg.Storage.MediaURL+"*", local.Handler())
	}

	// Repositories
	userRepo := user.NewRepository(d.DB, d.Metrics)
	courseRepo := course.NewRepository(d.DB, d.Metrics)

	// Auth
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTL)*time.Second)
	authService := auth.NewService(auth.NewRepository(d.DB, d.Metrics), userRepo, tokens, validator, cfg.Auth, d.Metrics)
	auth.NewHandler(authService, log, cfg.Auth.SecureCookies).RegisterRoutes(r)

	// Courses and resources are open to anonymous callers
	courseService := course.NewService(courseRepo, uploader, validator, app.events, d.Metrics, log)
	course.NewHandler(courseService, log, cfg.Storage.MaxUploadMB).RegisterRoutes(r)

	resource.RegisterAll(r, resource.Deps{
		DB:          d.DB,
		Courses:     courseRepo,
		Files:       uploader,
		Validator:   validator,
		Metrics:     d.Metrics,
		Logger:      log,
		MaxUploadMB: cfg.Storage.MaxUploadMB,
	})

	commentService := comment.NewService(comment.NewRepository(d.DB, d.Metrics), courseRepo, validator, app.events, d.Metrics)
	ratingService := rating.NewService(rating.NewRepository(d.DB, d.Metrics), courseService, app.events, d.Metrics)
	alumniService := alumni.NewService(alumni.NewRepository(d.DB, d.Metrics), validator)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokens, log))
		comment.NewHandler(commentService, log).RegisterRoutes(r)
		rating.NewHandler(ratingService, log).RegisterRoutes(r)
		alumni.NewHandler(alumniService, log).RegisterRoutes(r)
	})

	return app
}

func newPublisher(cfg config.EventsConfig, m *metrics.Metrics, log *slog.Logger) events.Publisher {
	switch cfg.Driver {
	case "nats":
		producer, err := messaging.NewProducer(cfg.NATSURL, cfg.Subject, log, m)
		if err != nil {
			log.Warn("failed to initialize NATS producer, activity events disabled", "error", err)
			return events.Noop{}
		}
		return producer
	case "kafka":
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log, m)
		if err != nil {
			log.Warn("failed to initialize kafka producer, activity events disabled", "error", err)
			return events.Noop{}
		}
		return producer
	default:
		return events.Noop{}
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.events.Close())
	db.Close(a.db)
	errs = append(errs, a.telemetry.Shutdown(ctx, a.logger))

	return errors.Join(errs...)
}
