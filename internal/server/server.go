package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shelternet/apiserver/config"
	"github.com/shelternet/apiserver/internal/auth"
	"github.com/shelternet/apiserver/internal/db"
	"github.com/shelternet/apiserver/internal/events"
	"github.com/shelternet/apiserver/internal/handlers"
	"github.com/shelternet/apiserver/internal/services"
	"github.com/shelternet/apiserver/internal/storage"
	"github.com/shelternet/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	logger     *zap.Logger
}

// New constructs a Server with its full dependency graph: database,
// repositories, services, optional image storage and event broker.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	shelterRepo := store.NewShelterRepository(dbConn)
	animalRepo := store.NewAnimalRepository(dbConn)

	codec := auth.NewTokenCodec(cfg.JWTSecret)
	resolver := auth.NewResolver(codec, userRepo)

	imageStore, err := newImageStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if imageStore != nil {
		if err := imageStore.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	publisher, err := newEventPublisher(ctx, cfg, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userService := services.NewUserService(userRepo, codec)
	shelterService := services.NewShelterService(shelterRepo, animalRepo, publisher, logger)
	animalService := services.NewAnimalService(animalRepo, imageStore)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Group(func(r chi.Router) {
		r.Use(handlers.ResolveAuthContext(resolver))
		r.Route("/shelters", func(r chi.Router) {
			handlers.ShelterRouter(r, shelterService)
		})
		r.Route("/animals", func(r chi.Router) {
			handlers.AnimalRouter(r, animalService)
		})
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.logger.Sync()
	return s.httpServer.Close()
}

func newImageStore(ctx context.Context, cfg config.Config) (*storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewImageStore(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewImageStore(backend), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func newEventPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (*events.Publisher, error) {
	switch cfg.EventsBackend {
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, logger), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, logger), nil
	case "", "none":
		return events.NewPublisher(nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
