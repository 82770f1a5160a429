package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/feedrewriter/pkg/config"
	"github.com/umputun/feedrewriter/pkg/domain"
	"github.com/umputun/feedrewriter/pkg/scheduler"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/database.go -pkg mocks -skip-ensure -fmt goimports . Database
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

const authUser = "admin"

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	db        Database
	scheduler Scheduler
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Database interface for server operations
type Database interface {
	GetFeed(ctx context.Context, id int64) (*domain.FeedConfig, error)
	GetFeeds(ctx context.Context) ([]domain.FeedConfig, error)
	CreateFeed(ctx context.Context, feed *domain.FeedConfig) error
	UpdateFeed(ctx context.Context, feed domain.FeedConfig) error
	DeleteFeed(ctx context.Context, id int64) error
	CountProcessed(ctx context.Context, feedID int64) (int, error)
	ClearProcessed(ctx context.Context, feedID int64) error
	GetLogEntries(ctx context.Context, limit int) ([]domain.LogEntry, error)
	ClearLogEntries(ctx context.Context) error
	ListPosts(ctx context.Context, limit int) ([]domain.PublishedPost, error)
	GetPost(ctx context.Context, id int64) (*domain.PublishedPost, error)
}

// Scheduler interface for run control
type Scheduler interface {
	RunNow(ctx context.Context) (domain.RunResult, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	ClearLock(ctx context.Context) error
	Reschedule(ctx context.Context) error
	Status(ctx context.Context) (*scheduler.Status, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// New initializes a new server instance
func New(cfg ConfigProvider, db Database, sched Scheduler, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		db:        db,
		scheduler: sched,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("feedrewriter", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		if passwd := s.config.GetFullConfig().Server.AuthPassword; passwd != "" {
			r.Use(rest.BasicAuthWithUserPasswd(authUser, passwd))
		}

		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /run", s.runHandler)
		r.HandleFunc("POST /pause", s.pauseHandler)
		r.HandleFunc("POST /resume", s.resumeHandler)
		r.HandleFunc("POST /lock/clear", s.clearLockHandler)

		r.HandleFunc("GET /logs", s.logsHandler)
		r.HandleFunc("DELETE /logs", s.clearLogsHandler)

		r.HandleFunc("GET /posts", s.postsHandler)
		r.HandleFunc("GET /posts/{id}", s.postHandler)

		r.HandleFunc("GET /feeds", s.feedsHandler)
		r.HandleFunc("POST /feeds", s.createFeedHandler)
		r.HandleFunc("PUT /feeds/{id}", s.updateFeedHandler)
		r.HandleFunc("DELETE /feeds/{id}", s.deleteFeedHandler)
		r.HandleFunc("DELETE /feeds/{id}/processed", s.clearProcessedHandler)
	})

	// public outputs
	s.router.HandleFunc("GET /rss", s.rssHandler)
	s.router.HandleFunc("GET /opml", s.opmlHandler)
	images := http.FileServer(http.Dir(s.config.GetFullConfig().Publisher.Local.ImagesDir))
	s.router.Handle("GET /images/", http.StripPrefix("/images/", images))
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
