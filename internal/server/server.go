// Package server serves the search home page, the results page and a small
// JSON API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

// ThemeCookie holds the visitor's theme choice.
const ThemeCookie = "kliff_theme"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Config   config.Config
	Source   suggest.Source
	Resolver results.Resolver
	Logger   logr.Logger
}

// Server owns the HTTP surface. Each request resolves into its own
// paginator, so handlers share no mutable state.
type Server struct {
	cfg      config.Config
	engine   *suggest.Engine
	resolver results.Resolver
	policy   suggest.EnterPolicy
	html     *render.HTML
	log      logr.Logger
}

// New parses the templates and prepares the handlers.
func New(opts Options) (*Server, error) {
	if opts.Source == nil || opts.Resolver == nil {
		return nil, errors.New("server: source and resolver are required")
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	policy, err := suggest.ParseEnterPolicy(opts.Config.Search.EnterPolicy)
	if err != nil {
		return nil, err
	}
	html, err := render.NewHTML()
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      opts.Config,
		engine:   suggest.NewEngine(opts.Source, suggest.Options{MaxSuggestions: opts.Config.Search.MaxSuggestions}),
		resolver: opts.Resolver,
		policy:   policy,
		html:     html,
		log:      opts.Logger,
	}, nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(s.log))
	engine.Use(SecurityHeaders())

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.RegisterRoutes(engine)
	s.RegisterAPIRoutes(engine.Group("/api"))
	return engine
}

// RegisterRoutes adds the HTML pages.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/", s.home)
	r.GET("/results", s.results)
	r.GET("/suggest", s.suggestFragment)
	r.POST("/theme/toggle", s.toggleTheme)
}

// RegisterAPIRoutes adds the JSON endpoints.
func (s *Server) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("/suggest", s.apiSuggest)
	rg.GET("/results", s.apiResults)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
