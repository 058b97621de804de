// Package api serves stored articles and their reports over a read-only
// JSON API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/report"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// Reader is the part of a store the API needs.
type Reader interface {
	Articles(ctx context.Context, q storage.Query) ([]*types.Article, error)
	Name() string
}

// Server provides the HTTP API.
type Server struct {
	router  *gin.Engine
	port    int
	store   Reader
	info    report.SourceInfo
	metrics http.Handler
	report  config.ReportConfig
	version string
	logger  *slog.Logger
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Sources report.SourceInfo
	Metrics http.Handler
	Version string
}

// NewServer creates a new API server over store.
func NewServer(cfg *config.Config, store Reader, opts Options, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		router:  gin.New(),
		port:    cfg.API.Port,
		store:   store,
		info:    opts.Sources,
		metrics: opts.Metrics,
		report:  cfg.Report,
		version: opts.Version,
		logger:  logger.With("component", "api_server"),
	}
	if s.version == "" {
		s.version = "dev"
	}

	s.router.Use(gin.Recovery(), s.requestLogger())
	origins := cfg.API.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr, "store", s.store.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("API server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleOverview)
	s.router.GET("/api/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/articles", s.handleArticles)
		api.GET("/trends", s.handleTrends)
		api.GET("/summary", s.handleSummary)
		api.GET("/market", s.handleMarket)
	}

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   s.version,
		"store":     s.store.Name(),
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleArticles(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	articles, err := s.store.Articles(c.Request.Context(), q)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if articles == nil {
		articles = []*types.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(articles),
		"articles": articles,
	})
}

func (s *Server) handleTrends(c *gin.Context) {
	articles, ok := s.load(c)
	if !ok {
		return
	}
	days, err := s.days(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trends, err := report.AnalyzeTrends(articles, days)
	if err != nil {
		s.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (s *Server) handleSummary(c *gin.Context) {
	articles, ok := s.load(c)
	if !ok {
		return
	}
	days, err := s.days(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := report.SummaryReport(articles, days)
	if err != nil {
		s.reportError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

func (s *Server) handleMarket(c *gin.Context) {
	articles, ok := s.load(c)
	if !ok {
		return
	}
	r, err := report.BuildMarketReport(articles, s.info)
	if err != nil {
		s.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// load reads the filtered article set every report is built from.
func (s *Server) load(c *gin.Context) ([]*types.Article, bool) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	articles, err := s.store.Articles(c.Request.Context(), q)
	if err != nil {
		s.storeError(c, err)
		return nil, false
	}
	return articles, true
}

func (s *Server) parseQuery(c *gin.Context) (storage.Query, error) {
	q := storage.Query{
		Limit:  s.report.Limit,
		Source: c.Query("source"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
		q.Limit = n
	}
	label, err := types.ParseLabel(c.Query("label"))
	if err != nil {
		return q, err
	}
	q.Label = label
	if v := c.Query("since"); v != "" {
		if q.Since, err = storage.ParseTime(v, false); err != nil {
			return q, err
		}
	}
	if v := c.Query("until"); v != "" {
		if q.Until, err = storage.ParseTime(v, true); err != nil {
			return q, err
		}
	}
	return q, nil
}

func (s *Server) days(c *gin.Context) (int, error) {
	v := c.Query("days")
	if v == "" {
		return s.report.TrendDays, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid days %q", v)
	}
	return n, nil
}

func (s *Server) storeError(c *gin.Context, err error) {
	s.logger.Error("store query failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
}

func (s *Server) reportError(c *gin.Context, err error) {
	if errors.Is(err, report.ErrNoData) || errors.Is(err, report.ErrNoMarketData) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.logger.Error("report failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
