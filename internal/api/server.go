package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/jobs"
	"NewsTrendMonitor/internal/metrics"
)

// TrendService is the pipeline surface the handlers depend on.
type TrendService interface {
	Analyze(ctx context.Context, keyword string, maxResults, windowHours int) (domain.AnalysisResult, error)
	Refresh(ctx context.Context, keyword string, maxResults, windowHours int) (domain.AnalysisResult, error)
	Cached(keyword string, maxResults, windowHours int) (domain.AnalysisResult, bool)
	AnalyzeAsync(keyword string, maxResults, windowHours int) string
	Latest(ctx context.Context, hours int) ([]domain.ScoredItem, error)
	RecentSpikes(ctx context.Context, limit int) ([]domain.SpikeEvent, error)
	Sentiment(ctx context.Context, text string) (domain.Sentiment, error)
}

// JobReader exposes job lookup for the result endpoint.
type JobReader interface {
	Get(id string) (jobs.Job, bool)
}

// Server hosts the HTTP API over gin.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	service    TrendService
	jobs       JobReader
	metrics    *metrics.Collector
	logger     *slog.Logger

	// /latest throttle state. Inside the window the last response is
	// replayed instead of hitting the store again.
	latestMu     sync.Mutex
	latestCalled time.Time
	latestCached map[int]latestResponse
}

// NewServer builds the server and registers all routes.
func NewServer(addr string, service TrendService, jobReader JobReader, collector *metrics.Collector, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:       gin.New(),
		service:      service,
		jobs:         jobReader,
		metrics:      collector,
		logger:       logger,
		latestCached: map[int]latestResponse{},
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.New(corsConfig()))
	s.engine.Use(s.metricsMiddleware())
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", s.handleMetrics)

	s.engine.POST("/analyze", s.handleAnalyze)
	s.engine.GET("/analyze", s.handleAnalyze)
	s.engine.POST("/analyze/async", s.handleAnalyzeAsync)
	s.engine.GET("/result/:job_id", s.handleJobResult)

	s.engine.GET("/latest", s.handleLatest)
	s.engine.GET("/spikes", s.handleSpikes)
	s.engine.GET("/sentiment", s.handleSentiment)
}

// Handler exposes the routing tree, used by the handler tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the listener.
func (s *Server) Stop(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("http server shutting down")
	}
	return s.httpServer.Shutdown(ctx)
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	return cfg
}
