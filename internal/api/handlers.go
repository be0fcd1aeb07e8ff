package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"NewsTrendMonitor/internal/domain"
)

const latestThrottle = time.Second

type analyzeRequest struct {
	Keyword         string `json:"keyword" form:"keyword"`
	MaxResults      int    `json:"max_results" form:"max_results"`
	TimeWindowHours int    `json:"time_window_hours" form:"time_window_hours"`
}

// normalize applies defaults, then validates ranges. Returns a user-facing
// message on invalid input.
func (r *analyzeRequest) normalize() string {
	r.Keyword = strings.TrimSpace(r.Keyword)
	if r.MaxResults == 0 {
		r.MaxResults = 100
	}
	if r.TimeWindowHours == 0 {
		r.TimeWindowHours = 24
	}

	switch {
	case r.Keyword == "":
		return "keyword is required"
	case len(r.Keyword) > 100:
		return "keyword must be at most 100 characters"
	case r.MaxResults < 1 || r.MaxResults > 1000:
		return "max_results must be between 1 and 1000"
	case r.TimeWindowHours < 1 || r.TimeWindowHours > 168:
		return "time_window_hours must be between 1 and 168"
	}
	return ""
}

func bindAnalyzeRequest(c *gin.Context) (analyzeRequest, bool) {
	var req analyzeRequest

	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return analyzeRequest{}, false
	}

	if msg := req.normalize(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return analyzeRequest{}, false
	}

	return req, true
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "News Trend Spike Monitor API",
		"version": "0.1.0",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "news-trend-monitor",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	if s.metrics == nil {
		c.String(http.StatusOK, "")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(s.metrics.Render()))
}

// handleAnalyze serves both the GET and POST forms. A cache hit is returned
// directly; a miss computes synchronously and additionally schedules a
// background recomputation that re-populates the cache.
func (s *Server) handleAnalyze(c *gin.Context) {
	req, ok := bindAnalyzeRequest(c)
	if !ok {
		s.countError(c, "input")
		return
	}

	if cached, hit := s.service.Cached(req.Keyword, req.MaxResults, req.TimeWindowHours); hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	go func() {
		if _, err := s.service.Refresh(context.Background(), req.Keyword, req.MaxResults, req.TimeWindowHours); err != nil {
			s.warn("background refresh failed", "keyword", req.Keyword, "error", err)
		}
	}()

	result, err := s.service.Analyze(c.Request.Context(), req.Keyword, req.MaxResults, req.TimeWindowHours)
	if err != nil {
		s.countError(c, "pipeline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeAsync(c *gin.Context) {
	req, ok := bindAnalyzeRequest(c)
	if !ok {
		s.countError(c, "input")
		return
	}

	jobID := s.service.AnalyzeAsync(req.Keyword, req.MaxResults, req.TimeWindowHours)

	c.JSON(http.StatusOK, gin.H{
		"job_id":  jobID,
		"status":  "pending",
		"message": "analysis started, poll /result/" + jobID,
	})
}

func (s *Server) handleJobResult(c *gin.Context) {
	id := c.Param("job_id")

	job, ok := s.jobs.Get(id)
	if !ok {
		s.countError(c, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

type latestResponse struct {
	Items []domain.ScoredItem `json:"items"`
	Count int                 `json:"count"`
	Hours int                 `json:"hours"`
}

// handleLatest reads recent items with a minimum one-second gap between store
// reads; calls inside the gap replay the last response for those hours.
func (s *Server) handleLatest(c *gin.Context) {
	hours, msg := intQuery(c, "hours", 1, 1, 24)
	if msg != "" {
		s.countError(c, "input")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	s.latestMu.Lock()
	if time.Since(s.latestCalled) < latestThrottle {
		if cached, ok := s.latestCached[hours]; ok {
			s.latestMu.Unlock()
			c.JSON(http.StatusOK, cached)
			return
		}
	}
	s.latestCalled = time.Now()
	s.latestMu.Unlock()

	items, err := s.service.Latest(c.Request.Context(), hours)
	if err != nil {
		s.countError(c, "store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "latest lookup failed: " + err.Error()})
		return
	}

	resp := latestResponse{Items: items, Count: len(items), Hours: hours}

	s.latestMu.Lock()
	s.latestCached[hours] = resp
	s.latestMu.Unlock()

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSpikes(c *gin.Context) {
	limit, msg := intQuery(c, "limit", 10, 1, 100)
	if msg != "" {
		s.countError(c, "input")
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	spikes, err := s.service.RecentSpikes(c.Request.Context(), limit)
	if err != nil {
		s.countError(c, "store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "spike lookup failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spikes": spikes,
		"count":  len(spikes),
		"limit":  limit,
	})
}

func (s *Server) handleSentiment(c *gin.Context) {
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		s.countError(c, "input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	sentiment, err := s.service.Sentiment(c.Request.Context(), text)
	if err != nil {
		s.countError(c, "sentiment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sentiment analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":       text,
		"score":      sentiment.Score,
		"confidence": sentiment.Confidence,
	})
}

func intQuery(c *gin.Context, name string, def, min, max int) (int, string) {
	raw := c.Query(name)
	if raw == "" {
		return def, ""
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)
	}
	return v, ""
}

func (s *Server) countError(c *gin.Context, kind string) {
	if s.metrics != nil {
		s.metrics.IncError(c.FullPath(), kind)
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
