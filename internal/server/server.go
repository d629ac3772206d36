// Package server exposes the pipeline over HTTP: a run trigger plus
// read-only views of the Report Store.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/model"
	"github.com/abelbrown/georisk/internal/pipeline"
	"github.com/abelbrown/georisk/internal/store"
)

// Runner is the piece of the pipeline the server drives.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Server handles HTTP triggers. At most one run is in flight at a time.
type Server struct {
	runner  Runner
	store   store.Store
	metrics *metrics.Metrics
	origins []string

	running atomic.Bool
	wg      sync.WaitGroup
	baseCtx context.Context
}

// New creates a Server. Background runs use ctx, so canceling it stops them.
func New(ctx context.Context, runner Runner, st store.Store, m *metrics.Metrics, origins []string) *Server {
	return &Server{
		runner:  runner,
		store:   st,
		metrics: m,
		origins: origins,
		baseCtx: ctx,
	}
}

// RunResponse is returned by POST /run.
type RunResponse struct {
	Status string            `json:"status"`
	Cached bool              `json:"cached,omitempty"`
	RunID  string            `json:"runId,omitempty"`
	Report *model.RiskReport `json:"report,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.origins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	r.POST("/run", s.PostRun)
	r.GET("/status", s.GetStatus)
	r.GET("/report", s.GetLatest)
	r.GET("/reports", s.GetHistory)
	r.GET("/reports/:date", s.GetArchived)
	r.GET("/healthz", s.GetHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

// Wait blocks until background runs started by PostRun finish.
func (s *Server) Wait() {
	s.wg.Wait()
}

// PostRun starts a pipeline run. With ?wait=true it runs inline and returns
// the report.
func (s *Server) PostRun(c *gin.Context) {
	if !s.running.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, RunResponse{Status: "busy", Error: "a run is already in progress"})
		return
	}

	if c.Query("wait") == "true" {
		defer s.running.Store(false)
		res, err := s.runner.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, RunResponse{Status: "error", RunID: res.RunID, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, RunResponse{Status: "completed", Cached: res.Cached, RunID: res.RunID, Report: &res.Report})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		if _, err := s.runner.Run(s.baseCtx); err != nil {
			logging.Error("background run failed", "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, RunResponse{Status: "accepted"})
}

func (s *Server) GetStatus(c *gin.Context) {
	st, err := store.ReadStatus(c.Request.Context(), s.store)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run has been recorded"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) GetLatest(c *gin.Context) {
	s.serveKey(c, store.LatestKey)
}

func (s *Server) GetArchived(c *gin.Context) {
	day, err := time.Parse(model.DayFormat, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	s.serveKey(c, store.ArchiveKey(day))
}

func (s *Server) GetHistory(c *gin.Context) {
	days, err := store.History(c.Request.Context(), s.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "total": len(days)})
}

func (s *Server) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": s.running.Load()})
}

// serveKey writes stored report bytes through unchanged.
func (s *Server) serveKey(c *gin.Context, key string) {
	data, err := s.store.Read(c.Request.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("http request", "method", c.Request.Method, "path", c.FullPath(),
			"status", c.Writer.Status(), "took", time.Since(start).Round(time.Microsecond))
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
// and waits for any background run.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	return err
}
