package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/cache"
	"taskflow/config"
	"taskflow/llm"
	"taskflow/metrics"
	"taskflow/store"
)

// Server wires the HTTP API together
type Server struct {
	cfg     *config.Config
	store   *store.Store
	planner *llm.Planner
	cache   *cache.PlanCache
	metrics *metrics.Collector
	hub     *Hub
	limiter *rateLimiter
	router  *gin.Engine
}

// New builds the server and registers all routes
func New(cfg *config.Config, st *store.Store, planner *llm.Planner) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		planner: planner,
		metrics: metrics.NewCollector(),
		hub:     NewHub(),
	}
	if cfg.Cache.Enabled {
		s.cache = cache.New(cfg.Cache.MaxEntries)
	}
	if cfg.RateLimit.Enabled {
		s.limiter = newRateLimiter(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors())
	router.Use(monitoring(s.metrics))

	router.GET("/", s.handleRoot)
	router.GET("/ws/:session_id", s.hub.Handle)

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/metrics", s.handleMetrics)
		api.GET("/analytics", s.handleAnalytics)

		plans := api.Group("/plans")
		{
			plans.POST("", s.handleCreatePlan)
			plans.GET("", s.handleListPlans)
			plans.GET("/:id", s.handleGetPlan)
			plans.PUT("/:id", s.handleRegeneratePlan)
			plans.DELETE("/:id", s.handleDeletePlan)
			plans.GET("/:id/suggestions", s.handleSuggestions)
			plans.GET("/:id/analytics", s.handlePlanAnalytics)
			plans.GET("/:id/export/calendar", s.handleExportCalendar)
			plans.POST("/:id/optimize", s.handleOptimize)
			plans.POST("/:id/apply-optimization", s.handleApplyOptimization)
			plans.PATCH("/:id/tasks/:tid", s.handleUpdateTask)
			plans.PATCH("/:id/tasks/:tid/status", s.handleUpdateTaskStatus)
			plans.POST("/:id/tasks/:tid/subtasks", s.handleGenerateSubtasks)
			plans.POST("/:id/tasks/:tid/comments", s.handleAddComment)
			plans.GET("/:id/tasks/:tid/comments", s.handleListComments)
			plans.DELETE("/:id/tasks/:tid/comments/:cid", s.handleDeleteComment)
		}
	}

	s.router = router
	return s
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
