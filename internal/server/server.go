// Package server exposes a read-only status surface for a running host:
// health, the current traversal order, and prometheus metrics.
//
// The scheduler itself is single-threaded; the server never touches it
// directly. The host hands in a snapshot function and is responsible for
// making it safe to call from request goroutines.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stagehand-run/stagehand/internal/logging"
	"github.com/stagehand-run/stagehand/internal/observability"
)

// Snapshot is one consistent view of the runtime, produced by the host.
type Snapshot struct {
	Attached []uint64 `json:"attached"`
	Ticks    uint64   `json:"ticks"`
	Done     bool     `json:"done"`
}

// SnapshotFunc produces the current runtime snapshot.
type SnapshotFunc func() Snapshot

// Server serves the status API for one host process.
type Server struct {
	addr     string
	router   *gin.Engine
	snapshot SnapshotFunc
	started  time.Time
}

func New(addr string, corsOrigins []string, snapshot SnapshotFunc) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:     addr,
		router:   gin.New(),
		snapshot: snapshot,
		started:  time.Now(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(observability.RequestLogger(logging.Component("server")))
	s.router.Use(observability.RequestMetricsMiddleware())
	if len(corsOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		snap := s.snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.started).String(),
			"attached": len(snap.Attached),
			"ticks":    snap.Ticks,
			"done":     snap.Done,
		})
	})

	s.router.GET("/stages", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.snapshot())
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Router exposes the gin engine for tests and custom serving setups.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails. Intended to run on its own goroutine.
func (s *Server) Run() error {
	observability.RegisterMetrics()
	return s.router.Run(s.addr)
}
