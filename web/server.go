package web

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kisy/appmole/model"
)

const DefaultTop = 3

// Provider is what the API reads from and resets.
type Provider interface {
	TopBySpeed(n int) []model.AppStats
	TopByTotal(n int) []model.AppStats
	Stats(n int) model.StatsView
	Reset() error
}

type Server struct {
	agg        Provider
	top        int
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(agg Provider, addr string, top int) *Server {
	if top <= 0 {
		top = DefaultTop
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.HandleMethodNotAllowed = true

	s := &Server{
		agg:    agg,
		top:    top,
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.RegisterHandlers()
	return s
}

func (s *Server) RegisterHandlers() {
	api := s.router.Group("/api")
	{
		api.GET("/stats", s.stats)
		api.GET("/apps/top", s.topApps)
		api.GET("/apps/usage", s.usage)
		api.POST("/reset", s.reset)
	}
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	log.Printf("Web server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.agg.Stats(s.top))
}

func (s *Server) topApps(c *gin.Context) {
	n, ok := s.limit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.agg.TopBySpeed(n))
}

func (s *Server) usage(c *gin.Context) {
	n, ok := s.limit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.agg.TopByTotal(n))
}

func (s *Server) reset(c *gin.Context) {
	log.Println("API: Reset totals")
	if err := s.agg.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// limit reads ?n=. Missing means the configured default and 0 means all.
func (s *Server) limit(c *gin.Context) (int, bool) {
	raw := c.Query("n")
	if raw == "" {
		return s.top, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
