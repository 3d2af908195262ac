// Package api is the site's HTTP surface: public tracking and quotes plus the operator console.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"parcel-shipping-service/config"
	"parcel-shipping-service/core"
	"parcel-shipping-service/shipments/services"
	overdue "parcel-shipping-service/workers/shipments"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SweepReporter interface {
	LastSweep() *overdue.Sweep
}

type Server struct {
	router     *gin.Engine
	service    *services.ShipmentService
	db         Pinger
	sweeps     SweepReporter
	adminToken string
	logger     *zap.Logger
	started    time.Time
	now        func() time.Time
}

// NewServer builds the router. sweeps may be nil when the overdue worker is not running.
func NewServer(cfg config.SiteConfig, service *services.ShipmentService, db Pinger, sweeps SweepReporter, logger *zap.Logger) *Server {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(services.JSONFieldName)
	}

	router := gin.New()
	router.Use(gin.Recovery(), core.RequestLogger(logger))

	s := &Server{
		router:     router,
		service:    service,
		db:         db,
		sweeps:     sweeps,
		adminToken: cfg.AdminToken,
		logger:     logger,
		started:    time.Now(),
		now:        time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/track/:trackingNumber", s.track)
		api.GET("/quote", s.quote)
	}

	admin := api.Group("/admin", s.requireOperator())
	{
		admin.POST("/shipments", s.createShipment)
		admin.GET("/shipments", s.listShipments)
		admin.GET("/shipments/:id", s.getShipment)
		admin.PATCH("/shipments/:id", s.updateShipment)
		admin.DELETE("/shipments/:id", s.deleteShipment)
		admin.GET("/shipments/:id/events", s.shipmentEvents)
		admin.GET("/shipments/:id/receipt", s.receipt)
		admin.POST("/shipments/:id/tracking-number", s.regenerateTrackingNumber)
		admin.GET("/events/recent", s.recentEvents)
		admin.GET("/stats", s.stats)
		admin.GET("/exports/shipments.xlsx", s.exportShipments)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context, addr string) error {
	return core.Serve(ctx, addr, s.router, s.logger)
}

func (s *Server) healthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	body := gin.H{
		"timestamp":      s.now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(s.now().Sub(s.started).Seconds()),
	}

	if err := s.db.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("Database health check failed", zap.Error(err))
		status, code = "error", http.StatusServiceUnavailable
		body["error"] = "database connection failed"
	}

	body["status"] = status
	c.JSON(code, body)
}
