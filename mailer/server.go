package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"parcel-shipping-service/config"
	"parcel-shipping-service/core"
	"parcel-shipping-service/notifications"
)

type Server struct {
	router    *gin.Engine
	transport Transport
	composer  *Composer
	probe     *Probe
	from      string
	contactTo string
	logger    *zap.Logger
	now       func() time.Time
}

// NewServer wires the handlers around an already-initialised transport.
func NewServer(cfg config.MailerConfig, transport Transport, probe *Probe, logger *zap.Logger) *Server {
	support := cfg.SupportEmail
	if support == "" {
		support = cfg.ContactAddress
	}

	router := gin.New()
	router.Use(gin.Recovery(), core.RequestLogger(logger))

	s := &Server{
		router:    router,
		transport: transport,
		composer:  NewComposer(cfg.SiteURL, support),
		probe:     probe,
		from:      cfg.SMTP.From,
		contactTo: cfg.ContactAddress,
		logger:    logger,
		now:       time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.POST("/send-email", s.sendContact)
		api.POST("/send-shipment-email", s.sendShipmentCreated)
		api.POST("/send-shipment-update-email", s.sendShipmentUpdated)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"transport": s.probe.State(),
	})
}

func (s *Server) sendContact(c *gin.Context) {
	var req notifications.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		badRequest(c, "name, email, subject and message are required")
		return
	}

	email, err := s.composer.Contact(req)
	if err != nil {
		s.fail(c, "contact", err)
		return
	}

	s.deliver(c, "contact", s.contactTo, req.Email, email)
}

func (s *Server) sendShipmentCreated(c *gin.Context) {
	var req notifications.ShipmentEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" || req.Shipment == nil {
		badRequest(c, "to and shipment are required")
		return
	}

	email, err := s.composer.ShipmentCreated(req.Shipment)
	if err != nil {
		s.fail(c, "shipment-created", err)
		return
	}

	s.deliver(c, "shipment-created", req.To, "", email)
}

func (s *Server) sendShipmentUpdated(c *gin.Context) {
	var req notifications.ShipmentUpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" || req.Shipment == nil || req.TrackingEvent == nil {
		badRequest(c, "to, shipment and trackingEvent are required")
		return
	}

	email, err := s.composer.ShipmentUpdated(req.Shipment, req.TrackingEvent, req.StatusChanged)
	if err != nil {
		s.fail(c, "shipment-updated", err)
		return
	}

	s.deliver(c, "shipment-updated", req.To, "", email)
}

func (s *Server) deliver(c *gin.Context, kind, to, replyTo string, email Email) {
	msg, err := s.message(to, replyTo, email)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := s.transport.Send(c.Request.Context(), msg); err != nil {
		s.fail(c, kind, err)
		return
	}

	s.logger.Info("Email sent", zap.String("kind", kind), zap.String("to", to))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}

func (s *Server) message(to, replyTo string, email Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, errors.New("invalid sender address")
	}
	if err := msg.To(to); err != nil {
		return nil, errors.New("invalid recipient address")
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return nil, errors.New("invalid reply-to address")
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	msg.AddAlternativeString(mail.TypeTextPlain, email.Text)
	return msg, nil
}

func (s *Server) fail(c *gin.Context, kind string, err error) {
	code := Classify(err)
	s.logger.Error("Failed to send email",
		zap.String("kind", kind),
		zap.String("code", string(code)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"code":    code,
		"error":   "Failed to send email",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// Run serves until ctx is done, then closes the transport.
func (s *Server) Run(ctx context.Context, addr string) error {
	err := core.Serve(ctx, addr, s.router, s.logger)
	if cerr := s.transport.Close(); cerr != nil {
		s.logger.Warn("Failed to close SMTP transport", zap.Error(cerr))
	}
	return err
}
