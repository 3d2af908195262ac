package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"parcel-shipping-service/shipments/models"
)

// ShipmentEmailRequest is the body of POST /api/send-shipment-email.
type ShipmentEmailRequest struct {
	To       string           `json:"to"`
	Shipment *models.Shipment `json:"shipment"`
}

// ShipmentUpdateEmailRequest is the body of POST /api/send-shipment-update-email.
type ShipmentUpdateEmailRequest struct {
	To            string                `json:"to"`
	Shipment      *models.Shipment      `json:"shipment"`
	TrackingEvent *models.TrackingEvent `json:"trackingEvent"`
	StatusChanged bool                  `json:"statusChanged"`
}

// ContactRequest is the body of POST /api/send-email.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Client calls the mailer service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) ShipmentCreated(ctx context.Context, to string, shipment *models.Shipment) error {
	return c.post(ctx, "/api/send-shipment-email", ShipmentEmailRequest{To: to, Shipment: shipment})
}

func (c *Client) ShipmentUpdated(ctx context.Context, to string, shipment *models.Shipment, event *models.TrackingEvent, statusChanged bool) error {
	return c.post(ctx, "/api/send-shipment-update-email", ShipmentUpdateEmailRequest{
		To:            to,
		Shipment:      shipment,
		TrackingEvent: event,
		StatusChanged: statusChanged,
	})
}

// Contact relays a contact-form message to the company inbox.
func (c *Client) Contact(ctx context.Context, req ContactRequest) error {
	return c.post(ctx, "/api/send-email", req)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mailer request failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	c.logger.Debug("Mailer accepted request", zap.String("path", path))
	return nil
}
