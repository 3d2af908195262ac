// Package notifications tells the mailer service about shipment changes.
package notifications

import (
	"context"

	"go.uber.org/zap"

	"parcel-shipping-service/shipments/models"
)

// Notifier delivers best-effort shipment emails. Callers log failures and carry on.
type Notifier interface {
	ShipmentCreated(ctx context.Context, to string, shipment *models.Shipment) error
	ShipmentUpdated(ctx context.Context, to string, shipment *models.Shipment, event *models.TrackingEvent, statusChanged bool) error
}

// Noop is used when no mailer is configured.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger}
}

func (n *Noop) ShipmentCreated(_ context.Context, to string, shipment *models.Shipment) error {
	n.logger.Debug("Mailer not configured, skipping creation email",
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("to", to),
	)
	return nil
}

func (n *Noop) ShipmentUpdated(_ context.Context, to string, shipment *models.Shipment, _ *models.TrackingEvent, _ bool) error {
	n.logger.Debug("Mailer not configured, skipping update email",
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("to", to),
	)
	return nil
}
