package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parcel-shipping-service/notifications"
	"parcel-shipping-service/shipments/fees"
	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/repositories"
	"parcel-shipping-service/shipments/tracking"
)

// ShipmentStore is the persistence the service needs.
type ShipmentStore interface {
	CreateShipment(ctx context.Context, shipment *models.Shipment) error
	CreateEvent(ctx context.Context, event *models.TrackingEvent) error
	SaveShipment(ctx context.Context, shipment *models.Shipment) error
	GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListShipments(ctx context.Context, f repositories.ListFilter) ([]models.Shipment, int64, error)
	ListEvents(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error)
	RecentEvents(ctx context.Context, limit int) ([]models.TrackingEvent, error)
	CountByStatus(ctx context.Context) ([]repositories.StatusCount, error)
	DeleteShipment(ctx context.Context, id uuid.UUID) error
}

// Result is the outcome of a create or update. Warnings report side effects that failed
// without undoing the write.
type Result struct {
	Shipment *models.Shipment      `json:"shipment"`
	Event    *models.TrackingEvent `json:"event,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

// TrackingView is everything the customer tracking page shows.
type TrackingView struct {
	Shipment   *models.Shipment       `json:"shipment"`
	Events     []models.TrackingEvent `json:"events"`
	Progress   []models.Phase         `json:"progress"`
	PhaseIndex int                    `json:"phase_index"`
}

const (
	warnEventNotRecorded = "tracking event could not be recorded"
	warnEmailFailed      = "email notification failed"
)

type ShipmentService struct {
	store     ShipmentStore
	generator tracking.Generator
	notifier  notifications.Notifier
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewShipmentService(store ShipmentStore, generator tracking.Generator, notifier notifications.Notifier, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{
		store:     store,
		generator: generator,
		notifier:  notifier,
		validate:  newValidator(),
		logger:    logger,
	}
}

// Create persists a new shipment with a fresh tracking number and its initial tracking event,
// then emails the receiver.
func (s *ShipmentService) Create(ctx context.Context, operator string, in CreateShipmentInput) (*Result, error) {
	shipment, err := s.buildShipment(in)
	if err != nil {
		return nil, err
	}
	shipment.CreatedBy = operator

	trackingNumber, err := s.generator.Generate(ctx)
	if err != nil {
		s.logger.Error("Failed to generate tracking number", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTrackingNumber, err)
	}
	shipment.TrackingNumber = trackingNumber

	if err := s.store.CreateShipment(ctx, shipment); err != nil {
		s.logger.Error("Failed to create shipment",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	res := &Result{Shipment: shipment}

	event := models.InitialEvent(shipment)
	if err := s.store.CreateEvent(ctx, &event); err != nil {
		s.logger.Warn("Shipment created without initial tracking event",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, warnEventNotRecorded)
	} else {
		res.Event = &event
	}

	if err := s.notifier.ShipmentCreated(ctx, shipment.ReceiverEmail, shipment); err != nil {
		s.logger.Warn("Failed to send shipment creation email",
			zap.String("tracking_number", trackingNumber),
			zap.String("to", shipment.ReceiverEmail),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, warnEmailFailed)
	}

	s.logger.Info("Shipment successfully created",
		zap.String("tracking_number", trackingNumber),
		zap.String("created_by", operator),
	)
	return res, nil
}

func (s *ShipmentService) buildShipment(in CreateShipmentInput) (*models.Shipment, error) {
	verr := &ValidationError{}
	if err := fromValidator(s.validate.Struct(in), verr); err != nil {
		return nil, err
	}
	requireText(verr, map[string]string{
		"sender_name":      in.SenderName,
		"sender_address":   in.SenderAddress,
		"receiver_name":    in.ReceiverName,
		"receiver_address": in.ReceiverAddress,
	})
	if !in.Weight.IsPositive() {
		verr.add("weight", "must be greater than 0")
	}
	sending, err := parseDate(in.SendingDate)
	if err != nil {
		verr.add("sending_date", "must be a date (YYYY-MM-DD)")
	}
	expected, err := parseDate(in.ExpectedDeliveryDate)
	if err != nil {
		verr.add("expected_delivery_date", "must be a date (YYYY-MM-DD)")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		SenderName:           strings.TrimSpace(in.SenderName),
		SenderEmail:          strings.TrimSpace(in.SenderEmail),
		SenderPhone:          strings.TrimSpace(in.SenderPhone),
		SenderAddress:        strings.TrimSpace(in.SenderAddress),
		ReceiverName:         strings.TrimSpace(in.ReceiverName),
		ReceiverEmail:        strings.TrimSpace(in.ReceiverEmail),
		ReceiverPhone:        strings.TrimSpace(in.ReceiverPhone),
		ReceiverAddress:      strings.TrimSpace(in.ReceiverAddress),
		Description:          in.Description,
		Weight:               in.Weight,
		Quantity:             in.Quantity,
		ServiceType:          in.ServiceType,
		Insurance:            in.Insurance,
		PaymentMethod:        in.PaymentMethod,
		PaymentStatus:        in.PaymentStatus,
		Status:               in.Status,
		CurrentLocation:      strings.TrimSpace(in.CurrentLocation),
		SendingDate:          sending,
		ExpectedDeliveryDate: expected,
		SpecialInstructions:  in.SpecialInstructions,
	}
	if shipment.Quantity == 0 {
		shipment.Quantity = 1
	}
	if shipment.Status == "" {
		shipment.Status = models.StatusPending
	}
	if shipment.PaymentStatus == "" {
		shipment.PaymentStatus = models.PaymentPending
	}
	fees.Apply(shipment)
	return shipment, nil
}

// Update applies an admin edit. A change of status or location appends one tracking event and
// emails the receiver. Any status may follow any other.
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, patch ShipmentPatch) (*Result, error) {
	verr := &ValidationError{}
	if err := fromValidator(s.validate.Struct(patch), verr); err != nil {
		return nil, err
	}
	for field, value := range map[string]*string{
		"sender_name":      patch.SenderName,
		"sender_address":   patch.SenderAddress,
		"receiver_name":    patch.ReceiverName,
		"receiver_address": patch.ReceiverAddress,
	} {
		if value != nil {
			requireText(verr, map[string]string{field: *value})
		}
	}
	if patch.Weight != nil && !patch.Weight.IsPositive() {
		verr.add("weight", "must be greater than 0")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := shipment.Status
	prevLocation := shipment.CurrentLocation

	if err := applyPatch(shipment, patch); err != nil {
		return nil, err
	}

	if err := s.store.SaveShipment(ctx, shipment); err != nil {
		s.logger.Error("Failed to save shipment",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	res := &Result{Shipment: shipment}
	statusChanged := prevStatus != shipment.Status
	if !statusChanged && prevLocation == shipment.CurrentLocation {
		return res, nil
	}

	event := models.TrackingEvent{
		ShipmentID:       shipment.ID,
		Status:           shipment.Status,
		Location:         shipment.CurrentLocation,
		PreviousLocation: prevLocation,
		Description:      models.DescribeChange(prevStatus, shipment.Status, prevLocation, shipment.CurrentLocation),
	}
	if patch.EventDescription != nil && strings.TrimSpace(*patch.EventDescription) != "" {
		event.Description = strings.TrimSpace(*patch.EventDescription)
	}

	if err := s.store.CreateEvent(ctx, &event); err != nil {
		s.logger.Warn("Shipment updated without tracking event",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, warnEventNotRecorded)
	} else {
		res.Event = &event
	}

	if err := s.notifier.ShipmentUpdated(ctx, shipment.ReceiverEmail, shipment, &event, statusChanged); err != nil {
		s.logger.Warn("Failed to send shipment update email",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.String("to", shipment.ReceiverEmail),
			zap.Error(err),
		)
		res.Warnings = append(res.Warnings, warnEmailFailed)
	}

	s.logger.Info("Shipment successfully updated",
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("status", string(shipment.Status)),
		zap.String("location", shipment.CurrentLocation),
	)
	return res, nil
}

func applyPatch(sh *models.Shipment, p ShipmentPatch) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&sh.SenderName, p.SenderName)
	setString(&sh.SenderEmail, p.SenderEmail)
	setString(&sh.SenderPhone, p.SenderPhone)
	setString(&sh.SenderAddress, p.SenderAddress)
	setString(&sh.ReceiverName, p.ReceiverName)
	setString(&sh.ReceiverEmail, p.ReceiverEmail)
	setString(&sh.ReceiverPhone, p.ReceiverPhone)
	setString(&sh.ReceiverAddress, p.ReceiverAddress)
	setString(&sh.CurrentLocation, p.CurrentLocation)

	if p.Description != nil {
		sh.Description = *p.Description
	}
	if p.SpecialInstructions != nil {
		sh.SpecialInstructions = *p.SpecialInstructions
	}
	if p.Quantity != nil {
		sh.Quantity = *p.Quantity
	}
	if p.PaymentMethod != nil {
		sh.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentStatus != nil {
		sh.PaymentStatus = *p.PaymentStatus
	}
	if p.Status != nil {
		sh.Status = *p.Status
	}

	verr := &ValidationError{}
	if p.SendingDate != nil {
		d, err := parseDate(*p.SendingDate)
		if err != nil {
			verr.add("sending_date", "must be a date (YYYY-MM-DD)")
		}
		sh.SendingDate = d
	}
	if p.ExpectedDeliveryDate != nil {
		d, err := parseDate(*p.ExpectedDeliveryDate)
		if err != nil {
			verr.add("expected_delivery_date", "must be a date (YYYY-MM-DD)")
		}
		sh.ExpectedDeliveryDate = d
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	repriced := false
	if p.Weight != nil {
		sh.Weight = *p.Weight
		repriced = true
	}
	if p.ServiceType != nil {
		sh.ServiceType = *p.ServiceType
		repriced = true
	}
	if p.Insurance != nil {
		sh.Insurance = *p.Insurance
		repriced = true
	}
	if repriced {
		fees.Apply(sh)
	}
	return nil
}

// Delete removes a shipment and every tracking event it owns.
func (s *ShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteShipment(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShipmentNotFound
		}
		s.logger.Error("Failed to delete shipment", zap.String("shipment_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	s.logger.Info("Shipment deleted", zap.String("shipment_id", id.String()))
	return nil
}

func (s *ShipmentService) Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.store.GetShipment(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}
	return shipment, nil
}

// Track looks a shipment up by its customer-facing number.
func (s *ShipmentService) Track(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	trackingNumber = NormalizeTrackingNumber(trackingNumber)
	if trackingNumber == "" {
		return nil, ErrShipmentNotFound
	}

	shipment, err := s.store.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}

	events, err := s.store.ListEvents(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking events: %w", err)
	}

	return &TrackingView{
		Shipment:   shipment,
		Events:     models.SortEventsDescending(events),
		Progress:   models.Progress(&shipment.Status, events),
		PhaseIndex: shipment.Status.PhaseIndex(),
	}, nil
}

// NormalizeTrackingNumber strips spaces and upper-cases what a customer typed.
func NormalizeTrackingNumber(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

func (s *ShipmentService) List(ctx context.Context, f repositories.ListFilter) ([]models.Shipment, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.store.ListShipments(ctx, f)
}

// Events returns a shipment's history oldest first.
func (s *ShipmentService) Events(ctx context.Context, id uuid.UUID) ([]models.TrackingEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, id)
}

// RecentActivity returns the newest tracking events across all shipments.
func (s *ShipmentService) RecentActivity(ctx context.Context, limit int) ([]models.TrackingEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.RecentEvents(ctx, limit)
}

func (s *ShipmentService) Stats(ctx context.Context) ([]repositories.StatusCount, error) {
	return s.store.CountByStatus(ctx)
}

// RegenerateTrackingNumber replaces a shipment's tracking number on explicit operator request.
func (s *ShipmentService) RegenerateTrackingNumber(ctx context.Context, id uuid.UUID, operator string) (*models.Shipment, error) {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	trackingNumber, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrackingNumber, err)
	}

	previous := shipment.TrackingNumber
	shipment.TrackingNumber = trackingNumber
	if err := s.store.SaveShipment(ctx, shipment); err != nil {
		return nil, fmt.Errorf("failed to save shipment: %w", err)
	}

	s.logger.Info("Tracking number regenerated",
		zap.String("previous", previous),
		zap.String("tracking_number", trackingNumber),
		zap.String("operator", operator),
	)
	return shipment, nil
}

// Export returns every shipment matching f, newest first, paging through the store.
func (s *ShipmentService) Export(ctx context.Context, f repositories.ListFilter) ([]models.Shipment, error) {
	const page = 200

	var out []models.Shipment
	f.Limit, f.Offset = page, 0
	for {
		batch, total, err := s.store.ListShipments(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to list shipments: %w", err)
		}
		out = append(out, batch...)
		if len(batch) < page || int64(len(out)) >= total {
			return out, nil
		}
		f.Offset += page
	}
}
