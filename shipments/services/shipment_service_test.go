package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parcel-shipping-service/config"
	"parcel-shipping-service/database"
	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/repositories"
)

type sequenceGenerator struct {
	mu  sync.Mutex
	n   int
	err error
}

func (g *sequenceGenerator) Generate(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.n++
	return fmt.Sprintf("SL20241231%04d", g.n), nil
}

type sentEmail struct {
	kind          string
	to            string
	trackingNo    string
	event         *models.TrackingEvent
	statusChanged bool
}

type recordingNotifier struct {
	sent []sentEmail
	err  error
}

func (n *recordingNotifier) ShipmentCreated(_ context.Context, to string, s *models.Shipment) error {
	n.sent = append(n.sent, sentEmail{kind: "created", to: to, trackingNo: s.TrackingNumber})
	return n.err
}

func (n *recordingNotifier) ShipmentUpdated(_ context.Context, to string, s *models.Shipment, ev *models.TrackingEvent, changed bool) error {
	n.sent = append(n.sent, sentEmail{kind: "updated", to: to, trackingNo: s.TrackingNumber, event: ev, statusChanged: changed})
	return n.err
}

type failingEventStore struct {
	*repositories.Repository
}

func (failingEventStore) CreateEvent(context.Context, *models.TrackingEvent) error {
	return errors.New("insert tracking_events: permission denied")
}

func newRepo(t *testing.T) *repositories.Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := repositories.NewRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func validInput() CreateShipmentInput {
	return CreateShipmentInput{
		SenderName:      "Ada Obi",
		SenderEmail:     "ada@example.com",
		SenderAddress:   "1 Marina, Lagos",
		ReceiverName:    "Kwame Mensah",
		ReceiverEmail:   "kwame@example.com",
		ReceiverAddress: "5 Oxford St, Accra",
		Description:     "Documents",
		Weight:          decimal.NewFromInt(10),
		ServiceType:     models.ServiceExpress,
		Insurance:       true,
		PaymentMethod:   models.PaymentBankTransfer,
		Status:          models.StatusProcessing,
		CurrentLocation: "Lagos",
		SendingDate:     "2024-12-31T10:00:00Z",
	}
}

func TestCreateShipment(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())
	ctx := context.Background()

	res, err := svc.Create(ctx, "operator-7", validInput())
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	sh := res.Shipment
	assert.Equal(t, "SL202412310001", sh.TrackingNumber)
	assert.Equal(t, "435.00", sh.ShippingFee.StringFixed(2))
	assert.Equal(t, "50.00", sh.InsuranceAmount.StringFixed(2))
	assert.Equal(t, "485.00", sh.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, sh.Quantity)
	assert.Equal(t, models.PaymentPending, sh.PaymentStatus)
	assert.Equal(t, "operator-7", sh.CreatedBy)
	require.NotNil(t, sh.SendingDate)
	assert.Equal(t, "2024-12-31", sh.SendingDate.Format("2006-01-02"))

	events, err := repo.ListEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusProcessing, events[0].Status)
	assert.Equal(t, "Lagos", events[0].Location)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "created", notifier.sent[0].kind)
	assert.Equal(t, "kwame@example.com", notifier.sent[0].to)
}

func TestCreateShipmentValidation(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())

	in := validInput()
	in.ReceiverEmail = "not-an-email"
	in.SenderName = ""
	in.Weight = decimal.Zero
	in.ServiceType = "teleport"
	in.ExpectedDeliveryDate = "tomorrow"

	_, err := svc.Create(context.Background(), "op", in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid email address", verr.Fields["receiver_email"])
	assert.Equal(t, "is required", verr.Fields["sender_name"])
	assert.Equal(t, "must be greater than 0", verr.Fields["weight"])
	assert.Contains(t, verr.Fields["service_type"], "must be one of")
	assert.Contains(t, verr.Fields, "expected_delivery_date")
}

func TestCreateShipmentRejectsBlankParties(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())

	in := validInput()
	in.SenderName = " "
	in.SenderAddress = "\n"
	in.ReceiverName = "   "
	in.ReceiverAddress = "\t"

	res, err := svc.Create(context.Background(), "op", in)
	assert.Nil(t, res)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"sender_name", "sender_address", "receiver_name", "receiver_address"} {
		assert.Equal(t, "is required", verr.Fields[field], field)
	}

	_, total, err := repo.ListShipments(context.Background(), repositories.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, notifier.sent)
}

func TestUpdateRejectsBlankParties(t *testing.T) {
	repo := newRepo(t)
	svc := NewShipmentService(repo, &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	blank := "  \t"
	_, err = svc.Update(ctx, created.Shipment.ID, ShipmentPatch{ReceiverName: &blank, SenderAddress: &blank})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["receiver_name"])
	assert.Equal(t, "is required", verr.Fields["sender_address"])

	stored, err := repo.GetShipment(ctx, created.Shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kwame Mensah", stored.ReceiverName)
	assert.Equal(t, "1 Marina, Lagos", stored.SenderAddress)
}

func TestCreateShipmentFailsClosedWithoutTrackingNumber(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{err: errors.New("rpc unavailable")}, notifier, zap.NewNop())

	res, err := svc.Create(context.Background(), "op", validInput())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrTrackingNumber)

	_, total, err := repo.ListShipments(context.Background(), repositories.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, notifier.sent)
}

func TestCreateShipmentKeepsShipmentWhenEventInsertFails(t *testing.T) {
	repo := newRepo(t)
	svc := NewShipmentService(failingEventStore{repo}, &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())

	res, err := svc.Create(context.Background(), "op", validInput())
	require.NoError(t, err)
	assert.Nil(t, res.Event)
	assert.Equal(t, []string{warnEventNotRecorded}, res.Warnings)

	_, err = repo.GetShipmentByTrackingNumber(context.Background(), res.Shipment.TrackingNumber)
	assert.NoError(t, err)
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{err: errors.New("connection refused")}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())
	ctx := context.Background()

	res, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)
	assert.Equal(t, []string{warnEmailFailed}, res.Warnings)

	status := models.StatusInTransit
	upd, err := svc.Update(ctx, res.Shipment.ID, ShipmentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{warnEmailFailed}, upd.Warnings)
	assert.Equal(t, models.StatusInTransit, upd.Shipment.Status)
}

func TestUpdateStatusAndLocation(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	status := models.StatusInTransit
	location := "Accra"
	res, err := svc.Update(ctx, created.Shipment.ID, ShipmentPatch{Status: &status, CurrentLocation: &location})
	require.NoError(t, err)
	require.NotNil(t, res.Event)

	events, err := repo.ListEvents(ctx, created.Shipment.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	ev := events[1]
	assert.Equal(t, models.StatusInTransit, ev.Status)
	assert.Equal(t, "Lagos", ev.PreviousLocation)
	assert.Equal(t, "Accra", ev.Location)
	assert.Contains(t, ev.Description, "Lagos")
	assert.Contains(t, ev.Description, "Accra")

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "updated", notifier.sent[1].kind)
	assert.True(t, notifier.sent[1].statusChanged)
}

func TestUpdateLocationOnlySendsGenericUpdate(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	location := "Cotonou"
	note := "Cleared customs at Seme border"
	res, err := svc.Update(ctx, created.Shipment.ID, ShipmentPatch{CurrentLocation: &location, EventDescription: &note})
	require.NoError(t, err)
	require.NotNil(t, res.Event)
	assert.Equal(t, models.StatusProcessing, res.Event.Status)
	assert.Equal(t, note, res.Event.Description)
	assert.False(t, notifier.sent[1].statusChanged)
}

func TestUpdateWithoutStatusOrLocationChangeAppendsNothing(t *testing.T) {
	repo := newRepo(t)
	notifier := &recordingNotifier{}
	svc := NewShipmentService(repo, &sequenceGenerator{}, notifier, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	weight := decimal.NewFromInt(2)
	overnight := models.ServiceOvernight
	noInsurance := false
	res, err := svc.Update(ctx, created.Shipment.ID, ShipmentPatch{Weight: &weight, ServiceType: &overnight, Insurance: &noInsurance})
	require.NoError(t, err)
	assert.Nil(t, res.Event)
	assert.Equal(t, "251", res.Shipment.ShippingFee.String())
	assert.True(t, res.Shipment.InsuranceAmount.IsZero())
	assert.Equal(t, "251", res.Shipment.TotalAmount.String())

	events, err := repo.ListEvents(ctx, created.Shipment.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Len(t, notifier.sent, 1)
}

func TestUpdateAllowsAnyTransition(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	for _, st := range []models.ShipmentStatus{models.StatusDelivered, models.StatusPending, models.StatusOnHold, models.StatusCancelled, models.StatusInTransit} {
		st := st
		res, err := svc.Update(ctx, created.Shipment.ID, ShipmentPatch{Status: &st})
		require.NoError(t, err)
		assert.Equal(t, st, res.Shipment.Status)
	}

	bogus := models.ShipmentStatus("lost")
	_, err = svc.Update(ctx, created.Shipment.ID, ShipmentPatch{Status: &bogus})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateUnknownShipment(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	loc := "Accra"
	_, err := svc.Update(context.Background(), uuid.New(), ShipmentPatch{CurrentLocation: &loc})
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestDeleteShipment(t *testing.T) {
	repo := newRepo(t)
	svc := NewShipmentService(repo, &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)
	loc := "Accra"
	_, err = svc.Update(ctx, created.Shipment.ID, ShipmentPatch{CurrentLocation: &loc})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.Shipment.ID))

	_, err = svc.Track(ctx, created.Shipment.TrackingNumber)
	assert.ErrorIs(t, err, ErrShipmentNotFound)

	events, err := repo.ListEvents(ctx, created.Shipment.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.ErrorIs(t, svc.Delete(ctx, created.Shipment.ID), ErrShipmentNotFound)
}

func TestTrack(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)
	status := models.StatusInTransit
	_, err = svc.Update(ctx, created.Shipment.ID, ShipmentPatch{Status: &status})
	require.NoError(t, err)

	view, err := svc.Track(ctx, " sl2024 1231 0001 ")
	require.NoError(t, err)
	assert.Equal(t, 2, view.PhaseIndex)
	require.Len(t, view.Events, 2)
	assert.Equal(t, models.StatusInTransit, view.Events[0].Status, "newest first")
	assert.Equal(t, models.PhaseCompleted, view.Progress[1].State)
	assert.NotNil(t, view.Progress[1].ReachedAt)
	assert.Equal(t, models.PhaseCompleted, view.Progress[0].State)
	assert.Nil(t, view.Progress[0].ReachedAt, "no pending event was ever recorded")
	assert.Equal(t, models.PhaseCurrent, view.Progress[2].State)
}

func TestTrackUnknownNumber(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())

	view, err := svc.Track(context.Background(), "SL209901010000")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, ErrShipmentNotFound)

	_, err = svc.Track(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestRegenerateTrackingNumber(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, "op", validInput())
	require.NoError(t, err)

	sh, err := svc.RegenerateTrackingNumber(ctx, created.Shipment.ID, "op")
	require.NoError(t, err)
	assert.Equal(t, "SL202412310002", sh.TrackingNumber)

	_, err = svc.Track(ctx, "SL202412310001")
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestListAndStats(t *testing.T) {
	svc := NewShipmentService(newRepo(t), &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "op", validInput())
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx, repositories.ListFilter{Limit: 1000})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 3, stats[0].Count)

	recent, err := svc.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"weight": "must be greater than 0", "receiver_name": "is required"}}
	assert.Equal(t, "validation failed: receiver_name is required; weight must be greater than 0", err.Error())
}

func TestExportPagesThroughEveryShipment(t *testing.T) {
	repo := newRepo(t)
	svc := NewShipmentService(repo, &sequenceGenerator{}, &recordingNotifier{}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 205; i++ {
		_, err := svc.Create(ctx, "operator-1", validInput())
		require.NoError(t, err)
	}

	all, err := svc.Export(ctx, repositories.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 205)

	none, err := svc.Export(ctx, repositories.ListFilter{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.Empty(t, none)
}
