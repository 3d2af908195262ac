package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parcel-shipping-service/shipments/models"
)

func TestClientShipmentUpdated(t *testing.T) {
	var got ShipmentUpdateEmailRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, zap.NewNop())
	shipment := &models.Shipment{TrackingNumber: "SL202412310001", Status: models.StatusInTransit}
	event := &models.TrackingEvent{Status: models.StatusInTransit, Location: "Accra", PreviousLocation: "Lagos"}

	require.NoError(t, c.ShipmentUpdated(context.Background(), "kwame@example.com", shipment, event, true))
	assert.Equal(t, "/api/send-shipment-update-email", path)
	assert.Equal(t, "kwame@example.com", got.To)
	assert.Equal(t, "SL202412310001", got.Shipment.TrackingNumber)
	assert.Equal(t, "Lagos", got.TrackingEvent.PreviousLocation)
	assert.True(t, got.StatusChanged)
}

func TestClientSurfacesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to send email","code":"auth-failure"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	err := c.ShipmentCreated(context.Background(), "kwame@example.com", &models.Shipment{TrackingNumber: "SL1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "auth-failure")
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 200*time.Millisecond, zap.NewNop())
	err := c.Contact(context.Background(), ContactRequest{Name: "a", Email: "a@example.com", Subject: "s", Message: "m"})
	assert.ErrorContains(t, err, "mailer request failed")
}

func TestNoopNeverFails(t *testing.T) {
	n := NewNoop(zap.NewNop())
	s := &models.Shipment{TrackingNumber: "SL1"}
	assert.NoError(t, n.ShipmentCreated(context.Background(), "x@example.com", s))
	assert.NoError(t, n.ShipmentUpdated(context.Background(), "x@example.com", s, nil, false))
}
