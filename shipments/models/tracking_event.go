package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackingEvent is one point-in-time status/location observation. Rows are append-only.
type TrackingEvent struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ShipmentID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"shipment_id"`
	Status           ShipmentStatus `gorm:"size:20;not null" json:"status"`
	Location         string         `gorm:"size:200" json:"location,omitempty"`
	PreviousLocation string         `gorm:"size:200" json:"previous_location,omitempty"`
	Description      string         `gorm:"type:text" json:"description"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
}

func (TrackingEvent) TableName() string {
	return "tracking_events"
}

func (e *TrackingEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SortEventsAscending returns a copy ordered oldest first.
func SortEventsAscending(events []TrackingEvent) []TrackingEvent {
	out := append([]TrackingEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// SortEventsDescending returns a copy ordered newest first, as shown in activity feeds.
func SortEventsDescending(events []TrackingEvent) []TrackingEvent {
	out := append([]TrackingEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// InitialEvent builds the event recorded alongside a freshly created shipment.
func InitialEvent(s *Shipment) TrackingEvent {
	desc := "Shipment created"
	if s.CurrentLocation != "" {
		desc = fmt.Sprintf("Shipment created at %s", s.CurrentLocation)
	}
	return TrackingEvent{
		ShipmentID:  s.ID,
		Status:      s.Status,
		Location:    s.CurrentLocation,
		Description: desc + " with status " + s.Status.Label(),
	}
}

// DescribeChange summarises a status and/or location edit in one sentence.
func DescribeChange(prevStatus, status ShipmentStatus, prevLocation, location string) string {
	var parts []string
	if prevStatus != status {
		parts = append(parts, fmt.Sprintf("Status changed from %s to %s", prevStatus.Label(), status.Label()))
	}
	if prevLocation != location {
		switch {
		case prevLocation == "":
			parts = append(parts, fmt.Sprintf("location set to %s", location))
		case location == "":
			parts = append(parts, fmt.Sprintf("location cleared (was %s)", prevLocation))
		default:
			parts = append(parts, fmt.Sprintf("moved from %s to %s", prevLocation, location))
		}
	}
	if len(parts) == 0 {
		return "Shipment updated"
	}
	out := strings.Join(parts, "; ")
	return strings.ToUpper(out[:1]) + out[1:]
}
