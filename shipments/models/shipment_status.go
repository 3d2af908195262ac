package models

import "time"

// ShipmentStatus is a lifecycle label held by a shipment and its tracking events.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusProcessing     ShipmentStatus = "processing"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusOnHold         ShipmentStatus = "on_hold"
)

// Statuses is the whole vocabulary in display order.
var Statuses = []ShipmentStatus{
	StatusPending,
	StatusProcessing,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
	StatusOnHold,
}

// ProgressStatuses is the linear progress sequence. Cancelled and on hold sit outside it.
var ProgressStatuses = []ShipmentStatus{
	StatusPending,
	StatusProcessing,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
}

var statusLabels = map[ShipmentStatus]string{
	StatusPending:        "Pending",
	StatusProcessing:     "Processing",
	StatusInTransit:      "In Transit",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
	StatusOnHold:         "On Hold",
}

// Valid reports whether s belongs to the status vocabulary.
func (s ShipmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label, or the raw value for unknown statuses.
func (s ShipmentStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsFinal reports whether a shipment in this status needs no further attention.
func (s ShipmentStatus) IsFinal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PhaseIndex returns the position of s in ProgressStatuses, or -1.
func (s ShipmentStatus) PhaseIndex() int {
	for i, st := range ProgressStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// PhaseIndexOf is PhaseIndex for an optional status.
func PhaseIndexOf(status *ShipmentStatus) int {
	if status == nil {
		return -1
	}
	return status.PhaseIndex()
}

type PhaseState string

const (
	PhaseCompleted PhaseState = "completed"
	PhaseCurrent   PhaseState = "current"
	PhaseFuture    PhaseState = "future"
)

// Phase is one step of the progress bar.
type Phase struct {
	Status    ShipmentStatus `json:"status"`
	Label     string         `json:"label"`
	State     PhaseState     `json:"state"`
	ReachedAt *time.Time     `json:"reached_at,omitempty"`
}

// Progress lays the ordered vocabulary out against the current status. Completed and current
// phases are stamped with the first event (by created_at) carrying that status.
func Progress(status *ShipmentStatus, events []TrackingEvent) []Phase {
	idx := PhaseIndexOf(status)
	ordered := SortEventsAscending(events)

	phases := make([]Phase, 0, len(ProgressStatuses))
	for i, st := range ProgressStatuses {
		phase := Phase{Status: st, Label: st.Label(), State: PhaseFuture}
		switch {
		case idx != -1 && i < idx:
			phase.State = PhaseCompleted
		case i == idx:
			phase.State = PhaseCurrent
		}

		if phase.State != PhaseFuture {
			for _, ev := range ordered {
				if ev.Status == st {
					at := ev.CreatedAt
					phase.ReachedAt = &at
					break
				}
			}
		}
		phases = append(phases, phase)
	}
	return phases
}
