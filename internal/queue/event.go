// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationQueue is the durable queue carrying reservation audit events.
const ReservationQueue = "parking.reservations"

// Event types carried in ReservationEvent.Type.
const (
	EventBooked   = "reservation.booked"
	EventReleased = "reservation.released"
)

// ReservationEvent is published after a booking or release commits.
// It contains enough information for downstream consumers to log or
// bill without querying the primary database.
type ReservationEvent struct {
	Type          string  `json:"type"`
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	LotID         uint64  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	SpotID        uint64  `json:"spot_id"`
	SpotNumber    string  `json:"spot_number"`
	VehicleNumber string  `json:"vehicle_number"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time,omitempty"`
	TotalCost     float64 `json:"total_cost"`
	OccurredAt    string  `json:"occurred_at"`
}
