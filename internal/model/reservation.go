package model

import "time"

// Reservation statuses stored in reservations.status.
const (
	ReservationActive    = "ACTIVE"
	ReservationCompleted = "COMPLETED"
)

// Reservation records a user's claim on a spot.  It is created ACTIVE
// together with flipping the spot to OCCUPIED, and moves to COMPLETED
// when released, at which point EndTime and TotalCost are set.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who booked the spot.
//  SpotID        – spot being held.
//  VehicleNumber – normalized (trimmed, upper-cased) plate.
//  StartTime     – when the booking was made.
//  EndTime       – when it was released (nil while ACTIVE).
//  TotalCost     – billed amount, rounded to 2 decimals.
//  Status        – ACTIVE or COMPLETED.
//  CreatedAt     – creation timestamp.
type Reservation struct {
	ID            uint64     `json:"id"`             // reservations.id
	UserID        uint64     `json:"user_id"`        // reservations.user_id
	SpotID        uint64     `json:"spot_id"`        // reservations.spot_id
	VehicleNumber string     `json:"vehicle_number"` // reservations.vehicle_number
	StartTime     time.Time  `json:"start_time"`     // reservations.start_time
	EndTime       *time.Time `json:"end_time"`       // reservations.end_time (nullable)
	TotalCost     float64    `json:"total_cost"`     // reservations.total_cost
	Status        string     `json:"status"`         // reservations.status
	CreatedAt     time.Time  `json:"created_at"`     // reservations.created_at
}

// ReservationDetail is a reservation joined with its spot, lot and
// user.  It backs history listings for both users and admins.
type ReservationDetail struct {
	Reservation
	SpotNumber   string  `json:"spot_number"`
	LotID        uint64  `json:"lot_id"`
	LotName      string  `json:"lot_name"`
	LotAddress   string  `json:"lot_address"`
	PricePerHour float64 `json:"price_per_hour"`
	UserEmail    string  `json:"user_email,omitempty"`
	UserName     string  `json:"user_name,omitempty"`
}
