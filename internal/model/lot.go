package model

import "time"

// ParkingLot is a physical parking facility as stored in the
// `parking_lots` table.  MaxSpots and AvailableSpots are cached
// counts of the lot's spot rows; they are recomputed from the spots
// table after every mutation and never adjusted incrementally.
//
// Fields:
//  ID             – primary key identifier.
//  LocationName   – display name of the lot.
//  Address        – street address.
//  PinCode        – postal code.
//  PricePerHour   – hourly rate applied on release.
//  MaxSpots       – number of spot rows in the lot.
//  AvailableSpots – number of spot rows with status AVAILABLE.
//  CreatedAt      – creation timestamp.
type ParkingLot struct {
	ID             uint64    `json:"id"`              // parking_lots.id
	LocationName   string    `json:"location_name"`   // parking_lots.location_name
	Address        string    `json:"address"`         // parking_lots.address
	PinCode        string    `json:"pin_code"`        // parking_lots.pin_code
	PricePerHour   float64   `json:"price_per_hour"`  // parking_lots.price_per_hour
	MaxSpots       int       `json:"max_spots"`       // parking_lots.max_spots
	AvailableSpots int       `json:"available_spots"` // parking_lots.available_spots
	CreatedAt      time.Time `json:"created_at"`      // parking_lots.created_at
}

// OccupiedSpots derives the number of spots currently in use.
func (l ParkingLot) OccupiedSpots() int {
	if n := l.MaxSpots - l.AvailableSpots; n > 0 {
		return n
	}
	return 0
}
