package model

// Spot statuses stored in parking_spots.status.
const (
	SpotAvailable = "AVAILABLE"
	SpotOccupied  = "OCCUPIED"
)

// ParkingSpot is a single reservable unit inside a lot.  SpotNumber is
// unique within its lot and always stored trimmed and upper-cased.
type ParkingSpot struct {
	ID         uint64 `json:"id"`          // parking_spots.id
	LotID      uint64 `json:"lot_id"`      // parking_spots.lot_id
	SpotNumber string `json:"spot_number"` // parking_spots.spot_number
	Status     string `json:"status"`      // parking_spots.status
}

// IsOccupied reports whether the spot currently holds a vehicle.
func (s ParkingSpot) IsOccupied() bool { return s.Status == SpotOccupied }
