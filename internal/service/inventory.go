package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// Inventory owns lots and spots and keeps each lot's cached counts in
// line with its spot rows.  Counts are always recomputed from the spot
// table after a mutation, inside the same transaction.
type Inventory struct {
	db    *sql.DB
	lots  *repository.LotRepo
	spots *repository.SpotRepo
}

// NewInventory wires an Inventory to its repositories.
func NewInventory(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo) *Inventory {
	if db == nil || lots == nil || spots == nil {
		panic("nil dependency passed to NewInventory")
	}
	return &Inventory{db: db, lots: lots, spots: spots}
}

// LotInput carries the editable attributes of a lot.
type LotInput struct {
	LocationName string  `json:"location_name"`
	Address      string  `json:"address"`
	PinCode      string  `json:"pin_code"`
	PricePerHour float64 `json:"price_per_hour"`
	MaxSpots     int     `json:"max_spots"`
}

func (in LotInput) validate() error {
	if strings.TrimSpace(in.LocationName) == "" {
		return validationError("location name is required")
	}
	if in.MaxSpots <= 0 {
		return validationError("max spots must be positive")
	}
	if in.PricePerHour < 0 {
		return validationError("price per hour cannot be negative")
	}
	return nil
}

// BulkDeleteResult reports the outcome of BulkDeleteLots.  Failures
// name each lot that was kept because it still had occupied spots.
type BulkDeleteResult struct {
	Deleted  int      `json:"deleted"`
	Failures []string `json:"failures"`
}

// spotNumber formats the sequential number used for generated spots.
func spotNumber(i int) string { return fmt.Sprintf("P%03d", i) }

// NormalizeSpotNumber trims and upper-cases a spot number.
func NormalizeSpotNumber(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func lotErr(err error) error {
	if errors.Is(err, repository.ErrLotNotFound) {
		return notFoundError("parking lot not found")
	}
	return err
}

func spotErr(err error) error {
	if errors.Is(err, repository.ErrSpotNotFound) {
		return notFoundError("parking spot not found")
	}
	return err
}

// CreateLot inserts a lot and exactly in.MaxSpots AVAILABLE spots
// numbered P001 upward.
func (s *Inventory) CreateLot(ctx context.Context, in LotInput) (*model.ParkingLot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lot := &model.ParkingLot{
		LocationName: strings.TrimSpace(in.LocationName),
		Address:      strings.TrimSpace(in.Address),
		PinCode:      strings.TrimSpace(in.PinCode),
		PricePerHour: in.PricePerHour,
	}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.lots.CreateTx(ctx, tx, lot); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		numbers := make([]string, in.MaxSpots)
		for i := range numbers {
			numbers[i] = spotNumber(i + 1)
		}
		if err := s.spots.CreateBulkTx(ctx, tx, lot.ID, numbers); err != nil {
			return fmt.Errorf("create spots: %w", err)
		}
		updated, err := s.lots.RecountTx(ctx, tx, lot.ID)
		if err != nil {
			return fmt.Errorf("recount lot: %w", err)
		}
		lot = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// UpdateLot changes a lot's details and price, then resizes it to
// in.MaxSpots.
func (s *Inventory) UpdateLot(ctx context.Context, lotID uint64, in LotInput) (*model.ParkingLot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var lot *model.ParkingLot
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := s.lots.GetByIDTx(ctx, tx, lotID)
		if err != nil {
			return lotErr(err)
		}
		current.LocationName = strings.TrimSpace(in.LocationName)
		current.Address = strings.TrimSpace(in.Address)
		current.PinCode = strings.TrimSpace(in.PinCode)
		current.PricePerHour = in.PricePerHour
		if err := s.lots.UpdateDetailsTx(ctx, tx, current); err != nil {
			return lotErr(err)
		}
		if err := s.resizeTx(ctx, tx, lotID, in.MaxSpots); err != nil {
			return err
		}
		lot, err = s.lots.RecountTx(ctx, tx, lotID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// ResizeLot grows or shrinks a lot to newMaxSpots.  Growing appends
// AVAILABLE spots continuing from the current count; shrinking removes
// AVAILABLE spots only, keeping the first newMaxSpots of them in
// insertion order.  Occupied spots are never removed, so a shrink can
// leave more than newMaxSpots spots behind.
func (s *Inventory) ResizeLot(ctx context.Context, lotID uint64, newMaxSpots int) (*model.ParkingLot, error) {
	if newMaxSpots <= 0 {
		return nil, validationError("max spots must be positive")
	}
	var lot *model.ParkingLot
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
			return lotErr(err)
		}
		if err := s.resizeTx(ctx, tx, lotID, newMaxSpots); err != nil {
			return err
		}
		var err error
		lot, err = s.lots.RecountTx(ctx, tx, lotID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *Inventory) resizeTx(ctx context.Context, tx *sql.Tx, lotID uint64, newMax int) error {
	counts, err := s.lots.CountSpotsTx(ctx, tx, lotID)
	if err != nil {
		return fmt.Errorf("count spots: %w", err)
	}
	switch {
	case newMax > counts.Total:
		taken, err := s.spots.NumbersByLotTx(ctx, tx, lotID)
		if err != nil {
			return fmt.Errorf("load spot numbers: %w", err)
		}
		want := newMax - counts.Total
		numbers := make([]string, 0, want)
		// renamed or hand-added spots may already use a generated number
		for next := counts.Total + 1; len(numbers) < want; next++ {
			if n := spotNumber(next); !taken[n] {
				numbers = append(numbers, n)
			}
		}
		if err := s.spots.CreateBulkTx(ctx, tx, lotID, numbers); err != nil {
			return fmt.Errorf("create spots: %w", err)
		}
	case newMax < counts.Total:
		free, err := s.spots.ListAvailableIDsTx(ctx, tx, lotID)
		if err != nil {
			return fmt.Errorf("list free spots: %w", err)
		}
		if len(free) > newMax {
			if _, err := s.spots.DeleteTx(ctx, tx, free[newMax:]); err != nil {
				return fmt.Errorf("delete spots: %w", err)
			}
		}
	}
	return nil
}

// DeleteLot removes a lot with all its spots and their reservations.
// It refuses while any spot is occupied.
func (s *Inventory) DeleteLot(ctx context.Context, lotID uint64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
			return lotErr(err)
		}
		counts, err := s.lots.CountSpotsTx(ctx, tx, lotID)
		if err != nil {
			return fmt.Errorf("count spots: %w", err)
		}
		if counts.Occupied > 0 {
			return conflictError("lot has %d occupied spots", counts.Occupied)
		}
		return lotErr(s.lots.DeleteTx(ctx, tx, lotID))
	})
}

// BulkDeleteLots deletes every listed lot that has no occupied spots.
// Lots that still hold vehicles are kept and reported in Failures;
// unknown IDs are skipped.  Partial success is not an error.
func (s *Inventory) BulkDeleteLots(ctx context.Context, lotIDs []uint64) (*BulkDeleteResult, error) {
	ids := uniqueIDs(lotIDs)
	if len(ids) == 0 {
		return nil, validationError("no parking lots selected")
	}
	result := &BulkDeleteResult{Failures: []string{}}
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			lot, err := s.lots.GetByIDTx(ctx, tx, id)
			if errors.Is(err, repository.ErrLotNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			counts, err := s.lots.CountSpotsTx(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("count spots: %w", err)
			}
			if counts.Occupied > 0 {
				result.Failures = append(result.Failures,
					fmt.Sprintf("\"%s\" (%d occupied spots)", lot.LocationName, counts.Occupied))
				continue
			}
			if err := s.lots.DeleteTx(ctx, tx, id); err != nil {
				return fmt.Errorf("delete lot %d: %w", id, err)
			}
			result.Deleted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddSpot creates an AVAILABLE spot with a normalized number.
func (s *Inventory) AddSpot(ctx context.Context, lotID uint64, number string) (*model.ParkingSpot, error) {
	number = NormalizeSpotNumber(number)
	if number == "" {
		return nil, validationError("spot number is required")
	}
	var spot *model.ParkingSpot
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
			return lotErr(err)
		}
		taken, err := s.spots.NumberTakenTx(ctx, tx, lotID, number, 0)
		if err != nil {
			return err
		}
		if taken {
			return conflictError("spot %s already exists in this lot", number)
		}
		spot, err = s.spots.CreateTx(ctx, tx, lotID, number)
		if errors.Is(err, repository.ErrConflict) {
			return conflictError("spot %s already exists in this lot", number)
		}
		if err != nil {
			return err
		}
		_, err = s.lots.RecountTx(ctx, tx, lotID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return spot, nil
}

// RenameSpot changes a spot's number.  Counts are unaffected.
func (s *Inventory) RenameSpot(ctx context.Context, spotID uint64, number string) (*model.ParkingSpot, error) {
	number = NormalizeSpotNumber(number)
	if number == "" {
		return nil, validationError("spot number is required")
	}
	var spot *model.ParkingSpot
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		spot, err = s.spots.GetByIDTx(ctx, tx, spotID)
		if err != nil {
			return spotErr(err)
		}
		if spot.SpotNumber == number {
			return nil
		}
		taken, err := s.spots.NumberTakenTx(ctx, tx, spot.LotID, number, spot.ID)
		if err != nil {
			return err
		}
		if taken {
			return conflictError("spot %s already exists in this lot", number)
		}
		if err := s.spots.RenameTx(ctx, tx, spot.ID, number); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return conflictError("spot %s already exists in this lot", number)
			}
			return spotErr(err)
		}
		spot.SpotNumber = number
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spot, nil
}

// DeleteSpot removes an AVAILABLE spot and its reservation history.
func (s *Inventory) DeleteSpot(ctx context.Context, spotID uint64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		spot, err := s.spots.GetByIDTx(ctx, tx, spotID)
		if err != nil {
			return spotErr(err)
		}
		if spot.IsOccupied() {
			return conflictError("cannot delete occupied spot %s", spot.SpotNumber)
		}
		if _, err := s.spots.DeleteTx(ctx, tx, []uint64{spot.ID}); err != nil {
			return err
		}
		_, err = s.lots.RecountTx(ctx, tx, spot.LotID)
		return err
	})
}

// SpotActionDelete is the only action BulkSpotAction understands.
const SpotActionDelete = "delete"

// BulkSpotAction applies action to the selected spots of a lot.  IDs
// that do not belong to the lot are ignored.  If any selected spot is
// occupied the whole batch is rejected and nothing changes; the
// returned error's Details lists the blocking spot numbers.
func (s *Inventory) BulkSpotAction(ctx context.Context, lotID uint64, spotIDs []uint64, action string) (int, error) {
	if strings.ToLower(strings.TrimSpace(action)) != SpotActionDelete {
		return 0, validationError("unsupported action %q", action)
	}
	ids := uniqueIDs(spotIDs)
	if len(ids) == 0 {
		return 0, validationError("no spots selected")
	}
	deleted := 0
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
			return lotErr(err)
		}
		spots, err := s.spots.ListByIDsInLotTx(ctx, tx, lotID, ids)
		if err != nil {
			return err
		}
		var occupied []string
		targets := make([]uint64, 0, len(spots))
		for _, sp := range spots {
			if sp.IsOccupied() {
				occupied = append(occupied, sp.SpotNumber)
			}
			targets = append(targets, sp.ID)
		}
		if len(occupied) > 0 {
			return &Error{
				Kind:    ErrConflict,
				Message: "cannot delete occupied spots: " + strings.Join(occupied, ", "),
				Details: occupied,
			}
		}
		deleted, err = s.spots.DeleteTx(ctx, tx, targets)
		if err != nil {
			return err
		}
		_, err = s.lots.RecountTx(ctx, tx, lotID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// GetLot returns a single lot.
func (s *Inventory) GetLot(ctx context.Context, lotID uint64) (*model.ParkingLot, error) {
	lot, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, lotErr(err)
	}
	return lot, nil
}

// ListLots returns all lots.
func (s *Inventory) ListLots(ctx context.Context) ([]model.ParkingLot, error) {
	return s.lots.List(ctx)
}

// ListBookableLots returns lots that still have a free spot.
func (s *Inventory) ListBookableLots(ctx context.Context) ([]model.ParkingLot, error) {
	return s.lots.ListBookable(ctx)
}

// ListSpots returns a lot's spots ordered by number.
func (s *Inventory) ListSpots(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	if _, err := s.lots.GetByID(ctx, lotID); err != nil {
		return nil, lotErr(err)
	}
	return s.spots.ListByLot(ctx, lotID)
}

// GetSpot returns a single spot.
func (s *Inventory) GetSpot(ctx context.Context, spotID uint64) (*model.ParkingSpot, error) {
	spot, err := s.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, spotErr(err)
	}
	return spot, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
