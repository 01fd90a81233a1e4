package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/queue"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// EventPublisher delivers reservation audit events.  *queue.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Booking runs the reservation flow: claiming a spot for a user and
// releasing it with billing.
type Booking struct {
	db           *sql.DB
	lots         *repository.LotRepo
	spots        *repository.SpotRepo
	reservations *repository.ReservationRepo
	events       EventPublisher
	now          func() time.Time
}

// NewBooking wires a Booking.  events may be nil to disable publishing.
func NewBooking(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo, reservations *repository.ReservationRepo, events EventPublisher) *Booking {
	if db == nil || lots == nil || spots == nil || reservations == nil {
		panic("nil dependency passed to NewBooking")
	}
	return &Booking{
		db:           db,
		lots:         lots,
		spots:        spots,
		reservations: reservations,
		events:       events,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.  Tests use it to control billing.
func (b *Booking) SetClock(now func() time.Time) { b.now = now }

// NormalizeVehicle trims and upper-cases a vehicle number.
func NormalizeVehicle(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }

// BillableHours returns the elapsed hours between start and end with a
// floor of one hour.  Durations above an hour are billed fractionally.
func BillableHours(start, end time.Time) float64 {
	h := end.Sub(start).Hours()
	if h < 1 {
		return 1
	}
	return h
}

// Cost prices a stay at pricePerHour, rounded to two decimals.
func Cost(start, end time.Time, pricePerHour float64) float64 {
	return math.Round(BillableHours(start, end)*pricePerHour*100) / 100
}

// BookSpot reserves the first free spot of a lot for the user.  A user
// and a vehicle may each hold only one ACTIVE reservation.  The spot is
// claimed with a conditional update so two concurrent bookers can never
// take the same spot; the loser moves on to the next candidate.
func (b *Booking) BookSpot(ctx context.Context, userID, lotID uint64, vehicle string) (*model.ReservationDetail, error) {
	vehicle = NormalizeVehicle(vehicle)
	if vehicle == "" {
		return nil, validationError("vehicle number is required")
	}
	var detail *model.ReservationDetail
	err := withTx(ctx, b.db, func(tx *sql.Tx) error {
		if _, err := b.reservations.ActiveByUserTx(ctx, tx, userID); err == nil {
			return conflictError("you already have an active reservation")
		} else if !errors.Is(err, repository.ErrReservationNotFound) {
			return err
		}
		lot, err := b.lots.GetByIDTx(ctx, tx, lotID)
		if err != nil {
			return lotErr(err)
		}
		if _, err := b.reservations.ActiveByVehicleTx(ctx, tx, vehicle); err == nil {
			return conflictError("vehicle %s already has an active reservation", vehicle)
		} else if !errors.Is(err, repository.ErrReservationNotFound) {
			return err
		}

		candidates, err := b.spots.ListAvailableIDsTx(ctx, tx, lotID)
		if err != nil {
			return fmt.Errorf("list free spots: %w", err)
		}
		var spotID uint64
		for _, id := range candidates {
			ok, err := b.spots.ClaimTx(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("claim spot: %w", err)
			}
			if ok {
				spotID = id
				break
			}
		}
		if spotID == 0 {
			return conflictError("no available spots in %s", lot.LocationName)
		}
		spot, err := b.spots.GetByIDTx(ctx, tx, spotID)
		if err != nil {
			return err
		}

		now := b.now()
		res := model.Reservation{
			UserID:        userID,
			SpotID:        spotID,
			VehicleNumber: vehicle,
			StartTime:     now,
			Status:        model.ReservationActive,
			CreatedAt:     now,
		}
		if err := b.reservations.CreateTx(ctx, tx, &res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		lot, err = b.lots.RecountTx(ctx, tx, lotID)
		if err != nil {
			return fmt.Errorf("recount lot: %w", err)
		}
		detail = &model.ReservationDetail{
			Reservation:  res,
			SpotNumber:   spot.SpotNumber,
			LotID:        lot.ID,
			LotName:      lot.LocationName,
			LotAddress:   lot.Address,
			PricePerHour: lot.PricePerHour,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.publish(queue.EventBooked, detail)
	return detail, nil
}

// ReleaseSpot completes the user's ACTIVE reservation, bills it and
// frees the spot.  A reservation that does not exist, belongs to
// someone else or is already completed is reported as not found.
func (b *Booking) ReleaseSpot(ctx context.Context, userID, reservationID uint64) (*model.ReservationDetail, error) {
	var detail *model.ReservationDetail
	err := withTx(ctx, b.db, func(tx *sql.Tx) error {
		res, err := b.reservations.ActiveForUserTx(ctx, tx, reservationID, userID)
		if errors.Is(err, repository.ErrReservationNotFound) {
			return notFoundError("reservation not found")
		}
		if err != nil {
			return err
		}
		spot, err := b.spots.GetByIDTx(ctx, tx, res.SpotID)
		if err != nil {
			return spotErr(err)
		}
		lot, err := b.lots.GetByIDTx(ctx, tx, spot.LotID)
		if err != nil {
			return lotErr(err)
		}

		end := b.now()
		cost := Cost(res.StartTime, end, lot.PricePerHour)
		if err := b.reservations.CompleteTx(ctx, tx, res.ID, end, cost); err != nil {
			if errors.Is(err, repository.ErrReservationNotFound) {
				return notFoundError("reservation not found")
			}
			return err
		}
		if err := b.spots.SetStatusTx(ctx, tx, spot.ID, model.SpotAvailable); err != nil {
			return fmt.Errorf("free spot: %w", err)
		}
		if _, err := b.lots.RecountTx(ctx, tx, lot.ID); err != nil {
			return fmt.Errorf("recount lot: %w", err)
		}

		res.EndTime = &end
		res.TotalCost = cost
		res.Status = model.ReservationCompleted
		detail = &model.ReservationDetail{
			Reservation:  *res,
			SpotNumber:   spot.SpotNumber,
			LotID:        lot.ID,
			LotName:      lot.LocationName,
			LotAddress:   lot.Address,
			PricePerHour: lot.PricePerHour,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.publish(queue.EventReleased, detail)
	return detail, nil
}

// publish sends the audit event after commit.  Failures are logged and
// never surface to the caller.
func (b *Booking) publish(kind string, d *model.ReservationDetail) {
	if b.events == nil || d == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:          kind,
		ReservationID: d.ID,
		UserID:        d.UserID,
		LotID:         d.LotID,
		LotName:       d.LotName,
		SpotID:        d.SpotID,
		SpotNumber:    d.SpotNumber,
		VehicleNumber: d.VehicleNumber,
		StartTime:     d.StartTime.UTC().Format(time.RFC3339),
		TotalCost:     d.TotalCost,
		OccurredAt:    b.now().UTC().Format(time.RFC3339),
	}
	if d.EndTime != nil {
		ev.EndTime = d.EndTime.UTC().Format(time.RFC3339)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.events.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s for reservation %d failed: %v", kind, d.ID, err)
	}
}

// UserDashboard is the summary shown to a driver.
type UserDashboard struct {
	Active *model.ReservationDetail  `json:"active"`
	Recent []model.ReservationDetail `json:"recent"`
}

// recentLimit caps the recent list on the user dashboard.
const recentLimit = 5

// Dashboard returns the user's ACTIVE reservation, if any, and the most
// recent reservations.
func (b *Booking) Dashboard(ctx context.Context, userID uint64) (*UserDashboard, error) {
	dash := &UserDashboard{}
	active, err := b.reservations.ActiveDetailByUser(ctx, userID)
	switch {
	case err == nil:
		dash.Active = active
	case !errors.Is(err, repository.ErrReservationNotFound):
		return nil, err
	}
	dash.Recent, err = b.reservations.ListByUser(ctx, userID, recentLimit)
	if err != nil {
		return nil, err
	}
	return dash, nil
}

// History returns every reservation of the user, newest first.
func (b *Booking) History(ctx context.Context, userID uint64) ([]model.ReservationDetail, error) {
	return b.reservations.ListByUser(ctx, userID, 0)
}
