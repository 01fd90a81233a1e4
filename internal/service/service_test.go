package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-lot-reservation/internal/database"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/queue"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	db      *sql.DB
	inv     *Inventory
	booking *Booking
	reports *Reports
	users   *repository.UserRepo
	events  *recordingPublisher
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, dialect, err := database.Open("file:" + filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, dialect))

	lots := repository.NewLotRepo(db)
	spots := repository.NewSpotRepo(db)
	reservations := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)
	f := &fixture{
		db:     db,
		inv:    NewInventory(db, lots, spots),
		users:  users,
		events: &recordingPublisher{},
		clock:  time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	f.booking = NewBooking(db, lots, spots, reservations, f.events)
	f.booking.SetClock(func() time.Time { return f.clock })
	f.reports = NewReports(repository.NewReportRepo(db), reservations, users)
	return f
}

func (f *fixture) user(t *testing.T, email string) uint64 {
	t.Helper()
	id, err := f.users.Create(context.Background(), model.User{Email: email, FullName: email, Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	require.NoError(t, err)
	return id
}

func (f *fixture) lot(t *testing.T, name string, spots int, price float64) *model.ParkingLot {
	t.Helper()
	lot, err := f.inv.CreateLot(context.Background(), LotInput{LocationName: name, Address: "addr", PinCode: "560001", PricePerHour: price, MaxSpots: spots})
	require.NoError(t, err)
	return lot
}

func (f *fixture) spotNumbers(t *testing.T, lotID uint64) []string {
	t.Helper()
	list, err := f.inv.ListSpots(context.Background(), lotID)
	require.NoError(t, err)
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.SpotNumber
	}
	return out
}

// assertCounts checks the cached lot counters against the spot rows.
func (f *fixture) assertCounts(t *testing.T, lotID uint64, wantMax, wantAvail int) {
	t.Helper()
	lot, err := f.inv.GetLot(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, wantMax, lot.MaxSpots, "max_spots")
	assert.Equal(t, wantAvail, lot.AvailableSpots, "available_spots")

	list, err := f.inv.ListSpots(context.Background(), lotID)
	require.NoError(t, err)
	free := 0
	for _, s := range list {
		if s.Status == model.SpotAvailable {
			free++
		}
	}
	assert.Equal(t, len(list), lot.MaxSpots, "max_spots matches spot rows")
	assert.Equal(t, free, lot.AvailableSpots, "available_spots matches spot rows")
}

func assertKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "want %v, got %v", kind, err)
	if msg != "" {
		assert.Equal(t, msg, err.Error())
	}
}

func TestCreateLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lot := f.lot(t, "Central", 3, 20)
	assert.Equal(t, 3, lot.MaxSpots)
	assert.Equal(t, 3, lot.AvailableSpots)
	assert.Equal(t, []string{"P001", "P002", "P003"}, f.spotNumbers(t, lot.ID))

	_, err := f.inv.CreateLot(ctx, LotInput{LocationName: "Bad", MaxSpots: 0, PricePerHour: 10})
	assertKind(t, err, ErrValidation, "")
	_, err = f.inv.CreateLot(ctx, LotInput{LocationName: "Bad", MaxSpots: 2, PricePerHour: -1})
	assertKind(t, err, ErrValidation, "")
	_, err = f.inv.CreateLot(ctx, LotInput{LocationName: "  ", MaxSpots: 2, PricePerHour: 1})
	assertKind(t, err, ErrValidation, "")

	lots, err := f.inv.ListLots(ctx)
	require.NoError(t, err)
	assert.Len(t, lots, 1, "rejected lots are not persisted")
}

func TestResizeLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Grow", 2, 10)

	got, err := f.inv.ResizeLot(ctx, lot.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.MaxSpots)
	assert.Equal(t, []string{"P001", "P002", "P003", "P004"}, f.spotNumbers(t, lot.ID))

	got, err = f.inv.ResizeLot(ctx, lot.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MaxSpots)
	assert.Equal(t, 1, got.AvailableSpots)
	assert.Equal(t, []string{"P001"}, f.spotNumbers(t, lot.ID), "the oldest free spots survive a shrink")

	_, err = f.inv.ResizeLot(ctx, lot.ID, 0)
	assertKind(t, err, ErrValidation, "")
	_, err = f.inv.ResizeLot(ctx, 9999, 3)
	assertKind(t, err, ErrNotFound, "")
}

func TestResizeGrowSkipsTakenNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 2, 10)
	_, err := f.inv.AddSpot(ctx, lot.ID, "p004")
	require.NoError(t, err)

	_, err = f.inv.ResizeLot(ctx, lot.ID, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P001", "P002", "P004", "P005", "P006"}, f.spotNumbers(t, lot.ID))
	f.assertCounts(t, lot.ID, 5, 5)
}

func TestResizeShrinkKeepsOccupied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Busy", 3, 10)
	for i := 0; i < 2; i++ {
		uid := f.user(t, fmt.Sprintf("d%d@x.io", i))
		_, err := f.booking.BookSpot(ctx, uid, lot.ID, fmt.Sprintf("CAR%d", i))
		require.NoError(t, err)
	}

	got, err := f.inv.ResizeLot(ctx, lot.ID, 1)
	require.NoError(t, err)
	// P001 and P002 are occupied; the one free spot is kept because
	// newMax=1 allows one free spot to remain.
	assert.Equal(t, 3, got.MaxSpots)
	assert.Equal(t, 1, got.AvailableSpots)
	f.assertCounts(t, lot.ID, 3, 1)

	got, err = f.inv.ResizeLot(ctx, lot.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.MaxSpots, "occupied spots are never removed by a shrink")
}

func TestUpdateLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Old", 2, 10)

	got, err := f.inv.UpdateLot(ctx, lot.ID, LotInput{LocationName: " New ", Address: "elsewhere", PinCode: "1", PricePerHour: 15.5, MaxSpots: 3})
	require.NoError(t, err)
	assert.Equal(t, "New", got.LocationName)
	assert.Equal(t, 15.5, got.PricePerHour)
	assert.Equal(t, 3, got.MaxSpots)
	assert.Equal(t, 3, got.AvailableSpots)

	_, err = f.inv.UpdateLot(ctx, 9999, LotInput{LocationName: "x", MaxSpots: 1})
	assertKind(t, err, ErrNotFound, "")
}

func TestDeleteLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy := f.lot(t, "Busy", 2, 10)
	idle := f.lot(t, "Idle", 2, 10)
	uid := f.user(t, "d@x.io")
	_, err := f.booking.BookSpot(ctx, uid, busy.ID, "KA01")
	require.NoError(t, err)

	assertKind(t, f.inv.DeleteLot(ctx, busy.ID), ErrConflict, "lot has 1 occupied spots")
	f.assertCounts(t, busy.ID, 2, 1)

	require.NoError(t, f.inv.DeleteLot(ctx, idle.ID))
	_, err = f.inv.GetLot(ctx, idle.ID)
	assertKind(t, err, ErrNotFound, "")
	assertKind(t, f.inv.DeleteLot(ctx, idle.ID), ErrNotFound, "")

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM parking_spots WHERE lot_id = ?`, idle.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestBulkDeleteLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.lot(t, "A", 1, 10)
	b := f.lot(t, "B", 1, 10)
	c := f.lot(t, "C", 1, 10)
	uid := f.user(t, "d@x.io")
	_, err := f.booking.BookSpot(ctx, uid, b.ID, "KA01")
	require.NoError(t, err)

	res, err := f.inv.BulkDeleteLots(ctx, []uint64{a.ID, b.ID, c.ID, 9999, a.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, []string{`"B" (1 occupied spots)`}, res.Failures)

	lots, err := f.inv.ListLots(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, b.ID, lots[0].ID)

	_, err = f.inv.BulkDeleteLots(ctx, nil)
	assertKind(t, err, ErrValidation, "no parking lots selected")
}

func TestAddAndRenameSpot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 2, 10)

	sp, err := f.inv.AddSpot(ctx, lot.ID, "  vip1 ")
	require.NoError(t, err)
	assert.Equal(t, "VIP1", sp.SpotNumber)
	assert.Equal(t, model.SpotAvailable, sp.Status)
	f.assertCounts(t, lot.ID, 3, 3)

	_, err = f.inv.AddSpot(ctx, lot.ID, "p001")
	assertKind(t, err, ErrConflict, "spot P001 already exists in this lot")
	_, err = f.inv.AddSpot(ctx, lot.ID, "   ")
	assertKind(t, err, ErrValidation, "")
	_, err = f.inv.AddSpot(ctx, 9999, "X1")
	assertKind(t, err, ErrNotFound, "")

	renamed, err := f.inv.RenameSpot(ctx, sp.ID, "vip2")
	require.NoError(t, err)
	assert.Equal(t, "VIP2", renamed.SpotNumber)
	_, err = f.inv.RenameSpot(ctx, sp.ID, "VIP2")
	require.NoError(t, err, "renaming to the current number is a no-op")
	_, err = f.inv.RenameSpot(ctx, sp.ID, "p002")
	assertKind(t, err, ErrConflict, "spot P002 already exists in this lot")
	_, err = f.inv.RenameSpot(ctx, 9999, "X")
	assertKind(t, err, ErrNotFound, "")
	f.assertCounts(t, lot.ID, 3, 3)

	other := f.lot(t, "Other", 1, 10)
	otherSpots, err := f.inv.ListSpots(ctx, other.ID)
	require.NoError(t, err)
	_, err = f.inv.RenameSpot(ctx, otherSpots[0].ID, "VIP2")
	require.NoError(t, err, "spot numbers are unique per lot only")
}

func TestDeleteSpot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 2, 10)
	uid := f.user(t, "d@x.io")
	res, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
	require.NoError(t, err)

	assertKind(t, f.inv.DeleteSpot(ctx, res.SpotID), ErrConflict, "cannot delete occupied spot P001")

	spots, err := f.inv.ListSpots(ctx, lot.ID)
	require.NoError(t, err)
	require.NoError(t, f.inv.DeleteSpot(ctx, spots[1].ID))
	f.assertCounts(t, lot.ID, 1, 0)
	assertKind(t, f.inv.DeleteSpot(ctx, spots[1].ID), ErrNotFound, "")
}

func TestBulkSpotAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 4, 10)
	other := f.lot(t, "Other", 1, 10)
	uid := f.user(t, "d@x.io")
	res, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
	require.NoError(t, err)

	spots, err := f.inv.ListSpots(ctx, lot.ID)
	require.NoError(t, err)
	otherSpots, err := f.inv.ListSpots(ctx, other.ID)
	require.NoError(t, err)

	_, err = f.inv.BulkSpotAction(ctx, lot.ID, []uint64{spots[1].ID, res.SpotID}, "delete")
	assertKind(t, err, ErrConflict, "")
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"P001"}, se.Details)
	f.assertCounts(t, lot.ID, 4, 3)

	n, err := f.inv.BulkSpotAction(ctx, lot.ID, []uint64{spots[1].ID, spots[2].ID, otherSpots[0].ID}, "DELETE")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.assertCounts(t, lot.ID, 2, 1)
	f.assertCounts(t, other.ID, 1, 1)

	_, err = f.inv.BulkSpotAction(ctx, lot.ID, []uint64{spots[3].ID}, "occupy")
	assertKind(t, err, ErrValidation, "")
	_, err = f.inv.BulkSpotAction(ctx, lot.ID, nil, "delete")
	assertKind(t, err, ErrValidation, "")
}

func TestBookSpot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Central", 2, 20)
	alice := f.user(t, "alice@x.io")
	bob := f.user(t, "bob@x.io")

	res, err := f.booking.BookSpot(ctx, alice, lot.ID, " ka01ab1234 ")
	require.NoError(t, err)
	assert.Equal(t, "KA01AB1234", res.VehicleNumber)
	assert.Equal(t, "P001", res.SpotNumber)
	assert.Equal(t, model.ReservationActive, res.Status)
	assert.True(t, res.StartTime.Equal(f.clock))
	assert.Nil(t, res.EndTime)
	f.assertCounts(t, lot.ID, 2, 1)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, queue.EventBooked, ev.Type)
	assert.Equal(t, res.ID, ev.ReservationID)
	assert.Equal(t, "P001", ev.SpotNumber)

	_, err = f.booking.BookSpot(ctx, alice, lot.ID, "OTHER")
	assertKind(t, err, ErrConflict, "you already have an active reservation")
	_, err = f.booking.BookSpot(ctx, bob, lot.ID, "ka01ab1234")
	assertKind(t, err, ErrConflict, "")
	_, err = f.booking.BookSpot(ctx, bob, lot.ID, "  ")
	assertKind(t, err, ErrValidation, "")
	_, err = f.booking.BookSpot(ctx, bob, 9999, "KA02")
	assertKind(t, err, ErrNotFound, "")

	res2, err := f.booking.BookSpot(ctx, bob, lot.ID, "KA02")
	require.NoError(t, err)
	assert.Equal(t, "P002", res2.SpotNumber)
	f.assertCounts(t, lot.ID, 2, 0)

	carol := f.user(t, "carol@x.io")
	_, err = f.booking.BookSpot(ctx, carol, lot.ID, "KA03")
	assertKind(t, err, ErrConflict, "no available spots in Central")

	bookable, err := f.inv.ListBookableLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookable)
	assert.Len(t, f.events.events, 2, "failed bookings publish nothing")
}

func TestBookSpotCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 1, 10)
	alice := f.user(t, "alice@x.io")
	_, err := f.booking.BookSpot(ctx, alice, lot.ID, "KA01")
	require.NoError(t, err)

	// an active user is rejected before the lot is even looked up
	_, err = f.booking.BookSpot(ctx, alice, 9999, "KA09")
	assertKind(t, err, ErrConflict, "you already have an active reservation")
}

func TestBookSpotConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Race", 3, 10)

	const drivers = 6
	ids := make([]uint64, drivers)
	for i := range ids {
		ids[i] = f.user(t, fmt.Sprintf("r%d@x.io", i))
	}
	var wg sync.WaitGroup
	errs := make([]error, drivers)
	spots := make([]uint64, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.booking.BookSpot(ctx, ids[i], lot.ID, fmt.Sprintf("RACE%d", i))
			errs[i] = err
			if err == nil {
				spots[i] = res.SpotID
			}
		}(i)
	}
	wg.Wait()

	won := map[uint64]bool{}
	conflicts := 0
	for i, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrConflict)
			conflicts++
			continue
		}
		assert.False(t, won[spots[i]], "spot %d assigned twice", spots[i])
		won[spots[i]] = true
	}
	assert.Len(t, won, 3)
	assert.Equal(t, 3, conflicts)
	f.assertCounts(t, lot.ID, 3, 0)
}

func TestReleaseSpot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Central", 1, 20)
	alice := f.user(t, "alice@x.io")
	bob := f.user(t, "bob@x.io")

	res, err := f.booking.BookSpot(ctx, alice, lot.ID, "KA01")
	require.NoError(t, err)

	_, err = f.booking.ReleaseSpot(ctx, bob, res.ID)
	assertKind(t, err, ErrNotFound, "reservation not found")
	_, err = f.booking.ReleaseSpot(ctx, alice, 9999)
	assertKind(t, err, ErrNotFound, "reservation not found")

	f.clock = f.clock.Add(30 * time.Minute)
	done, err := f.booking.ReleaseSpot(ctx, alice, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, done.Status)
	assert.Equal(t, 20.0, done.TotalCost, "under an hour bills one hour")
	require.NotNil(t, done.EndTime)
	assert.True(t, done.EndTime.Equal(f.clock))
	f.assertCounts(t, lot.ID, 1, 1)

	_, err = f.booking.ReleaseSpot(ctx, alice, res.ID)
	assertKind(t, err, ErrNotFound, "reservation not found")

	require.Len(t, f.events.events, 2)
	assert.Equal(t, queue.EventReleased, f.events.events[1].Type)
	assert.Equal(t, 20.0, f.events.events[1].TotalCost)

	// the user may book again once released
	_, err = f.booking.BookSpot(ctx, alice, lot.ID, "KA01")
	require.NoError(t, err)
}

func TestReleaseBillsFractionalHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 1, 10)
	uid := f.user(t, "d@x.io")
	res, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
	require.NoError(t, err)

	f.clock = f.clock.Add(150 * time.Minute)
	done, err := f.booking.ReleaseSpot(ctx, uid, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, done.TotalCost)
}

func TestReleaseSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.events.err = errors.New("broker down")
	lot := f.lot(t, "Lot", 1, 10)
	uid := f.user(t, "d@x.io")

	res, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
	require.NoError(t, err)
	_, err = f.booking.ReleaseSpot(ctx, uid, res.ID)
	require.NoError(t, err)
	f.assertCounts(t, lot.ID, 1, 1)
}

func TestCost(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		price   float64
		want    float64
	}{
		{0, 20, 20},
		{59 * time.Minute, 20, 20},
		{time.Hour, 20, 20},
		{90 * time.Minute, 20, 30},
		{100 * time.Minute, 10, 16.67},
		{3 * time.Hour, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Cost(start, start.Add(c.elapsed), c.price), "%s at %.2f", c.elapsed, c.price)
	}
	assert.Equal(t, 1.0, BillableHours(start, start.Add(-time.Minute)))
}

func TestDashboardAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 1, 10)
	uid := f.user(t, "d@x.io")

	for i := 0; i < 6; i++ {
		res, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
		require.NoError(t, err)
		f.clock = f.clock.Add(time.Hour)
		_, err = f.booking.ReleaseSpot(ctx, uid, res.ID)
		require.NoError(t, err)
	}
	active, err := f.booking.BookSpot(ctx, uid, lot.ID, "KA01")
	require.NoError(t, err)

	dash, err := f.booking.Dashboard(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, dash.Active)
	assert.Equal(t, active.ID, dash.Active.ID)
	assert.Len(t, dash.Recent, 5)
	assert.Equal(t, active.ID, dash.Recent[0].ID, "newest first")

	hist, err := f.booking.History(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, hist, 7)

	other := f.user(t, "o@x.io")
	dash, err = f.booking.Dashboard(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, dash.Active)
	assert.Empty(t, dash.Recent)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.lot(t, "Lot", 3, 10)
	f.lot(t, "Empty", 2, 5)
	alice := f.user(t, "alice@x.io")
	bob := f.user(t, "bob@x.io")
	_, err := f.users.EnsureAdmin(ctx, "admin@parking.com", "admin123", bcrypt.MinCost)
	require.NoError(t, err)

	res, err := f.booking.BookSpot(ctx, alice, lot.ID, "KA01")
	require.NoError(t, err)
	f.clock = f.clock.Add(2 * time.Hour)
	_, err = f.booking.ReleaseSpot(ctx, alice, res.ID)
	require.NoError(t, err)
	_, err = f.booking.BookSpot(ctx, bob, lot.ID, "KA02")
	require.NoError(t, err)

	ov, err := f.reports.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.TotalLots)
	assert.Equal(t, 5, ov.TotalSpots)
	assert.Equal(t, 1, ov.OccupiedSpots)
	assert.Equal(t, 4, ov.AvailableSpots)
	assert.Equal(t, 2, ov.TotalUsers, "admins are not counted")
	assert.Equal(t, 1, ov.ActiveReservations)
	assert.Equal(t, 20.0, ov.TotalRevenue)

	all, err := f.reports.History(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "all", all.Filter)
	assert.Len(t, all.Reservations, 2)
	assert.Equal(t, 2, all.Summary.Total)

	active, err := f.reports.History(ctx, "Active")
	require.NoError(t, err)
	require.Len(t, active.Reservations, 1)
	assert.Equal(t, "bob@x.io", active.Reservations[0].UserEmail)

	completed, err := f.reports.History(ctx, "COMPLETED")
	require.NoError(t, err)
	require.Len(t, completed.Reservations, 1)
	assert.Equal(t, 20.0, completed.Reservations[0].TotalCost)

	_, err = f.reports.History(ctx, "pending")
	assertKind(t, err, ErrValidation, "")

	users, err := f.reports.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
