package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-lot-reservation/internal/database"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, dialect, err := database.Open("file:" + filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, dialect))
	return db
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func seedLot(t *testing.T, db *sql.DB, name string, numbers ...string) *model.ParkingLot {
	t.Helper()
	ctx := context.Background()
	lots, spots := NewLotRepo(db), NewSpotRepo(db)
	lot := &model.ParkingLot{LocationName: name, Address: "1 Main St", PinCode: "10001", PricePerHour: 20}
	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, lots.CreateTx(ctx, tx, lot))
		require.NoError(t, spots.CreateBulkTx(ctx, tx, lot.ID, numbers))
		var err error
		lot, err = lots.RecountTx(ctx, tx, lot.ID)
		require.NoError(t, err)
	})
	return lot
}

func TestLotRepoRecountAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	lots, spots := NewLotRepo(db), NewSpotRepo(db)

	full := seedLot(t, db, "Full", "P001")
	open := seedLot(t, db, "Open", "P001", "P002", "P003")
	assert.Equal(t, 3, open.MaxSpots)
	assert.Equal(t, 3, open.AvailableSpots)

	inTx(t, db, func(tx *sql.Tx) {
		ids, err := spots.ListAvailableIDsTx(ctx, tx, full.ID)
		require.NoError(t, err)
		require.Len(t, ids, 1)
		ok, err := spots.ClaimTx(ctx, tx, ids[0])
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = spots.ClaimTx(ctx, tx, ids[0])
		require.NoError(t, err)
		assert.False(t, ok, "second claim must lose")
		full, err = lots.RecountTx(ctx, tx, full.ID)
		require.NoError(t, err)
	})
	assert.Equal(t, 1, full.MaxSpots)
	assert.Equal(t, 0, full.AvailableSpots)
	assert.Equal(t, 1, full.OccupiedSpots())

	all, err := lots.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bookable, err := lots.ListBookable(ctx)
	require.NoError(t, err)
	require.Len(t, bookable, 1)
	assert.Equal(t, "Open", bookable[0].LocationName)

	_, err = lots.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestSpotRepoNumbers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spots := NewSpotRepo(db)
	lot := seedLot(t, db, "Lot", "P001", "P002")
	other := seedLot(t, db, "Other", "P001")

	inTx(t, db, func(tx *sql.Tx) {
		_, err := spots.CreateTx(ctx, tx, lot.ID, "P002")
		assert.ErrorIs(t, err, ErrConflict)
	})
	inTx(t, db, func(tx *sql.Tx) {
		sp, err := spots.CreateTx(ctx, tx, lot.ID, "VIP1")
		require.NoError(t, err)
		assert.Equal(t, model.SpotAvailable, sp.Status)

		taken, err := spots.NumberTakenTx(ctx, tx, lot.ID, "P001", 0)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = spots.NumberTakenTx(ctx, tx, lot.ID, "VIP1", sp.ID)
		require.NoError(t, err)
		assert.False(t, taken, "a spot never collides with itself")

		nums, err := spots.NumbersByLotTx(ctx, tx, lot.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"P001": true, "P002": true, "VIP1": true}, nums)

		require.NoError(t, spots.RenameTx(ctx, tx, sp.ID, "VIP2"))
	})

	list, err := spots.ListByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"P001", "P002", "VIP2"}, []string{list[0].SpotNumber, list[1].SpotNumber, list[2].SpotNumber})

	otherSpots, err := spots.ListByLot(ctx, other.ID)
	require.NoError(t, err)
	inTx(t, db, func(tx *sql.Tx) {
		got, err := spots.ListByIDsInLotTx(ctx, tx, lot.ID, []uint64{list[0].ID, otherSpots[0].ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, list[0].ID, got[0].ID)
	})

	_, err = spots.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrSpotNotFound)
}

func TestLotDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	lots, spots, reservations := NewLotRepo(db), NewSpotRepo(db), NewReservationRepo(db)
	users := NewUserRepo(db)

	uid, err := users.Create(ctx, model.User{Email: "d@x.io", Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	require.NoError(t, err)
	lot := seedLot(t, db, "Doomed", "P001", "P002")
	list, err := spots.ListByLot(ctx, lot.ID)
	require.NoError(t, err)

	start := time.Now().UTC().Add(-2 * time.Hour)
	inTx(t, db, func(tx *sql.Tx) {
		res := &model.Reservation{UserID: uid, SpotID: list[0].ID, VehicleNumber: "KA01", StartTime: start, Status: model.ReservationActive}
		require.NoError(t, reservations.CreateTx(ctx, tx, res))
		require.NoError(t, reservations.CompleteTx(ctx, tx, res.ID, start.Add(time.Hour), 20))
	})

	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, lots.DeleteTx(ctx, tx, lot.ID))
		assert.ErrorIs(t, lots.DeleteTx(ctx, tx, lot.ID), ErrLotNotFound)
	})

	for _, table := range []string{"parking_lots", "parking_spots", "reservations"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestReservationRepoLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	spots, reservations, users := NewSpotRepo(db), NewReservationRepo(db), NewUserRepo(db)

	uid, err := users.Create(ctx, model.User{Email: "Driver@X.io", FullName: "Dee", Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	require.NoError(t, err)
	lot := seedLot(t, db, "Central", "P001")
	list, err := spots.ListByLot(ctx, lot.ID)
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	res := &model.Reservation{UserID: uid, SpotID: list[0].ID, VehicleNumber: "KA01AB1234", StartTime: start, Status: model.ReservationActive}
	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, reservations.CreateTx(ctx, tx, res))
		got, err := reservations.ActiveByUserTx(ctx, tx, uid)
		require.NoError(t, err)
		assert.Equal(t, res.ID, got.ID)
		_, err = reservations.ActiveByVehicleTx(ctx, tx, "KA01AB1234")
		require.NoError(t, err)
		_, err = reservations.ActiveForUserTx(ctx, tx, res.ID, uid+1)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	active, err := reservations.ActiveDetailByUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "P001", active.SpotNumber)
	assert.Equal(t, "Central", active.LotName)
	assert.Equal(t, "driver@x.io", active.UserEmail)
	assert.Nil(t, active.EndTime)

	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, reservations.CompleteTx(ctx, tx, res.ID, start.Add(90*time.Minute), 30))
		assert.ErrorIs(t, reservations.CompleteTx(ctx, tx, res.ID, start, 1), ErrReservationNotFound)
	})

	hist, err := reservations.ListByUser(ctx, uid, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, model.ReservationCompleted, hist[0].Status)
	require.NotNil(t, hist[0].EndTime)
	assert.True(t, hist[0].EndTime.Equal(start.Add(90*time.Minute)))
	assert.InDelta(t, 30.0, hist[0].TotalCost, 0.001)

	completed, err := reservations.ListAll(ctx, model.ReservationCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
	none, err := reservations.ListAll(ctx, model.ReservationActive)
	require.NoError(t, err)
	assert.Empty(t, none)

	sum, err := NewReportRepo(db).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReservationSummary{Total: 1, Active: 0, Completed: 1, Revenue: 30}, sum)
}

func TestUserRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	id, err := users.Create(ctx, model.User{Email: " Ann@Example.com ", FullName: "Ann", Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(ctx, model.User{Email: "ann@example.com", Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)

	u, err := users.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = users.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	created, err := users.EnsureAdmin(ctx, "admin@parking.com", "admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = users.EnsureAdmin(ctx, "admin@parking.com", "admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, created)

	drivers, err := users.ListByRole(ctx, model.RoleUser)
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "ann@example.com", drivers[0].Email)

	ov, err := NewReportRepo(db).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.TotalUsers)
}

func TestTokenRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users, tokens := NewUserRepo(db), NewTokenRepo(db)
	uid, err := users.Create(ctx, model.User{Email: "t@x.io", Role: model.RoleUser}, "secret1", bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, tokens.StoreRefresh(ctx, uid, "live", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, tokens.StoreRefresh(ctx, uid, "stale", time.Now().UTC().Add(-time.Hour)))

	got, err := tokens.ValidateRefresh(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, uid, got)
	_, err = tokens.ValidateRefresh(ctx, "stale")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	_, err = tokens.ValidateRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	require.NoError(t, tokens.RevokeByHash(ctx, "live"))
	require.NoError(t, tokens.RevokeByHash(ctx, "live"))
	_, err = tokens.ValidateRefresh(ctx, "live")
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	require.NoError(t, tokens.StoreRefresh(ctx, uid, "a", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, tokens.RevokeAllForUser(ctx, uid))
	_, err = tokens.ValidateRefresh(ctx, "a")
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}
