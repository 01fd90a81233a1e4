package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a lookup by id or email yields no rows.
var ErrUserNotFound = errors.New("user not found")

const userColumns = "id,email,password_hash,full_name,phone,address,pin_code,role,created_at"

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.Address, &u.PinCode, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// Create hashes password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email,password_hash,full_name,phone,address,pin_code,role,created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.Email, hash, u.FullName, u.Phone, u.Address, u.PinCode, u.Role, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ListByRole returns users of one role, newest first.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY created_at DESC, id DESC", role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EnsureAdmin creates the admin account when no user owns email yet.
// It reports whether a row was inserted.
func (r *UserRepo) EnsureAdmin(ctx context.Context, email, password string, cost int) (bool, error) {
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}
	_, err := r.Create(ctx, model.User{Email: email, FullName: "Administrator", Role: model.RoleAdmin}, password, cost)
	if errors.Is(err, ErrEmailExists) {
		return false, nil
	}
	return err == nil, err
}
