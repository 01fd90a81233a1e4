package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrRefreshInvalid is returned for unknown, revoked and expired refresh
// tokens alike.
var ErrRefreshInvalid = errors.New("refresh token invalid")

// TokenRepo stores SHA-256 hashes of refresh tokens, never the raw value.
type TokenRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// StoreRefresh records a freshly minted refresh token for userID.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, exp.UTC(), r.now())
	return err
}

// ValidateRefresh returns the owner of a live token or ErrRefreshInvalid.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID  uint64
		expires time.Time
		revoked sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`,
		tokenHash).Scan(&userID, &expires, &revoked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, ErrRefreshInvalid
	case err != nil:
		return 0, err
	case revoked.Valid, !r.now().Before(expires):
		return 0, ErrRefreshInvalid
	}
	return userID, nil
}

// RevokeByHash revokes a single session.  Revoking twice is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, `token_hash = ?`, tokenHash)
}

// RevokeAllForUser ends every session of userID.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.revoke(ctx, `user_id = ?`, userID)
}

// revoke binds the timestamp from Go so the statement runs unchanged on
// MySQL and SQLite.
func (r *TokenRepo) revoke(ctx context.Context, where string, arg interface{}) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = ? WHERE `+where+` AND revoked_at IS NULL`,
		r.now(), arg)
	return err
}
