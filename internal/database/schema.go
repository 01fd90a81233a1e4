package database

import (
	"context"
	"database/sql"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		address VARCHAR(512) NOT NULL DEFAULT '',
		pin_code VARCHAR(16) NOT NULL DEFAULT '',
		role VARCHAR(16) NOT NULL DEFAULT 'USER',
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		revoked_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parking_lots (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		location_name VARCHAR(255) NOT NULL,
		address VARCHAR(512) NOT NULL DEFAULT '',
		pin_code VARCHAR(16) NOT NULL DEFAULT '',
		price_per_hour DECIMAL(10,2) NOT NULL,
		max_spots INT NOT NULL DEFAULT 0,
		available_spots INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parking_spots (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		lot_id BIGINT UNSIGNED NOT NULL,
		spot_number VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'AVAILABLE',
		UNIQUE KEY uq_spot_lot_number (lot_id, spot_number),
		KEY idx_spot_lot_status (lot_id, status),
		CONSTRAINT fk_spot_lot FOREIGN KEY (lot_id) REFERENCES parking_lots(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		spot_id BIGINT UNSIGNED NOT NULL,
		vehicle_number VARCHAR(32) NOT NULL,
		start_time DATETIME(6) NOT NULL,
		end_time DATETIME(6) NULL,
		total_cost DECIMAL(10,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME(6) NOT NULL,
		KEY idx_res_user_status (user_id, status),
		KEY idx_res_vehicle_status (vehicle_number, status),
		KEY idx_res_spot_status (spot_id, status),
		CONSTRAINT fk_res_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_res_spot FOREIGN KEY (spot_id) REFERENCES parking_spots(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// SQLite keeps DATETIME as the declared type so the driver hands back
// time.Time values on scan.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		pin_code TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'USER',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS parking_lots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location_name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		pin_code TEXT NOT NULL DEFAULT '',
		price_per_hour REAL NOT NULL,
		max_spots INTEGER NOT NULL DEFAULT 0,
		available_spots INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parking_spots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lot_id INTEGER NOT NULL REFERENCES parking_lots(id) ON DELETE CASCADE,
		spot_number TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		UNIQUE (lot_id, spot_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_spot_lot_status ON parking_spots (lot_id, status)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		spot_id INTEGER NOT NULL REFERENCES parking_spots(id) ON DELETE CASCADE,
		vehicle_number TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NULL,
		total_cost REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_res_user_status ON reservations (user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_res_vehicle_status ON reservations (vehicle_number, status)`,
	`CREATE INDEX IF NOT EXISTS idx_res_spot_status ON reservations (spot_id, status)`,
}

// Migrate creates the tables for the given dialect if they are missing.
// Statements are idempotent so it runs on every start.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	stmts := mysqlSchema
	if dialect == DialectSQLite {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
