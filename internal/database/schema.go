package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on startup.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        email          VARCHAR(255) NOT NULL PRIMARY KEY,
        full_name      VARCHAR(255) NOT NULL DEFAULT '',
        phone          VARCHAR(16)  NOT NULL DEFAULT '',
        address        TEXT         NOT NULL,
        password_hash  VARCHAR(255) NOT NULL,
        is_admin       BOOLEAN      NOT NULL DEFAULT FALSE,
        loyalty_points INT UNSIGNED NOT NULL DEFAULT 0,
        created_at     DATETIME(6)  NOT NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
        id                VARCHAR(64)  NOT NULL PRIMARY KEY,
        user_email        VARCHAR(255) NOT NULL,
        kit_id            VARCHAR(64)  NOT NULL,
        kit_json          JSON         NOT NULL,
        add_ons_json      JSON         NULL,
        start_date        DATE         NOT NULL,
        nights            INT          NOT NULL,
        total_price_paise BIGINT       NOT NULL,
        delivery_json     JSON         NOT NULL,
        whatsapp_updates  BOOLEAN      NOT NULL DEFAULT FALSE,
        status            ENUM('PENDING','CONFIRMED','DISPATCHED','COMPLETED','CANCELLED') NOT NULL,
        created_at        DATETIME(6)  NOT NULL,
        KEY idx_bookings_user_created (user_email, created_at),
        KEY idx_bookings_created (created_at)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the service needs if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
