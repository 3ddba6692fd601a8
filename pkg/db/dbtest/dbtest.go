// Package dbtest opens throwaway SQLite databases carrying the application
// schema for repository and service tests.
package dbtest

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Schema mirrors the goose migrations using SQLite types. Money and weight
// columns are TEXT so decimals round-trip exactly.
var Schema = []string{
	`CREATE TABLE settings (
		id TEXT PRIMARY KEY,
		ship_jod_per_kg_jo_to_dz TEXT NOT NULL,
		ship_dzd_per_kg_dz_to_jo TEXT NOT NULL,
		commission_percent TEXT NOT NULL,
		promo_active BOOLEAN NOT NULL DEFAULT 0,
		promo_name TEXT,
		promo_discount_percent TEXT,
		facebook_url TEXT,
		whatsapp_url TEXT,
		usdt_dzd_price TEXT,
		usdt_markup_percent TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE pricing_rules (
		id TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		min_weight TEXT NOT NULL,
		max_weight TEXT NOT NULL,
		price_per_kg TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_sequences (
		seq_date TEXT NOT NULL,
		direction TEXT NOT NULL,
		last_value INTEGER NOT NULL,
		updated_at DATETIME,
		PRIMARY KEY (seq_date, direction)
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING_REVIEW',
		contents TEXT NOT NULL,
		weight_declared_kg TEXT NOT NULL,
		weight_final_kg TEXT,
		currency TEXT NOT NULL,
		price_estimated TEXT NOT NULL,
		price_base TEXT NOT NULL,
		price_commission TEXT NOT NULL,
		price_discount TEXT NOT NULL,
		price_final TEXT,
		declared_value_usd TEXT,
		insurance_requested BOOLEAN NOT NULL DEFAULT 0,
		insurance_value_usd TEXT,
		assisted_purchase BOOLEAN NOT NULL DEFAULT 0,
		purchase_details TEXT,
		sender_address TEXT NOT NULL,
		receiver_address TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_status_logs (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id),
		from_status TEXT,
		to_status TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		note TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id),
		method TEXT NOT NULL DEFAULT 'MANUAL',
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		receipt_url TEXT,
		reference TEXT,
		reviewed_by TEXT,
		reviewed_at DATETIME,
		review_note TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE payment_receipts (
		id TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL REFERENCES payments(id),
		url TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// Open returns a file-backed SQLite connection with the schema applied. The
// pool holds a single connection so concurrent callers serialize like
// competing transactions would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", filepath.Join(t.TempDir(), "thouesa.db"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
