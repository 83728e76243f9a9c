// Package db provides gateway audit data clearing.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const clearLogPrefix = "db:clear"

// ClearAudit truncates the audit tables (trust_alerts, audit_messages) in
// dependency order. Schema is preserved; only data is removed. RESTART
// IDENTITY resets sequences.
func ClearAudit(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Clearing audit tables", clearLogPrefix))

	// Truncate children first; CASCADE handles any other referencing tables.
	_, err := pool.Exec(ctx, `TRUNCATE TABLE
		trust_alerts,
		audit_messages
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("%s - truncate failed: %w", clearLogPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Audit tables cleared", clearLogPrefix))
	return nil
}
