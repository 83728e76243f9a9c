package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoLogPrefix = "db:repository"

// AuditRepository provides database access for gateway audit records.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository with the given connection pool.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertMessageAudit records one processed message and returns the stored row.
func (r *AuditRepository) InsertMessageAudit(ctx context.Context, params InsertMessageAuditParams) (*MessageAudit, error) {
	slog.Debug(fmt.Sprintf("%s - InsertMessageAudit source=%s protocol=%s outcome=%s",
		repoLogPrefix, params.Source, params.Protocol, params.Outcome))

	failedChecks := params.FailedChecks
	if failedChecks == nil {
		failedChecks = []string{}
	}
	payload := params.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO audit_messages
		   (source, protocol, direction, outcome, routed_to, trust_score,
		    compliance_status, failed_checks, latency_ms, payload, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, source, protocol, direction, outcome, routed_to, trust_score,
		           compliance_status, failed_checks, latency_ms, payload, created`,
		params.Source, params.Protocol, params.Direction, params.Outcome,
		params.RoutedTo, params.TrustScore, params.ComplianceStatus,
		failedChecks, params.LatencyMs, payload, now)

	return scanMessageAudit(row)
}

// InsertMessageAuditParams holds parameters for InsertMessageAudit.
type InsertMessageAuditParams struct {
	Source           string
	Protocol         string
	Direction        string
	Outcome          string
	RoutedTo         *string
	TrustScore       *int
	ComplianceStatus *string
	FailedChecks     []string
	LatencyMs        float64
	Payload          []byte
}

// InsertTrustAlert records one trust alert, optionally linked to an audit row.
func (r *AuditRepository) InsertTrustAlert(ctx context.Context, params InsertTrustAlertParams) (*TrustAlert, error) {
	slog.Debug(fmt.Sprintf("%s - InsertTrustAlert source=%s level=%s check=%s",
		repoLogPrefix, params.Source, params.Level, params.CheckID))

	now := time.Now().UTC()

	var a TrustAlert
	err := r.pool.QueryRow(ctx,
		`INSERT INTO trust_alerts (audit_id, source, level, check_id, message, created)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, audit_id, source, level, check_id, message, created`,
		params.AuditID, params.Source, params.Level, params.CheckID, params.Message, now,
	).Scan(&a.ID, &a.AuditID, &a.Source, &a.Level, &a.CheckID, &a.Message, &a.Created)
	if err != nil {
		return nil, fmt.Errorf("%s - InsertTrustAlert failed: %w", repoLogPrefix, err)
	}
	return &a, nil
}

// InsertTrustAlertParams holds parameters for InsertTrustAlert.
type InsertTrustAlertParams struct {
	AuditID *string
	Source  string
	Level   string
	CheckID string
	Message string
}

// ListRecentAudits returns the most recent audit rows with optional filters.
func (r *AuditRepository) ListRecentAudits(ctx context.Context, params ListRecentAuditsParams) ([]MessageAudit, error) {
	limit := params.Limit
	if limit < 1 {
		limit = 50
	}

	query := `SELECT id, source, protocol, direction, outcome, routed_to, trust_score,
	                 compliance_status, failed_checks, latency_ms, payload, created
	          FROM audit_messages WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if params.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, params.Source)
		argIdx++
	}
	if params.Protocol != "" {
		query += fmt.Sprintf(` AND protocol = $%d`, argIdx)
		args = append(args, params.Protocol)
		argIdx++
	}
	if params.Outcome != "" {
		query += fmt.Sprintf(` AND outcome = $%d`, argIdx)
		args = append(args, params.Outcome)
		argIdx++
	}

	query += fmt.Sprintf(` ORDER BY created DESC LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s - ListRecentAudits query failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var audits []MessageAudit
	for rows.Next() {
		a, err := scanMessageAuditFromRows(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, *a)
	}
	return audits, nil
}

// ListRecentAuditsParams holds parameters for ListRecentAudits.
type ListRecentAuditsParams struct {
	Source   string
	Protocol string
	Outcome  string
	Limit    int
}

// CountAuditsByOutcome returns row counts grouped by outcome.
func (r *AuditRepository) CountAuditsByOutcome(ctx context.Context) ([]OutcomeCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT outcome, COUNT(*)::int
		 FROM audit_messages
		 GROUP BY outcome
		 ORDER BY outcome ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s - CountAuditsByOutcome failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var counts []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, fmt.Errorf("%s - CountAuditsByOutcome scan failed: %w", repoLogPrefix, err)
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// AlertsForSource returns the most recent alerts raised against a source.
func (r *AuditRepository) AlertsForSource(ctx context.Context, source string, limit int) ([]TrustAlert, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, audit_id, source, level, check_id, message, created
		 FROM trust_alerts
		 WHERE source = $1
		 ORDER BY created DESC
		 LIMIT $2`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("%s - AlertsForSource failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var alerts []TrustAlert
	for rows.Next() {
		var a TrustAlert
		if err := rows.Scan(&a.ID, &a.AuditID, &a.Source, &a.Level, &a.CheckID, &a.Message, &a.Created); err != nil {
			return nil, fmt.Errorf("%s - AlertsForSource scan failed: %w", repoLogPrefix, err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// Health pings the database.
func (r *AuditRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanMessageAudit(row pgx.Row) (*MessageAudit, error) {
	var a MessageAudit
	err := row.Scan(
		&a.ID, &a.Source, &a.Protocol, &a.Direction, &a.Outcome, &a.RoutedTo,
		&a.TrustScore, &a.ComplianceStatus, &a.FailedChecks, &a.LatencyMs,
		&a.Payload, &a.Created,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - scan audit failed: %w", repoLogPrefix, err)
	}
	return &a, nil
}

func scanMessageAuditFromRows(rows pgx.Rows) (*MessageAudit, error) {
	var a MessageAudit
	err := rows.Scan(
		&a.ID, &a.Source, &a.Protocol, &a.Direction, &a.Outcome, &a.RoutedTo,
		&a.TrustScore, &a.ComplianceStatus, &a.FailedChecks, &a.LatencyMs,
		&a.Payload, &a.Created,
	)
	if err != nil {
		return nil, fmt.Errorf("%s - scan audit from rows failed: %w", repoLogPrefix, err)
	}
	return &a, nil
}
