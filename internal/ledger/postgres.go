// Package ledger records every underwriting decision in an append-only
// application log and serves the aggregate figures behind the dashboard.
package ledger

import (
	"context"
	"database/sql"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Sink receives one record per computed decision.
type Sink interface {
	Append(ctx context.Context, rec *models.ApplicationRecord) error
}

const insertApplicationSQL = `
	INSERT INTO loan_applications (
		id, created_at, applicant_name, applicant_age, applicant_city,
		amount, tenure_months, rate, credit_score, pre_approved_limit,
		salary, status, confidence
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// PostgresLedger appends application records to the relational ledger.
type PostgresLedger struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresLedger(db *sql.DB, log logger.Logger) *PostgresLedger {
	return &PostgresLedger{db: db, log: log}
}

// Append writes one ledger row. Rows are never updated or deleted.
func (l *PostgresLedger) Append(ctx context.Context, rec *models.ApplicationRecord) error {
	_, err := l.db.ExecContext(ctx, insertApplicationSQL,
		rec.ID,
		rec.Timestamp,
		rec.Name,
		rec.Age,
		rec.City,
		rec.Amount,
		rec.TenureMonths,
		rec.Rate,
		rec.CreditScore,
		rec.PreApprovedLimit,
		rec.Salary,
		rec.Status,
		rec.Confidence,
	)
	if err != nil {
		return errors.NewLedgerWriteFailedError(err)
	}

	l.log.Info("Application recorded", map[string]interface{}{
		"applicationId": rec.ID,
		"applicant":     rec.Name,
		"amount":        rec.Amount,
		"status":        rec.Status,
	})
	return nil
}

// Stats holds the aggregate figures the dashboard shows.
type Stats struct {
	TotalApplications int     `json:"totalApplications"`
	Approved          int     `json:"approved"`
	Conditional       int     `json:"conditional"`
	Rejected          int     `json:"rejected"`
	TotalDisbursed    int64   `json:"totalDisbursed"`
	AverageAmount     float64 `json:"averageAmount"`
	AverageRate       float64 `json:"averageRate"`
}

const statsSQL = `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'Approved'),
		COUNT(*) FILTER (WHERE status = 'Conditional'),
		COUNT(*) FILTER (WHERE status = 'Rejected'),
		COALESCE(SUM(amount) FILTER (WHERE status <> 'Rejected'), 0),
		COALESCE(AVG(amount) FILTER (WHERE status <> 'Rejected'), 0),
		COALESCE(AVG(rate), 0)
	FROM loan_applications`

// Stats aggregates the ledger for the dashboard.
func (l *PostgresLedger) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := l.db.QueryRowContext(ctx, statsSQL).Scan(
		&s.TotalApplications,
		&s.Approved,
		&s.Conditional,
		&s.Rejected,
		&s.TotalDisbursed,
		&s.AverageAmount,
		&s.AverageRate,
	)
	if err != nil {
		return nil, errors.NewLedgerQueryFailedError(err)
	}
	return &s, nil
}

var _ Sink = (*PostgresLedger)(nil)
