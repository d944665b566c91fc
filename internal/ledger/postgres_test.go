package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

func testRecord() *models.ApplicationRecord {
	return &models.ApplicationRecord{
		ID:               "app-123",
		Timestamp:        time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Name:             "Rahul",
		Age:              32,
		City:             "Mumbai",
		Amount:           250000,
		TenureMonths:     24,
		Rate:             12.0,
		CreditScore:      780,
		PreApprovedLimit: 300000,
		Salary:           60000,
		Status:           "Approved",
		Confidence:       91,
	}
}

func TestAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := testRecord()
	mock.ExpectExec("INSERT INTO loan_applications").
		WithArgs(
			rec.ID, rec.Timestamp, rec.Name, rec.Age, rec.City,
			rec.Amount, rec.TenureMonths, rec.Rate, rec.CreditScore,
			rec.PreApprovedLimit, rec.Salary, rec.Status, rec.Confidence,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := NewPostgresLedger(db, logger.NewTestLogger(t))
	require.NoError(t, l.Append(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO loan_applications").
		WillReturnError(assert.AnError)

	l := NewPostgresLedger(db, logger.NewTestLogger(t))
	err = l.Append(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_WRITE_FAILED")
}

func TestStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"count", "approved", "conditional", "rejected",
		"disbursed", "avg_amount", "avg_rate",
	}).AddRow(10, 6, 2, 2, 1800000, 225000.0, 12.3)

	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	l := NewPostgresLedger(db, logger.NewTestLogger(t))
	s, err := l.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, s.TotalApplications)
	assert.Equal(t, 6, s.Approved)
	assert.Equal(t, 2, s.Conditional)
	assert.Equal(t, 2, s.Rejected)
	assert.Equal(t, int64(1800000), s.TotalDisbursed)
	assert.Equal(t, 225000.0, s.AverageAmount)
	assert.Equal(t, 12.3, s.AverageRate)
}

func TestStatsWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	l := NewPostgresLedger(db, logger.NewTestLogger(t))
	_, err = l.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_QUERY_FAILED")
}

// failSink always errors, for composite ordering checks.
type failSink struct{}

func (f *failSink) Append(context.Context, *models.ApplicationRecord) error {
	return assert.AnError
}

// okSink records the appended ids.
type okSink struct{ ids []string }

func (o *okSink) Append(_ context.Context, rec *models.ApplicationRecord) error {
	o.ids = append(o.ids, rec.ID)
	return nil
}

func TestCompositeSinkPrimaryFailureWins(t *testing.T) {
	c := NewCompositeSink(&failSink{}, nil, logger.NewTestLogger(t))
	err := c.Append(context.Background(), testRecord())
	assert.Error(t, err)
}

func TestCompositeSinkWithoutIndexer(t *testing.T) {
	primary := &okSink{}
	c := NewCompositeSink(primary, nil, logger.NewTestLogger(t))
	require.NoError(t, c.Append(context.Background(), testRecord()))
	assert.Equal(t, []string{"app-123"}, primary.ids)
}
