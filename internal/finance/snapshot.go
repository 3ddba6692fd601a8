package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/sethvargo/go-retry"

	"github.com/thouesa/thouesa-backend/pkg/bigquery"
)

const (
	// AllCurrencies marks the snapshot row carrying the mixed totals.
	AllCurrencies = "ALL"
)

// SnapshotRow is one line of the daily finance table.
type SnapshotRow struct {
	SnapshotDate      string    `bigquery:"snapshot_date"`
	Currency          string    `bigquery:"currency"`
	OrderCount        int64     `bigquery:"order_count"`
	TotalRevenue      string    `bigquery:"total_revenue"`
	TotalCommissions  string    `bigquery:"total_commissions"`
	NetAmount         string    `bigquery:"net_amount"`
	CommissionPercent string    `bigquery:"commission_percent"`
	GeneratedAt       time.Time `bigquery:"generated_at"`
}

// SnapshotRows flattens a report for one day into table rows.
func SnapshotRows(day time.Time, report *Report, generatedAt time.Time) []SnapshotRow {
	if report == nil {
		return nil
	}
	date := day.UTC().Format("2006-01-02")
	pct := report.CommissionPercent.String()
	rows := []SnapshotRow{{
		SnapshotDate:      date,
		Currency:          AllCurrencies,
		OrderCount:        int64(report.OrderCount),
		TotalRevenue:      report.TotalRevenue.StringFixed(2),
		TotalCommissions:  report.TotalCommissions.StringFixed(2),
		NetAmount:         report.NetAmount.StringFixed(2),
		CommissionPercent: pct,
		GeneratedAt:       generatedAt.UTC(),
	}}
	for _, line := range report.ByCurrency {
		rows = append(rows, SnapshotRow{
			SnapshotDate:      date,
			Currency:          line.Currency.String(),
			OrderCount:        int64(line.OrderCount),
			TotalRevenue:      line.TotalRevenue.StringFixed(2),
			TotalCommissions:  line.TotalCommissions.StringFixed(2),
			NetAmount:         line.NetAmount.StringFixed(2),
			CommissionPercent: pct,
			GeneratedAt:       generatedAt.UTC(),
		})
	}
	return rows
}

// RetryPolicy bounds insert retries: exponential from InitialBackoff, capped
// at MaximumBackoff, for at most MaxAttempts calls.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

// DefaultRetryPolicy is used for any zero field.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialBackoff: 250 * time.Millisecond, MaximumBackoff: 2 * time.Second}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultRetryPolicy.InitialBackoff
	}
	if p.MaximumBackoff < p.InitialBackoff {
		p.MaximumBackoff = max(DefaultRetryPolicy.MaximumBackoff, p.InitialBackoff)
	}
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	b := retry.NewExponential(p.InitialBackoff)
	b = retry.WithCappedDuration(p.MaximumBackoff, b)
	return retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// SnapshotWriter streams finance snapshot rows into a BigQuery table.
type SnapshotWriter struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

func NewSnapshotWriter(client tableInserter, table string, policy RetryPolicy) (*SnapshotWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("finance table is required")
	}
	return &SnapshotWriter{client: client, table: table, retry: policy.withDefaults()}, nil
}

// Write inserts the rows. Each row carries an insert id of date and currency
// so retried batches are deduplicated by BigQuery.
func (w *SnapshotWriter) Write(ctx context.Context, rows []SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}
	schema, err := cbigquery.InferSchema(SnapshotRow{})
	if err != nil {
		return fmt.Errorf("infer snapshot schema: %w", err)
	}
	savers := make([]any, len(rows))
	for i := range rows {
		savers[i] = &cbigquery.StructSaver{
			Schema:   schema,
			Struct:   rows[i],
			InsertID: rows[i].SnapshotDate + "-" + rows[i].Currency,
		}
	}

	err = retry.Do(ctx, w.retry.backoff(), func(ctx context.Context) error {
		err := w.client.InsertRows(ctx, w.table, savers)
		if bigquery.Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %s rows: %w", w.table, err)
	}
	return nil
}
