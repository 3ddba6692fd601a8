package bigquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/gcp"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

const metadataTimeout = 10 * time.Second

var (
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errFinanceTableRequired = errors.New("bigquery finance table is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Client is the warehouse sink for daily finance snapshots.
type Client struct {
	client       *bigquery.Client
	dataset      *bigquery.Dataset
	financeTable string
}

// NewClient connects and fails fast when the dataset or finance table is missing.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID, err := gcp.ProjectID(gcpCfg)
	if err != nil {
		return nil, err
	}
	datasetID, table, err := target(cfg)
	if err != nil {
		return nil, err
	}

	bq, err := bigquery.NewClient(ctx, projectID, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	c := &Client{client: bq, dataset: bq.Dataset(datasetID), financeTable: table}
	if err := c.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"bq_dataset": datasetID,
			"bq_table":   table,
		}), "bigquery.client_ready")
	}
	return c, nil
}

func target(cfg config.BigQueryConfig) (dataset, table string, err error) {
	dataset = strings.TrimSpace(cfg.Dataset)
	if dataset == "" {
		return "", "", errDatasetRequired
	}
	table = strings.TrimSpace(cfg.FinanceTable)
	if table == "" {
		return "", "", errFinanceTableRequired
	}
	return dataset, table, nil
}

// Ping checks that the dataset and the finance table are reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return describe("dataset", c.dataset.DatasetID, err)
	}
	if _, err := c.dataset.Table(c.financeTable).Metadata(ctx); err != nil {
		return describe("table", c.financeTable, err)
	}
	return nil
}

func describe(kind, name string, err error) error {
	if gcp.IsNotFound(err) {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}

// InsertRows streams rows into table within the configured dataset. Rows may
// be any value the bigquery Inserter accepts, including ValueSavers.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errFinanceTableRequired
	}
	if len(rows) == 0 {
		return nil
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

func (c *Client) FinanceTable() string {
	if c == nil {
		return ""
	}
	return c.financeTable
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Retryable reports whether an insert failed only with transient errors.
// Multi-row failures are retryable when every row failure is.
func Retryable(err error) bool {
	var multi bigquery.MultiError
	if errors.As(err, &multi) {
		return len(multi) > 0 && all(multi, Retryable)
	}
	var rows bigquery.PutMultiError
	if errors.As(err, &rows) {
		return len(rows) > 0 && all(rows, func(row bigquery.RowInsertionError) bool { return Retryable(row.Errors) })
	}
	return gcp.IsTransient(err)
}

func all[T any](items []T, ok func(T) bool) bool {
	for _, item := range items {
		if !ok(item) {
			return false
		}
	}
	return true
}
