package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dvloznov/smartbudget/internal/logger"
)

const insertBatchSize = 500

// Sink is the destination table. It enables mocking of BigQuery in tests.
type Sink interface {
	// EnsureTable creates the table when it does not exist yet.
	EnsureTable(ctx context.Context) error

	// ExportedIDs returns the ids of every transaction already in the table.
	ExportedIDs(ctx context.Context) (map[string]bool, error)

	// Insert streams rows into the table.
	Insert(ctx context.Context, rows []*TransactionRow) error
}

// Result summarizes one export run.
type Result struct {
	Exported int `json:"exported"`
	Skipped  int `json:"skipped"`
}

// Export writes the rows the sink does not have yet, in batches.
func Export(ctx context.Context, sink Sink, rows []*TransactionRow) (Result, error) {
	log := logger.FromContext(ctx)

	if err := sink.EnsureTable(ctx); err != nil {
		return Result{}, fmt.Errorf("Export: %w", err)
	}
	exported, err := sink.ExportedIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("Export: %w", err)
	}

	var pending []*TransactionRow
	for _, row := range rows {
		if !exported[row.TransactionID] {
			pending = append(pending, row)
		}
	}
	res := Result{Skipped: len(rows) - len(pending)}

	for start := 0; start < len(pending); start += insertBatchSize {
		end := min(start+insertBatchSize, len(pending))
		if err := sink.Insert(ctx, pending[start:end]); err != nil {
			return res, fmt.Errorf("Export: inserting rows %d-%d: %w", start, end, err)
		}
		res.Exported += end - start
		log.Debug().Int("batch_size", end-start).Msg("Inserted transaction batch")
	}

	log.Info().Int("exported", res.Exported).Int("skipped", res.Skipped).Msg("BigQuery export finished")
	return res, nil
}

// Warehouse is the BigQuery implementation of Sink.
type Warehouse struct {
	client  *bigquery.Client
	project string
	dataset string
	table   string
}

// NewWarehouse creates a Warehouse with its own BigQuery client.
func NewWarehouse(ctx context.Context, project, dataset, table string, opts ...option.ClientOption) (*Warehouse, error) {
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewWarehouse: creating client: %w", err)
	}
	return &Warehouse{client: client, project: project, dataset: dataset, table: table}, nil
}

// Close closes the BigQuery client connection.
func (w *Warehouse) Close() error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}

func (w *Warehouse) tableRef() *bigquery.Table {
	return w.client.DatasetInProject(w.project, w.dataset).Table(w.table)
}

// EnsureTable creates the table, partitioned by transaction date, if the
// metadata lookup reports it missing.
func (w *Warehouse) EnsureTable(ctx context.Context) error {
	table := w.tableRef()
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("EnsureTable: reading metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(TransactionRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: inferring schema: %w", err)
	}
	meta := &bigquery.TableMetadata{
		Schema:           schema,
		TimePartitioning: &bigquery.TimePartitioning{Field: "transaction_date"},
	}
	if err := table.Create(ctx, meta); err != nil {
		return fmt.Errorf("EnsureTable: creating table: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("table", w.table).Msg("Created BigQuery table")
	return nil
}

// ExportedIDs implements Sink.
func (w *Warehouse) ExportedIDs(ctx context.Context) (map[string]bool, error) {
	q := w.client.Query(fmt.Sprintf("SELECT transaction_id FROM `%s.%s.%s`", w.project, w.dataset, w.table))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportedIDs: query read: %w", err)
	}

	ids := make(map[string]bool)
	for {
		var row struct {
			TransactionID string `bigquery:"transaction_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExportedIDs: iter next: %w", err)
		}
		ids[row.TransactionID] = true
	}
	return ids, nil
}

// Insert implements Sink. Transaction ids double as insert ids so a retried
// batch is deduplicated by the streaming API.
func (w *Warehouse) Insert(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	savers := make([]*bigquery.StructSaver, len(rows))
	for i, row := range rows {
		savers[i] = &bigquery.StructSaver{Struct: row, InsertID: row.TransactionID}
	}
	if err := w.tableRef().Inserter().Put(ctx, savers); err != nil {
		return fmt.Errorf("Insert: inserting rows: %w", err)
	}
	return nil
}

var _ Sink = (*Warehouse)(nil)
