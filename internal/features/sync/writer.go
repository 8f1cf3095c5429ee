package sync

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"crm-backend/internal/database"
	"crm-backend/internal/moysklad"

	"go.uber.org/zap"
)

// Writer persists normalized records with idempotent upserts keyed on
// external_id. RETURNING (xmax = 0) distinguishes inserts from updates in a
// single round trip.
type Writer struct {
	db  *sql.DB
	log *zap.Logger
}

func NewWriter(db *database.PostgresDB, log *zap.Logger) *Writer {
	return &Writer{db: db.DB, log: log}
}

// Upsert writes one record into table. Returns true when the row was newly
// inserted, false when an existing row was updated.
func (w *Writer) Upsert(ctx context.Context, table string, record moysklad.Record) (bool, error) {
	if record.ExternalID == "" {
		return false, fmt.Errorf("record for table %s has no external id", table)
	}

	// Deterministic column order keeps generated SQL stable for a given
	// record shape.
	columns := make([]string, 0, len(record.Fields))
	for col := range record.Fields {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	insertCols := make([]string, 0, len(columns)+1)
	placeholders := make([]string, 0, len(columns)+1)
	updates := make([]string, 0, len(columns)+1)
	values := make([]any, 0, len(columns)+1)

	insertCols = append(insertCols, "external_id")
	placeholders = append(placeholders, "$1")
	values = append(values, record.ExternalID)

	for i, col := range columns {
		insertCols = append(insertCols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		values = append(values, record.Fields[col])
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (external_id) DO UPDATE SET %s
		RETURNING (xmax = 0)`,
		table,
		strings.Join(insertCols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	var inserted bool
	if err := w.db.QueryRowContext(ctx, query, values...).Scan(&inserted); err != nil {
		return false, fmt.Errorf("upsert into %s failed for %s: %w", table, record.ExternalID, err)
	}
	return inserted, nil
}

// UpsertBatch writes all records into table, continuing past per-record
// failures. The returned EntityResult carries created/updated/failed counts;
// the first error message is kept for the summary.
func (w *Writer) UpsertBatch(ctx context.Context, table string, records []moysklad.Record) EntityResult {
	var result EntityResult
	for _, record := range records {
		inserted, err := w.Upsert(ctx, table, record)
		if err != nil {
			result.Failed++
			if result.Error == "" {
				result.Error = err.Error()
			}
			w.log.Warn("Failed to upsert record",
				zap.String("table", table),
				zap.String("external_id", record.ExternalID),
				zap.Error(err))
			continue
		}
		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result
}
