package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/culturepulse/culture-pulse/internal/core/domain"
)

// maxAdHocRows bounds the memory one ad hoc query can consume.
const maxAdHocRows = 10000

// RunReadOnlyQuery executes one ad hoc SELECT and returns the rows with the
// select-list column order preserved, so the caller can render them
// generically without guessing field names. The statement must already be
// validated as read-only; the read-only transaction is a second guard against
// anything that slipped through.
func (db *DB) RunReadOnlyQuery(ctx context.Context, sql string) (domain.Unstructured, error) {
	out := domain.Unstructured{Rows: []map[string]any{}}

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return out, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return out, fmt.Errorf("ad hoc query: %w", err)
	}
	defer rows.Close()

	for _, fd := range rows.FieldDescriptions() {
		out.Columns = append(out.Columns, string(fd.Name))
	}

	for rows.Next() {
		if len(out.Rows) >= maxAdHocRows {
			break
		}

		values, err := rows.Values()
		if err != nil {
			return out, fmt.Errorf("scan ad hoc row: %w", err)
		}

		row := make(map[string]any, len(values))
		for i, v := range values {
			row[out.Columns[i]] = v
		}

		out.Rows = append(out.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("ad hoc rows: %w", err)
	}

	return out, nil
}
