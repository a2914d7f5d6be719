// Package repository provides database helper functions for transaction management
// and query execution.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// maxParams is the PostgreSQL bind parameter limit per statement.
const maxParams = 65535

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner abstracts row scanning for use with query helpers.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx executes fn within a database transaction, committing on success
// and rolling back on any error.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, err
	}

	return result, nil
}

// QueryOne executes a query expected to return a single row.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany executes a query expected to return multiple rows.
// Returns an empty slice if no rows are found.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	return results, rows.Err()
}

// ExecExpectOne executes a statement expected to affect exactly one row.
// Returns sql.ErrNoRows if no rows were affected.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// InsertRows writes rows into table with multi-row INSERT statements, splitting
// the batch so no statement exceeds the bind parameter limit. values must
// return one argument per column. Returns the number of rows inserted.
func InsertRows[T any](
	ctx context.Context,
	e Executor,
	table string,
	columns []string,
	rows []T,
	values func(T) []any,
) (int64, error) {
	if len(rows) == 0 || len(columns) == 0 {
		return 0, nil
	}

	perStmt := maxParams / len(columns)
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	var inserted int64
	for start := 0; start < len(rows); start += perStmt {
		chunk := rows[start:min(start+perStmt, len(rows))]
		query, args, err := valuesClause(prefix, len(columns), chunk, values)
		if err != nil {
			return inserted, err
		}

		result, err := e.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}

	return inserted, nil
}

func valuesClause[T any](prefix string, width int, rows []T, values func(T) []any) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(prefix)

	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		vals := values(row)
		if len(vals) != width {
			return "", nil, fmt.Errorf("row %d: got %d values for %d columns", i, len(vals), width)
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range vals {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(len(args) + j + 1))
		}
		sb.WriteByte(')')

		args = append(args, vals...)
	}

	return sb.String(), args, nil
}
