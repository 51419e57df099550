package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// execOrDB returns the transaction-bound executor when one is supplied, falling back to the pool.
func execOrDB(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// deactivate flips is_active to false on a single row. Rows are never deleted.
// A missing row surfaces as sql.ErrNoRows; repeating the call on an inactive row succeeds.
func deactivate(ctx context.Context, db sqlx.ExecerContext, table, keyColumn string, key interface{}) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = false WHERE %s = $1", table, keyColumn)
	res, err := db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	return requireAffected(res, table)
}

func requireAffected(res sql.Result, table string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", table, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", table, sql.ErrNoRows)
	}
	return nil
}
