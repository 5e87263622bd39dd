package postgres

import "database/sql"

// rowsAdapter adapts *sql.Rows to the repo.Rows port whose Close has
// no result. The close error is reported by Err.
type rowsAdapter struct {
	*sql.Rows
}

func (ra rowsAdapter) Close() {
	_ = ra.Rows.Close()
}
