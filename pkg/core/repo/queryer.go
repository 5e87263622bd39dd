package repo

import "context"

// Queryer runs raw SQL statements. The vault and published copies
// repositories use their own typed queries and the raw statements are
// used by the schema repository and the integration tests.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows iterates over the result set of a Query.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}
