package repo

import "context"

type TxHandler func(context.Context, Tx) error

// Conn is a connection which is acquired from a Pool. Each transition
// of the ledger is recorded in a transaction which is started by the
// Tx method and committed if its handler returns nil.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error
	IsConn()
}
