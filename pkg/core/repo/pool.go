package repo

import "context"

type ConnHandler func(context.Context, Conn) error

// Pool lends a connection to the handler and takes it back afterwards.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
