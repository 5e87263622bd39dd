package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// PublishedConnQueryer lists the published copies operations which
// need no transaction.
type PublishedConnQueryer interface {
	PublishedQueryer
}

// PublishedTxQueryer lists the operations which create or consume
// published copies. They run in the transaction of their transition.
type PublishedTxQueryer interface {
	PublishedQueryer

	// Insert stores p as an unconsumed copy.
	Insert(ctx context.Context, p model.Published) error

	// Consume marks the ids copies as consumed. A cerr.Conflict error
	// is returned if any one of them is missing or already consumed.
	Consume(ctx context.Context, ids ...uuid.UUID) error
}

// PublishedQueryer lists the read-only operations over unconsumed
// published copies.
type PublishedQueryer interface {
	// Find returns the id copy, or a cerr.NotFound error.
	Find(ctx context.Context, id uuid.UUID) (model.Published, error)

	// Owned lists copies of the docID document which are published by
	// owner, ordered by their creation time. Copies of all versions of
	// docID are returned and caller may compare their wrapped documents
	// to find the identical ones.
	Owned(ctx context.Context, owner model.Party, docID uuid.UUID) (
		[]model.Published, error,
	)
}

// Published is the repository of published copies.
type Published interface {
	Conn(Conn) PublishedConnQueryer
	Tx(Tx) PublishedTxQueryer
}
