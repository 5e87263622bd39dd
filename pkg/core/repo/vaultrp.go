package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/alicer3/car-cordapp/pkg/core/model"
)

// Stored is a state which is kept in the vault together with the
// reference which identifies its row. A document may be stored in
// several versions, but only its latest version is unconsumed.
type Stored[S model.State] struct {
	Ref   uuid.UUID
	State S
}

// VaultConnQueryer lists the vault operations which need no
// transaction.
type VaultConnQueryer interface {
	VaultQueryer
}

// VaultTxQueryer lists the vault operations which record a transition.
// They must run in a transaction, so all outputs are inserted and all
// inputs are consumed atomically.
type VaultTxQueryer interface {
	VaultQueryer

	// Insert stores the given states as unconsumed and returns their
	// references in the same order.
	Insert(ctx context.Context, states ...model.State) ([]uuid.UUID, error)

	// Consume marks the refs states as consumed. If any one of them is
	// missing or has been consumed already, a cerr.Conflict error is
	// returned and the caller must roll back the transaction.
	Consume(ctx context.Context, refs ...uuid.UUID) error
}

// VaultQueryer lists the read-only vault operations. Consumed states
// are never returned.
type VaultQueryer interface {
	// Document finds the latest version of the linearID document.
	// A cerr.NotFound error is returned if it does not exist.
	Document(ctx context.Context, linearID uuid.UUID) (
		Stored[model.Document], error,
	)

	// Documents lists documents with the given kind which have the
	// participant party among their participants.
	Documents(
		ctx context.Context, kind model.DocumentKind, participant model.Party,
	) ([]Stored[model.Document], error)

	// Tokens lists the escrow tokens which are held by holder, ordered
	// by their creation time.
	Tokens(ctx context.Context, holder model.Party) (
		[]Stored[model.Token], error,
	)
}

// Vault is the repository of documents and escrow tokens.
type Vault interface {
	Conn(Conn) VaultConnQueryer
	Tx(Tx) VaultTxQueryer
}
