// Package store provides a generic record store for the import pipeline.
//
// The pipeline never talks to the database directly; every component receives
// a Store handle, so the whole import can run against Postgres in production
// and the in-memory implementation in tests. All access is single-entity:
// find at most one record by equality conditions, create, or update.
package store

import "context"

// Kind identifies an entity table in the store.
type Kind string

const (
	KindPartner     Kind = "partners"
	KindState       Kind = "states"
	KindProduct     Kind = "products"
	KindCarrier     Kind = "carriers"
	KindPaymentMode Kind = "payment_modes"
	KindWorkflow    Kind = "workflows"
	KindMarketplace Kind = "marketplaces"
	KindOrder       Kind = "orders"
	KindOrderLine   Kind = "order_lines"
)

// Fields is a set of named values for a record. Values are plain Go types:
// string, float64, int64, time.Time, or nil for an absent value.
type Fields map[string]any

// Cond is an equality condition on a single field.
type Cond struct {
	Field string
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Cond {
	return Cond{Field: field, Value: value}
}

// Record is a stored entity with its identifier.
type Record struct {
	ID     int64
	Kind   Kind
	Fields Fields
}

// Store is the capability set the pipeline needs from persistence.
type Store interface {
	// FindOne returns the first record matching all conditions, or nil if
	// none match. Ties break on lowest ID (the first-created record).
	FindOne(ctx context.Context, kind Kind, conds ...Cond) (*Record, error)

	// Create inserts a new record and returns its identifier.
	Create(ctx context.Context, kind Kind, fields Fields) (int64, error)

	// Update overwrites the given fields on an existing record.
	Update(ctx context.Context, kind Kind, id int64, fields Fields) error
}

// TxStore is a Store whose mutations are staged until Commit.
type TxStore interface {
	Store

	// Commit makes all staged mutations durable.
	Commit(ctx context.Context) error

	// Rollback discards all staged mutations. Safe to call after Commit.
	Rollback(ctx context.Context) error
}

// Beginner is a Store that can open transactions.
type Beginner interface {
	Store

	// Begin opens a transaction. All batch work happens inside one
	// transaction so a failed batch leaves no trace.
	Begin(ctx context.Context) (TxStore, error)
}
