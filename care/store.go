/*
store.go - Persistence interface for children, caregivers and care days

PURPOSE:
  Defines the interface between the care logic and the storage backend.
  Two interchangeable implementations exist and one is chosen at startup:

  - store/sqlite/sqlite.go: embedded SQLite database
  - care/store/local.go:    key-value fallback, one JSON list per record type

KEY INTERFACES:
  Store:   CRUD for the three record types plus Reset
  TxStore: Store with atomic multi-write support (WithTx)

CONTRACT (both backends):
  - List* orders children and caregivers by name, care days by date
    descending (newest first).
  - Get* returns (nil, nil) when the record does not exist.
  - Add* assigns the next identifier and returns it.
  - Update* and Delete* are no-ops for unknown identifiers.
  - DeleteChild / DeleteCaregiver also delete the care days referencing
    them, atomically.
  - Reset empties everything: care days first, then children, then
    caregivers.
  - Referential integrity of care days is only enforced by SQLite.

SEE ALSO:
  - repository.go: Error-swallowing facade used by the rest of the app
  - factory/backend.go: Backend selection
*/
package care

import "context"

// Backend names a storage strategy.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendLocal  Backend = "local"
)

type ChildStore interface {
	ListChildren(ctx context.Context) ([]Child, error)
	GetChild(ctx context.Context, id ChildID) (*Child, error)
	AddChild(ctx context.Context, c Child) (ChildID, error)
	UpdateChild(ctx context.Context, c Child) error
	DeleteChild(ctx context.Context, id ChildID) error
}

type CaregiverStore interface {
	ListCaregivers(ctx context.Context) ([]Caregiver, error)
	GetCaregiver(ctx context.Context, id CaregiverID) (*Caregiver, error)
	AddCaregiver(ctx context.Context, cg Caregiver) (CaregiverID, error)
	UpdateCaregiver(ctx context.Context, cg Caregiver) error
	DeleteCaregiver(ctx context.Context, id CaregiverID) error
}

type CareDayStore interface {
	ListCareDays(ctx context.Context) ([]CareDay, error)
	GetCareDay(ctx context.Context, id CareDayID) (*CareDay, error)
	AddCareDay(ctx context.Context, cd CareDay) (CareDayID, error)
	UpdateCareDay(ctx context.Context, cd CareDay) error
	DeleteCareDay(ctx context.Context, id CareDayID) error
}

// Store is the full persistence contract.
type Store interface {
	ChildStore
	CaregiverStore
	CareDayStore

	// Reset deletes every record of every type.
	Reset(ctx context.Context) error
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the given Store is
	// rolled back. If fn returns nil, the writes are committed.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Backend names the strategy behind this store.
	Backend() Backend
}
