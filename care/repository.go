/*
repository.go - Data-access facade over the active storage backend

PURPOSE:
  Gives the rest of the app one typed CRUD surface regardless of which
  backend was chosen at startup, and absorbs storage failures.

FAILURE SEMANTICS:
  Storage errors are logged and converted to benign results:
  - List*   -> empty slice
  - Get*    -> nil
  - Add*    -> zero identifier
  - Update*, Delete*, ResetAll -> nothing happens
  Callers cannot tell "not found" from "storage failure"; Ready/Err report
  the one failure that matters, a backend that could not be opened.

  AddCareDays is the exception: the scheduler must know whether a period
  was recorded, so it returns the error (after logging it).

SEE ALSO:
  - store.go: The Store contract
  - scheduler.go: Main writer of care days
*/
package care

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Repository is safe for concurrent use when its store is.
type Repository struct {
	store  TxStore
	err    error
	logger log.Logger
}

// NewRepository wraps an opened store.
func NewRepository(store TxStore, logger log.Logger) *Repository {
	return &Repository{store: store, logger: logger}
}

// Unavailable is the repository of an app whose backend failed to open.
// Every operation returns an empty result.
func Unavailable(err error, logger log.Logger) *Repository {
	return &Repository{err: err, logger: logger}
}

// Ready reports whether a backend is attached.
func (r *Repository) Ready() bool { return r.store != nil }

// Err is the initialisation error of an unavailable repository.
func (r *Repository) Err() error { return r.err }

// Backend names the active backend, empty when not ready.
func (r *Repository) Backend() Backend {
	if r.store == nil {
		return ""
	}
	return r.store.Backend()
}

func (r *Repository) available(op string) bool {
	if r.store != nil {
		return true
	}
	level.Error(r.logger).Log("msg", op, "err", ErrNotReady)
	return false
}

func (r *Repository) fail(msg string, err error, keyvals ...any) {
	level.Error(r.logger).Log(append([]any{"msg", msg, "err", err}, keyvals...)...)
}

// =============================================================================
// CHILDREN
// =============================================================================

func (r *Repository) ListChildren(ctx context.Context) []Child {
	if !r.available("list children") {
		return []Child{}
	}
	children, err := r.store.ListChildren(ctx)
	if err != nil {
		r.fail("failed to list children", err)
		return []Child{}
	}
	if children == nil {
		return []Child{}
	}
	return children
}

func (r *Repository) GetChild(ctx context.Context, id ChildID) *Child {
	if !r.available("get child") {
		return nil
	}
	c, err := r.store.GetChild(ctx, id)
	if err != nil {
		r.fail("failed to get child", err, "child_id", id)
		return nil
	}
	return c
}

// AddChild stores c under a new identifier and returns it.
func (r *Repository) AddChild(ctx context.Context, c Child) ChildID {
	if !r.available("add child") {
		return 0
	}
	id, err := r.store.AddChild(ctx, c)
	if err != nil {
		r.fail("failed to add child", err)
		return 0
	}
	return id
}

func (r *Repository) UpdateChild(ctx context.Context, c Child) {
	if !r.available("update child") {
		return
	}
	if err := r.store.UpdateChild(ctx, c); err != nil {
		r.fail("failed to update child", err, "child_id", c.ID)
	}
}

// DeleteChild removes the child and its care days.
func (r *Repository) DeleteChild(ctx context.Context, id ChildID) {
	if !r.available("delete child") {
		return
	}
	if err := r.store.DeleteChild(ctx, id); err != nil {
		r.fail("failed to delete child", err, "child_id", id)
	}
}

// =============================================================================
// CAREGIVERS
// =============================================================================

func (r *Repository) ListCaregivers(ctx context.Context) []Caregiver {
	if !r.available("list caregivers") {
		return []Caregiver{}
	}
	caregivers, err := r.store.ListCaregivers(ctx)
	if err != nil {
		r.fail("failed to list caregivers", err)
		return []Caregiver{}
	}
	if caregivers == nil {
		return []Caregiver{}
	}
	return caregivers
}

func (r *Repository) GetCaregiver(ctx context.Context, id CaregiverID) *Caregiver {
	if !r.available("get caregiver") {
		return nil
	}
	cg, err := r.store.GetCaregiver(ctx, id)
	if err != nil {
		r.fail("failed to get caregiver", err, "caregiver_id", id)
		return nil
	}
	return cg
}

func (r *Repository) AddCaregiver(ctx context.Context, cg Caregiver) CaregiverID {
	if !r.available("add caregiver") {
		return 0
	}
	if cg.Role == "" {
		cg.Role = DefaultRole
	}
	id, err := r.store.AddCaregiver(ctx, cg)
	if err != nil {
		r.fail("failed to add caregiver", err)
		return 0
	}
	return id
}

func (r *Repository) UpdateCaregiver(ctx context.Context, cg Caregiver) {
	if !r.available("update caregiver") {
		return
	}
	if cg.Role == "" {
		cg.Role = DefaultRole
	}
	if err := r.store.UpdateCaregiver(ctx, cg); err != nil {
		r.fail("failed to update caregiver", err, "caregiver_id", cg.ID)
	}
}

// DeleteCaregiver removes the caregiver and its care days.
func (r *Repository) DeleteCaregiver(ctx context.Context, id CaregiverID) {
	if !r.available("delete caregiver") {
		return
	}
	if err := r.store.DeleteCaregiver(ctx, id); err != nil {
		r.fail("failed to delete caregiver", err, "caregiver_id", id)
	}
}

// =============================================================================
// CARE DAYS
// =============================================================================

// ListCareDays returns every care day, newest first.
func (r *Repository) ListCareDays(ctx context.Context) []CareDay {
	if !r.available("list care days") {
		return []CareDay{}
	}
	days, err := r.store.ListCareDays(ctx)
	if err != nil {
		r.fail("failed to list care days", err)
		return []CareDay{}
	}
	if days == nil {
		return []CareDay{}
	}
	return days
}

func (r *Repository) GetCareDay(ctx context.Context, id CareDayID) *CareDay {
	if !r.available("get care day") {
		return nil
	}
	cd, err := r.store.GetCareDay(ctx, id)
	if err != nil {
		r.fail("failed to get care day", err, "care_day_id", id)
		return nil
	}
	return cd
}

func (r *Repository) AddCareDay(ctx context.Context, cd CareDay) CareDayID {
	if !r.available("add care day") {
		return 0
	}
	id, err := r.store.AddCareDay(ctx, cd)
	if err != nil {
		r.fail("failed to add care day", err, "date", cd.Date)
		return 0
	}
	return id
}

// AddCareDays records one care day per date, all or nothing.
func (r *Repository) AddCareDays(ctx context.Context, childID ChildID, caregiverID CaregiverID, dates []Date) ([]CareDayID, error) {
	if !r.available("add care days") {
		return nil, ErrNotReady
	}
	ids := make([]CareDayID, 0, len(dates))
	err := r.store.WithTx(ctx, func(s Store) error {
		for _, d := range dates {
			id, err := s.AddCareDay(ctx, CareDay{ChildID: childID, CaregiverID: caregiverID, Date: d})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		r.fail("failed to add care days", err, "child_id", childID, "caregiver_id", caregiverID, "days", len(dates))
		return nil, err
	}
	return ids, nil
}

func (r *Repository) UpdateCareDay(ctx context.Context, cd CareDay) {
	if !r.available("update care day") {
		return
	}
	if err := r.store.UpdateCareDay(ctx, cd); err != nil {
		r.fail("failed to update care day", err, "care_day_id", cd.ID)
	}
}

func (r *Repository) DeleteCareDay(ctx context.Context, id CareDayID) {
	if !r.available("delete care day") {
		return
	}
	if err := r.store.DeleteCareDay(ctx, id); err != nil {
		r.fail("failed to delete care day", err, "care_day_id", id)
	}
}

// =============================================================================
// RESET
// =============================================================================

// ResetAll empties the three collections.
func (r *Repository) ResetAll(ctx context.Context) {
	if !r.available("reset") {
		return
	}
	if err := r.store.Reset(ctx); err != nil {
		r.fail("failed to reset storage", err)
	}
}
