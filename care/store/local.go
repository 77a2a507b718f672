/*
Package store provides the local key-value fallback backend.

PURPOSE:
  Used when no database is available. Each record type lives in its own
  JSON array under a fixed key, the same field names as the SQLite columns:

    enfants         [{"id":1,"nom":"Léa","age":2,"date_naissance":"2023-06-15"}]
    grands_parents  [{"id":1,"nom":"Camille","lieu":"Lyon","role":"grand-mere","couleur":"#FF0000"}]
    gardes          [{"id":1,"enfant_id":1,"grand_parent_id":1,"date":"2025-07-01"}]

  There is no schema and no migration. Identifiers are max(id)+1, or 1 for
  an empty list. References from gardes are not validated.

ATOMICITY:
  Every write reads the whole list, changes it and writes it back under the
  store lock. WithTx snapshots the three raw lists first and writes the
  snapshot back if fn fails.

SEE ALSO:
  - kv.go: Memory and directory-backed key-value spaces
  - store/sqlite: The database backend
*/
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/bantra/gardeparents/care"
)

// Fixed storage keys.
const (
	KeyChildren   = "enfants"
	KeyCaregivers = "grands_parents"
	KeyCareDays   = "gardes"
)

var allKeys = []string{KeyCareDays, KeyChildren, KeyCaregivers}

type childRecord struct {
	ID            int64  `json:"id"`
	Nom           string `json:"nom"`
	Age           int    `json:"age"`
	PhotoURL      string `json:"photo_url,omitempty"`
	DateNaissance string `json:"date_naissance,omitempty"`
}

type caregiverRecord struct {
	ID        int64  `json:"id"`
	Nom       string `json:"nom"`
	Lieu      string `json:"lieu"`
	Telephone string `json:"telephone,omitempty"`
	Role      string `json:"role"`
	PhotoURL  string `json:"photo_url,omitempty"`
	Couleur   string `json:"couleur,omitempty"`
}

type careDayRecord struct {
	ID            int64  `json:"id"`
	EnfantID      int64  `json:"enfant_id"`
	GrandParentID int64  `json:"grand_parent_id"`
	Date          string `json:"date"`
}

// =============================================================================
// LOCAL STORE - care.TxStore over a KV
// =============================================================================

type Local struct {
	mu    sync.RWMutex
	lists lists
}

// NewLocal stores everything in kv.
func NewLocal(kv KV) *Local {
	return &Local{lists: lists{kv: kv}}
}

// NewMemory is a Local store that lives in memory only.
func NewMemory() *Local {
	return NewLocal(NewMemoryKV())
}

func (l *Local) Backend() care.Backend { return care.BackendLocal }

func (l *Local) ListChildren(ctx context.Context) ([]care.Child, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.ListChildren(ctx)
}

func (l *Local) GetChild(ctx context.Context, id care.ChildID) (*care.Child, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.GetChild(ctx, id)
}

func (l *Local) AddChild(ctx context.Context, c care.Child) (care.ChildID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.AddChild(ctx, c)
}

func (l *Local) UpdateChild(ctx context.Context, c care.Child) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.UpdateChild(ctx, c)
}

func (l *Local) DeleteChild(ctx context.Context, id care.ChildID) error {
	return l.WithTx(ctx, func(s care.Store) error { return s.DeleteChild(ctx, id) })
}

func (l *Local) ListCaregivers(ctx context.Context) ([]care.Caregiver, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.ListCaregivers(ctx)
}

func (l *Local) GetCaregiver(ctx context.Context, id care.CaregiverID) (*care.Caregiver, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.GetCaregiver(ctx, id)
}

func (l *Local) AddCaregiver(ctx context.Context, cg care.Caregiver) (care.CaregiverID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.AddCaregiver(ctx, cg)
}

func (l *Local) UpdateCaregiver(ctx context.Context, cg care.Caregiver) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.UpdateCaregiver(ctx, cg)
}

func (l *Local) DeleteCaregiver(ctx context.Context, id care.CaregiverID) error {
	return l.WithTx(ctx, func(s care.Store) error { return s.DeleteCaregiver(ctx, id) })
}

func (l *Local) ListCareDays(ctx context.Context) ([]care.CareDay, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.ListCareDays(ctx)
}

func (l *Local) GetCareDay(ctx context.Context, id care.CareDayID) (*care.CareDay, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lists.GetCareDay(ctx, id)
}

func (l *Local) AddCareDay(ctx context.Context, cd care.CareDay) (care.CareDayID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.AddCareDay(ctx, cd)
}

func (l *Local) UpdateCareDay(ctx context.Context, cd care.CareDay) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.UpdateCareDay(ctx, cd)
}

func (l *Local) DeleteCareDay(ctx context.Context, id care.CareDayID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.DeleteCareDay(ctx, id)
}

func (l *Local) Reset(ctx context.Context) error {
	return l.WithTx(ctx, func(s care.Store) error { return s.Reset(ctx) })
}

// WithTx executes fn against the lists under the write lock.
// A failing fn leaves the three lists as they were before the call.
func (l *Local) WithTx(ctx context.Context, fn func(care.Store) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot, err := l.lists.snapshot(ctx)
	if err != nil {
		return err
	}
	if err := fn(&l.lists); err != nil {
		if rerr := l.lists.restore(ctx, snapshot); rerr != nil {
			return fmt.Errorf("%w; rollback: %v", err, rerr)
		}
		return err
	}
	return nil
}

// =============================================================================
// LISTS - Unlocked operations, shared by Local and its transactions
// =============================================================================

type lists struct {
	kv KV
}

func load[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	b, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var items []T
	if len(b) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func save[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, b)
}

func nextID[T any](items []T, id func(T) int64) int64 {
	var highest int64
	for _, it := range items {
		if v := id(it); v > highest {
			highest = v
		}
	}
	return highest + 1
}

func (ls *lists) snapshot(ctx context.Context) (map[string][]byte, error) {
	snap := make(map[string][]byte, len(allKeys))
	for _, k := range allKeys {
		b, err := ls.kv.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		snap[k] = b
	}
	return snap, nil
}

func (ls *lists) restore(ctx context.Context, snap map[string][]byte) error {
	for _, k := range allKeys {
		b := snap[k]
		if b == nil {
			b = []byte("[]")
		}
		if err := ls.kv.Set(ctx, k, b); err != nil {
			return err
		}
	}
	return nil
}

// Children

func toChild(r childRecord) (care.Child, error) {
	c := care.Child{ID: care.ChildID(r.ID), Name: r.Nom, Age: r.Age, PhotoURL: r.PhotoURL}
	if r.DateNaissance != "" {
		d, err := care.ParseDate(r.DateNaissance)
		if err != nil {
			return care.Child{}, errors.Wrapf(err, "%s %d", KeyChildren, r.ID)
		}
		c.BirthDate = d
	}
	return c, nil
}

func fromChild(c care.Child) childRecord {
	return childRecord{
		ID:            int64(c.ID),
		Nom:           c.Name,
		Age:           c.Age,
		PhotoURL:      c.PhotoURL,
		DateNaissance: c.BirthDate.String(),
	}
}

func (ls *lists) ListChildren(ctx context.Context) ([]care.Child, error) {
	records, err := load[childRecord](ctx, ls.kv, KeyChildren)
	if err != nil {
		return nil, err
	}
	children := make([]care.Child, len(records))
	for i, r := range records {
		if children[i], err = toChild(r); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (ls *lists) GetChild(ctx context.Context, id care.ChildID) (*care.Child, error) {
	records, err := load[childRecord](ctx, ls.kv, KeyChildren)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == int64(id) {
			c, err := toChild(r)
			if err != nil {
				return nil, err
			}
			return &c, nil
		}
	}
	return nil, nil
}

func (ls *lists) AddChild(ctx context.Context, c care.Child) (care.ChildID, error) {
	records, err := load[childRecord](ctx, ls.kv, KeyChildren)
	if err != nil {
		return 0, err
	}
	r := fromChild(c)
	r.ID = nextID(records, func(r childRecord) int64 { return r.ID })
	if err := save(ctx, ls.kv, KeyChildren, append(records, r)); err != nil {
		return 0, err
	}
	return care.ChildID(r.ID), nil
}

func (ls *lists) UpdateChild(ctx context.Context, c care.Child) error {
	records, err := load[childRecord](ctx, ls.kv, KeyChildren)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == int64(c.ID) {
			records[i] = fromChild(c)
			return save(ctx, ls.kv, KeyChildren, records)
		}
	}
	return nil
}

func (ls *lists) DeleteChild(ctx context.Context, id care.ChildID) error {
	records, err := load[childRecord](ctx, ls.kv, KeyChildren)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != int64(id) {
			kept = append(kept, r)
		}
	}
	if err := save(ctx, ls.kv, KeyChildren, kept); err != nil {
		return err
	}
	return ls.deleteCareDaysWhere(ctx, func(r careDayRecord) bool { return r.EnfantID == int64(id) })
}

// Caregivers

func toCaregiver(r caregiverRecord) care.Caregiver {
	return care.Caregiver{
		ID:       care.CaregiverID(r.ID),
		Name:     r.Nom,
		Location: r.Lieu,
		Phone:    r.Telephone,
		Role:     care.Role(r.Role),
		PhotoURL: r.PhotoURL,
		Color:    care.Color(r.Couleur),
	}
}

func fromCaregiver(cg care.Caregiver) caregiverRecord {
	role := cg.Role
	if role == "" {
		role = care.DefaultRole
	}
	return caregiverRecord{
		ID:        int64(cg.ID),
		Nom:       cg.Name,
		Lieu:      cg.Location,
		Telephone: cg.Phone,
		Role:      string(role),
		PhotoURL:  cg.PhotoURL,
		Couleur:   string(cg.Color),
	}
}

func (ls *lists) ListCaregivers(ctx context.Context) ([]care.Caregiver, error) {
	records, err := load[caregiverRecord](ctx, ls.kv, KeyCaregivers)
	if err != nil {
		return nil, err
	}
	caregivers := make([]care.Caregiver, len(records))
	for i, r := range records {
		caregivers[i] = toCaregiver(r)
	}
	sort.SliceStable(caregivers, func(i, j int) bool { return caregivers[i].Name < caregivers[j].Name })
	return caregivers, nil
}

func (ls *lists) GetCaregiver(ctx context.Context, id care.CaregiverID) (*care.Caregiver, error) {
	records, err := load[caregiverRecord](ctx, ls.kv, KeyCaregivers)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == int64(id) {
			cg := toCaregiver(r)
			return &cg, nil
		}
	}
	return nil, nil
}

func (ls *lists) AddCaregiver(ctx context.Context, cg care.Caregiver) (care.CaregiverID, error) {
	records, err := load[caregiverRecord](ctx, ls.kv, KeyCaregivers)
	if err != nil {
		return 0, err
	}
	r := fromCaregiver(cg)
	r.ID = nextID(records, func(r caregiverRecord) int64 { return r.ID })
	if err := save(ctx, ls.kv, KeyCaregivers, append(records, r)); err != nil {
		return 0, err
	}
	return care.CaregiverID(r.ID), nil
}

func (ls *lists) UpdateCaregiver(ctx context.Context, cg care.Caregiver) error {
	records, err := load[caregiverRecord](ctx, ls.kv, KeyCaregivers)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == int64(cg.ID) {
			records[i] = fromCaregiver(cg)
			return save(ctx, ls.kv, KeyCaregivers, records)
		}
	}
	return nil
}

func (ls *lists) DeleteCaregiver(ctx context.Context, id care.CaregiverID) error {
	records, err := load[caregiverRecord](ctx, ls.kv, KeyCaregivers)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != int64(id) {
			kept = append(kept, r)
		}
	}
	if err := save(ctx, ls.kv, KeyCaregivers, kept); err != nil {
		return err
	}
	return ls.deleteCareDaysWhere(ctx, func(r careDayRecord) bool { return r.GrandParentID == int64(id) })
}

// Care days

func toCareDay(r careDayRecord) (care.CareDay, error) {
	d, err := care.ParseDate(r.Date)
	if err != nil {
		return care.CareDay{}, errors.Wrapf(err, "%s %d", KeyCareDays, r.ID)
	}
	return care.CareDay{
		ID:          care.CareDayID(r.ID),
		ChildID:     care.ChildID(r.EnfantID),
		CaregiverID: care.CaregiverID(r.GrandParentID),
		Date:        d,
	}, nil
}

func fromCareDay(cd care.CareDay) careDayRecord {
	return careDayRecord{
		ID:            int64(cd.ID),
		EnfantID:      int64(cd.ChildID),
		GrandParentID: int64(cd.CaregiverID),
		Date:          cd.Date.String(),
	}
}

func (ls *lists) ListCareDays(ctx context.Context) ([]care.CareDay, error) {
	records, err := load[careDayRecord](ctx, ls.kv, KeyCareDays)
	if err != nil {
		return nil, err
	}
	days := make([]care.CareDay, len(records))
	for i, r := range records {
		if days[i], err = toCareDay(r); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		if !days[i].Date.Equal(days[j].Date) {
			return days[i].Date.After(days[j].Date)
		}
		return days[i].ID > days[j].ID
	})
	return days, nil
}

func (ls *lists) GetCareDay(ctx context.Context, id care.CareDayID) (*care.CareDay, error) {
	records, err := load[careDayRecord](ctx, ls.kv, KeyCareDays)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == int64(id) {
			cd, err := toCareDay(r)
			if err != nil {
				return nil, err
			}
			return &cd, nil
		}
	}
	return nil, nil
}

func (ls *lists) AddCareDay(ctx context.Context, cd care.CareDay) (care.CareDayID, error) {
	records, err := load[careDayRecord](ctx, ls.kv, KeyCareDays)
	if err != nil {
		return 0, err
	}
	r := fromCareDay(cd)
	r.ID = nextID(records, func(r careDayRecord) int64 { return r.ID })
	if err := save(ctx, ls.kv, KeyCareDays, append(records, r)); err != nil {
		return 0, err
	}
	return care.CareDayID(r.ID), nil
}

func (ls *lists) UpdateCareDay(ctx context.Context, cd care.CareDay) error {
	records, err := load[careDayRecord](ctx, ls.kv, KeyCareDays)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == int64(cd.ID) {
			records[i] = fromCareDay(cd)
			return save(ctx, ls.kv, KeyCareDays, records)
		}
	}
	return nil
}

func (ls *lists) DeleteCareDay(ctx context.Context, id care.CareDayID) error {
	return ls.deleteCareDaysWhere(ctx, func(r careDayRecord) bool { return r.ID == int64(id) })
}

func (ls *lists) deleteCareDaysWhere(ctx context.Context, match func(careDayRecord) bool) error {
	records, err := load[careDayRecord](ctx, ls.kv, KeyCareDays)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return save(ctx, ls.kv, KeyCareDays, kept)
}

// Reset writes the three lists back empty, care days first.
func (ls *lists) Reset(ctx context.Context) error {
	for _, k := range allKeys {
		if err := ls.kv.Set(ctx, k, []byte("[]")); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ care.TxStore = (*Local)(nil)
	_ care.Store   = (*lists)(nil)
)
