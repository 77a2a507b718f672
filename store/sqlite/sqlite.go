/*
Package sqlite provides a SQLite-backed implementation of care.TxStore.

PURPOSE:
  The database backend. Chosen when a database file is configured; the
  local key-value store (care/store) is the fallback.

KEY TABLES:
  enfants:        children (nom, age, photo_url, date_naissance)
  grands_parents: caregivers (nom, lieu, telephone, role, photo_url, couleur)
  gardes:         care days (enfant_id, grand_parent_id, date)

  Dates are ISO "YYYY-MM-DD" strings. Identifiers are AUTOINCREMENT.

REFERENCES:
  gardes references enfants and grands_parents with ON DELETE CASCADE and
  foreign keys are switched on, so a care day cannot point at a missing
  profile and deleting a profile removes its care days.

CONNECTION:
  A single pooled connection, opened once and shared by every caller for
  the process lifetime. This also keeps ":memory:" databases consistent
  across calls. Access is serialized with a sync.RWMutex; WithTx holds the
  write lock for the whole transaction.

USAGE:
  store, err := sqlite.New("./gardeparents.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - care/store.go: Interface definitions
  - care/store/local.go: Key-value fallback
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bantra/gardeparents/care"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements care.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Backend() care.Backend { return care.BackendSQLite }

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS enfants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom TEXT NOT NULL,
		age INTEGER NOT NULL,
		photo_url TEXT,
		date_naissance TEXT
	);

	CREATE TABLE IF NOT EXISTS grands_parents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nom TEXT NOT NULL,
		lieu TEXT NOT NULL,
		telephone TEXT,
		role TEXT NOT NULL CHECK (role IN ('grand-mere', 'grand-pere')),
		photo_url TEXT,
		couleur TEXT
	);

	CREATE TABLE IF NOT EXISTS gardes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		enfant_id INTEGER NOT NULL,
		grand_parent_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		FOREIGN KEY (enfant_id) REFERENCES enfants(id) ON DELETE CASCADE,
		FOREIGN KEY (grand_parent_id) REFERENCES grands_parents(id) ON DELETE CASCADE
	);

	-- Conflict scans and history are per pair and per date
	CREATE INDEX IF NOT EXISTS idx_gardes_pair_date
		ON gardes(enfant_id, grand_parent_id, date);
	CREATE INDEX IF NOT EXISTS idx_gardes_date
		ON gardes(date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHILDREN
// =============================================================================

const childColumns = "id, nom, age, photo_url, date_naissance"

func (s *Store) ListChildren(ctx context.Context) ([]care.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listChildren(ctx, s.db)
}

func (s *Store) GetChild(ctx context.Context, id care.ChildID) (*care.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getChild(ctx, s.db, id)
}

func (s *Store) AddChild(ctx context.Context, c care.Child) (care.ChildID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addChild(ctx, s.db, c)
}

func (s *Store) UpdateChild(ctx context.Context, c care.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateChild(ctx, s.db, c)
}

// DeleteChild removes the child and its care days in one transaction.
func (s *Store) DeleteChild(ctx context.Context, id care.ChildID) error {
	return s.WithTx(ctx, func(tx care.Store) error { return tx.DeleteChild(ctx, id) })
}

func listChildren(ctx context.Context, q querier) ([]care.Child, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+childColumns+" FROM enfants ORDER BY nom, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []care.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

func getChild(ctx context.Context, q querier, id care.ChildID) (*care.Child, error) {
	c, err := scanChild(q.QueryRowContext(ctx, "SELECT "+childColumns+" FROM enfants WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func addChild(ctx context.Context, q querier, c care.Child) (care.ChildID, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO enfants (nom, age, photo_url, date_naissance) VALUES (?, ?, ?, ?)",
		c.Name, c.Age, nullString(c.PhotoURL), nullString(c.BirthDate.String()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert child: %w", err)
	}
	id, err := res.LastInsertId()
	return care.ChildID(id), err
}

func updateChild(ctx context.Context, q querier, c care.Child) error {
	_, err := q.ExecContext(ctx,
		"UPDATE enfants SET nom = ?, age = ?, photo_url = ?, date_naissance = ? WHERE id = ?",
		c.Name, c.Age, nullString(c.PhotoURL), nullString(c.BirthDate.String()), c.ID,
	)
	return err
}

func deleteChild(ctx context.Context, q querier, id care.ChildID) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM gardes WHERE enfant_id = ?", id); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, "DELETE FROM enfants WHERE id = ?", id)
	return err
}

func scanChild(row interface{ Scan(...any) error }) (care.Child, error) {
	var c care.Child
	var photo, birth sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Age, &photo, &birth); err != nil {
		return care.Child{}, err
	}
	c.PhotoURL = photo.String
	if birth.Valid && birth.String != "" {
		d, err := care.ParseDate(birth.String)
		if err != nil {
			return care.Child{}, err
		}
		c.BirthDate = d
	}
	return c, nil
}

// =============================================================================
// CAREGIVERS
// =============================================================================

const caregiverColumns = "id, nom, lieu, telephone, role, photo_url, couleur"

func (s *Store) ListCaregivers(ctx context.Context) ([]care.Caregiver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCaregivers(ctx, s.db)
}

func (s *Store) GetCaregiver(ctx context.Context, id care.CaregiverID) (*care.Caregiver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCaregiver(ctx, s.db, id)
}

func (s *Store) AddCaregiver(ctx context.Context, cg care.Caregiver) (care.CaregiverID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addCaregiver(ctx, s.db, cg)
}

func (s *Store) UpdateCaregiver(ctx context.Context, cg care.Caregiver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCaregiver(ctx, s.db, cg)
}

// DeleteCaregiver removes the caregiver and its care days in one transaction.
func (s *Store) DeleteCaregiver(ctx context.Context, id care.CaregiverID) error {
	return s.WithTx(ctx, func(tx care.Store) error { return tx.DeleteCaregiver(ctx, id) })
}

func listCaregivers(ctx context.Context, q querier) ([]care.Caregiver, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+caregiverColumns+" FROM grands_parents ORDER BY nom, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caregivers []care.Caregiver
	for rows.Next() {
		cg, err := scanCaregiver(rows)
		if err != nil {
			return nil, err
		}
		caregivers = append(caregivers, cg)
	}
	return caregivers, rows.Err()
}

func getCaregiver(ctx context.Context, q querier, id care.CaregiverID) (*care.Caregiver, error) {
	cg, err := scanCaregiver(q.QueryRowContext(ctx, "SELECT "+caregiverColumns+" FROM grands_parents WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cg, nil
}

func addCaregiver(ctx context.Context, q querier, cg care.Caregiver) (care.CaregiverID, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO grands_parents (nom, lieu, telephone, role, photo_url, couleur)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cg.Name, cg.Location, nullString(cg.Phone), roleOrDefault(cg.Role),
		nullString(cg.PhotoURL), nullString(string(cg.Color)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert caregiver: %w", err)
	}
	id, err := res.LastInsertId()
	return care.CaregiverID(id), err
}

func updateCaregiver(ctx context.Context, q querier, cg care.Caregiver) error {
	_, err := q.ExecContext(ctx,
		`UPDATE grands_parents
		 SET nom = ?, lieu = ?, telephone = ?, role = ?, photo_url = ?, couleur = ?
		 WHERE id = ?`,
		cg.Name, cg.Location, nullString(cg.Phone), roleOrDefault(cg.Role),
		nullString(cg.PhotoURL), nullString(string(cg.Color)), cg.ID,
	)
	return err
}

func deleteCaregiver(ctx context.Context, q querier, id care.CaregiverID) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM gardes WHERE grand_parent_id = ?", id); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, "DELETE FROM grands_parents WHERE id = ?", id)
	return err
}

func scanCaregiver(row interface{ Scan(...any) error }) (care.Caregiver, error) {
	var cg care.Caregiver
	var phone, photo, color sql.NullString
	var role string
	if err := row.Scan(&cg.ID, &cg.Name, &cg.Location, &phone, &role, &photo, &color); err != nil {
		return care.Caregiver{}, err
	}
	cg.Phone = phone.String
	cg.Role = care.Role(role)
	cg.PhotoURL = photo.String
	cg.Color = care.Color(color.String)
	return cg, nil
}

func roleOrDefault(r care.Role) string {
	if r == "" {
		return string(care.DefaultRole)
	}
	return string(r)
}

// =============================================================================
// CARE DAYS
// =============================================================================

const careDayColumns = "id, enfant_id, grand_parent_id, date"

func (s *Store) ListCareDays(ctx context.Context) ([]care.CareDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCareDays(ctx, s.db)
}

func (s *Store) GetCareDay(ctx context.Context, id care.CareDayID) (*care.CareDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCareDay(ctx, s.db, id)
}

func (s *Store) AddCareDay(ctx context.Context, cd care.CareDay) (care.CareDayID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addCareDay(ctx, s.db, cd)
}

func (s *Store) UpdateCareDay(ctx context.Context, cd care.CareDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCareDay(ctx, s.db, cd)
}

func (s *Store) DeleteCareDay(ctx context.Context, id care.CareDayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM gardes WHERE id = ?", id)
	return err
}

func listCareDays(ctx context.Context, q querier) ([]care.CareDay, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+careDayColumns+" FROM gardes ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []care.CareDay
	for rows.Next() {
		cd, err := scanCareDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, cd)
	}
	return days, rows.Err()
}

func getCareDay(ctx context.Context, q querier, id care.CareDayID) (*care.CareDay, error) {
	cd, err := scanCareDay(q.QueryRowContext(ctx, "SELECT "+careDayColumns+" FROM gardes WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cd, nil
}

func addCareDay(ctx context.Context, q querier, cd care.CareDay) (care.CareDayID, error) {
	res, err := q.ExecContext(ctx,
		"INSERT INTO gardes (enfant_id, grand_parent_id, date) VALUES (?, ?, ?)",
		cd.ChildID, cd.CaregiverID, cd.Date.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert care day %s: %w", cd.Date, err)
	}
	id, err := res.LastInsertId()
	return care.CareDayID(id), err
}

func updateCareDay(ctx context.Context, q querier, cd care.CareDay) error {
	_, err := q.ExecContext(ctx,
		"UPDATE gardes SET enfant_id = ?, grand_parent_id = ?, date = ? WHERE id = ?",
		cd.ChildID, cd.CaregiverID, cd.Date.String(), cd.ID,
	)
	return err
}

func scanCareDay(row interface{ Scan(...any) error }) (care.CareDay, error) {
	var cd care.CareDay
	var date string
	if err := row.Scan(&cd.ID, &cd.ChildID, &cd.CaregiverID, &date); err != nil {
		return care.CareDay{}, err
	}
	d, err := care.ParseDate(date)
	if err != nil {
		return care.CareDay{}, err
	}
	cd.Date = d
	return cd, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data, care days first so no reference dangles.
func (s *Store) Reset(ctx context.Context) error {
	return s.WithTx(ctx, func(tx care.Store) error { return tx.Reset(ctx) })
}

func reset(ctx context.Context, q querier) error {
	for _, table := range []string{"gardes", "enfants", "grands_parents"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// =============================================================================
// TRANSACTIONAL STORE (care.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store care.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation inside one *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) ListChildren(ctx context.Context) ([]care.Child, error) {
	return listChildren(ctx, ts.tx)
}

func (ts *txStore) GetChild(ctx context.Context, id care.ChildID) (*care.Child, error) {
	return getChild(ctx, ts.tx, id)
}

func (ts *txStore) AddChild(ctx context.Context, c care.Child) (care.ChildID, error) {
	return addChild(ctx, ts.tx, c)
}

func (ts *txStore) UpdateChild(ctx context.Context, c care.Child) error {
	return updateChild(ctx, ts.tx, c)
}

func (ts *txStore) DeleteChild(ctx context.Context, id care.ChildID) error {
	return deleteChild(ctx, ts.tx, id)
}

func (ts *txStore) ListCaregivers(ctx context.Context) ([]care.Caregiver, error) {
	return listCaregivers(ctx, ts.tx)
}

func (ts *txStore) GetCaregiver(ctx context.Context, id care.CaregiverID) (*care.Caregiver, error) {
	return getCaregiver(ctx, ts.tx, id)
}

func (ts *txStore) AddCaregiver(ctx context.Context, cg care.Caregiver) (care.CaregiverID, error) {
	return addCaregiver(ctx, ts.tx, cg)
}

func (ts *txStore) UpdateCaregiver(ctx context.Context, cg care.Caregiver) error {
	return updateCaregiver(ctx, ts.tx, cg)
}

func (ts *txStore) DeleteCaregiver(ctx context.Context, id care.CaregiverID) error {
	return deleteCaregiver(ctx, ts.tx, id)
}

func (ts *txStore) ListCareDays(ctx context.Context) ([]care.CareDay, error) {
	return listCareDays(ctx, ts.tx)
}

func (ts *txStore) GetCareDay(ctx context.Context, id care.CareDayID) (*care.CareDay, error) {
	return getCareDay(ctx, ts.tx, id)
}

func (ts *txStore) AddCareDay(ctx context.Context, cd care.CareDay) (care.CareDayID, error) {
	return addCareDay(ctx, ts.tx, cd)
}

func (ts *txStore) UpdateCareDay(ctx context.Context, cd care.CareDay) error {
	return updateCareDay(ctx, ts.tx, cd)
}

func (ts *txStore) DeleteCareDay(ctx context.Context, id care.CareDayID) error {
	_, err := ts.tx.ExecContext(ctx, "DELETE FROM gardes WHERE id = ?", id)
	return err
}

func (ts *txStore) Reset(ctx context.Context) error {
	return reset(ctx, ts.tx)
}

var (
	_ care.TxStore = (*Store)(nil)
	_ care.Store   = (*txStore)(nil)
)
