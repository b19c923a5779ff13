// Package store persists the entity store state in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store is the SQLite-backed load/save contract for a model.State.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the saved state. Fields never saved take their value from
// defaults; collections default to empty.
func (s *Store) Load(defaults model.State) (model.State, error) {
	st := model.State{
		Year:           defaults.Year,
		InitialBalance: defaults.InitialBalance,
		MonthlyRules:   []model.MonthlyRule{},
		PlannedEvents:  []model.PlannedEvent{},
		RealMovements:  []model.RealMovement{},
	}

	settings, err := s.settings()
	if err != nil {
		return model.State{}, err
	}
	if v, ok := settings[keyYear]; ok {
		year, err := strconv.Atoi(v)
		if err != nil {
			return model.State{}, fmt.Errorf("reading year %q: %w", v, err)
		}
		st.Year = year
	}
	if v, ok := settings[keyInitialBalance]; ok {
		b, err := decimal.NewFromString(v)
		if err != nil {
			return model.State{}, fmt.Errorf("reading initial balance %q: %w", v, err)
		}
		st.InitialBalance = b
	}

	if st.MonthlyRules, err = s.loadRules(); err != nil {
		return model.State{}, fmt.Errorf("loading monthly rules: %w", err)
	}
	if st.PlannedEvents, err = s.loadEvents(); err != nil {
		return model.State{}, fmt.Errorf("loading planned events: %w", err)
	}
	if st.RealMovements, err = s.loadMovements(); err != nil {
		return model.State{}, fmt.Errorf("loading real movements: %w", err)
	}
	return st, nil
}

// Save replaces everything stored with st in one transaction and bumps the
// revision. Saving the same state twice leaves the same rows.
func (s *Store) Save(st model.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"monthly_rules", "planned_events", "real_movements"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, r := range st.MonthlyRules {
		_, err = tx.Exec(`INSERT INTO monthly_rules (position, title, amount, day_of_month, active_from)
			VALUES (?, ?, ?, ?, ?)`,
			i, r.Title, r.Amount.String(), r.DayOfMonth, r.ActiveFrom.String())
		if err != nil {
			return fmt.Errorf("saving monthly rule %d: %w", i+1, err)
		}
	}
	for i, e := range st.PlannedEvents {
		_, err = tx.Exec(`INSERT INTO planned_events (position, title, amount, date, description)
			VALUES (?, ?, ?, ?, ?)`,
			i, e.Title, e.Amount.String(), e.Date.String(), e.Description)
		if err != nil {
			return fmt.Errorf("saving planned event %d: %w", i+1, err)
		}
	}
	for i, m := range st.RealMovements {
		_, err = tx.Exec(`INSERT INTO real_movements (position, title, amount, date, note)
			VALUES (?, ?, ?, ?, ?)`,
			i, m.Title, m.Amount.String(), m.Date.String(), m.Note)
		if err != nil {
			return fmt.Errorf("saving real movement %d: %w", i+1, err)
		}
	}

	upsert := `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, keyYear, strconv.Itoa(st.Year)); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, keyInitialBalance, st.InitialBalance.String()); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, keySavedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO settings (key, value) VALUES (?, '1')
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)`, keyRevision)
	if err != nil {
		return fmt.Errorf("bumping revision: %w", err)
	}

	return tx.Commit()
}

// Revision returns how many times a state has been saved, 0 if never.
func (s *Store) Revision() (int64, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", keyRevision).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// SavedAt returns the time of the last save, zero if never saved.
func (s *Store) SavedAt() (time.Time, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", keySavedAt).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

func (s *Store) settings() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

func (s *Store) loadRules() ([]model.MonthlyRule, error) {
	rows, err := s.db.Query(`SELECT title, amount, day_of_month, active_from
		FROM monthly_rules ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rules := []model.MonthlyRule{}
	for rows.Next() {
		var r model.MonthlyRule
		var amount, activeFrom string
		if err := rows.Scan(&r.Title, &amount, &r.DayOfMonth, &activeFrom); err != nil {
			return nil, err
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("amount %q: %w", amount, err)
		}
		if r.ActiveFrom, err = model.ParseDate(activeFrom); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (s *Store) loadEvents() ([]model.PlannedEvent, error) {
	rows, err := s.db.Query(`SELECT title, amount, date, description
		FROM planned_events ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	events := []model.PlannedEvent{}
	for rows.Next() {
		var e model.PlannedEvent
		var amount, date string
		if err := rows.Scan(&e.Title, &amount, &date, &e.Description); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("amount %q: %w", amount, err)
		}
		if e.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) loadMovements() ([]model.RealMovement, error) {
	rows, err := s.db.Query(`SELECT title, amount, date, note
		FROM real_movements ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	movements := []model.RealMovement{}
	for rows.Next() {
		var m model.RealMovement
		var amount, date string
		if err := rows.Scan(&m.Title, &amount, &date, &m.Note); err != nil {
			return nil, err
		}
		if m.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("amount %q: %w", amount, err)
		}
		if m.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
