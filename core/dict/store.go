package dict

import (
	"database/sql"

	"github.com/FocuswithJustin/markalign/core/errors"
	"github.com/FocuswithJustin/markalign/core/sqlite"
)

// Store is a SQLite-backed dictionary. Schema: a single entries table with
// the name as primary key and an optional kind label.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS entries (
	name TEXT PRIMARY KEY,
	kind TEXT NOT NULL DEFAULT ''
)`

// OpenStore opens an existing dictionary store read-only.
func OpenStore(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	return &Store{db: db}, nil
}

// CreateStore opens (creating if necessary) a writable dictionary store
// and ensures its schema exists.
func CreateStore(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing dictionary store")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts entries in a single transaction.
func (s *Store) Put(entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO entries (name, kind) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(e.Name, e.Kind); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "inserting entry %q", e.Name)
		}
	}
	return tx.Commit()
}

// Load reads every entry into a Dictionary.
func (s *Store) Load() (*Dictionary, error) {
	rows, err := s.db.Query(`SELECT name, kind FROM entries ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying entries")
	}
	defer rows.Close()

	d := New()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Kind); err != nil {
			return nil, errors.Wrap(err, "scanning entry")
		}
		if err := d.Add(e); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading entries")
	}
	return d, nil
}
