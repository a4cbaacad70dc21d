// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/versacard/pkg/types"
)

// Store is a SQLite file holding one record set.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the contact store at path and creates the
// schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY,
			first_name TEXT,
			last_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS fields (
			contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			type TEXT,
			value TEXT NOT NULL,
			PRIMARY KEY (contact_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fields_kind ON fields(kind)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored contacts with rs in a single transaction.
func (s *Store) Save(ctx context.Context, rs types.RecordSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fields`); err != nil {
		return fmt.Errorf("clearing fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("clearing contacts: %w", err)
	}

	contactStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (id, first_name, last_name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing contact insert: %w", err)
	}
	defer contactStmt.Close()

	fieldStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fields (contact_id, position, kind, type, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing field insert: %w", err)
	}
	defer fieldStmt.Close()

	for _, c := range Contacts(rs) {
		if _, err := contactStmt.ExecContext(ctx, c.Index, c.FirstName, c.LastName); err != nil {
			return fmt.Errorf("inserting contact %d: %w", c.Index, err)
		}
		for pos, f := range c.Fields {
			if _, err := fieldStmt.ExecContext(ctx, c.Index, pos, string(f.Kind), f.Type, f.Value); err != nil {
				return fmt.Errorf("inserting field %d of contact %d: %w", pos, c.Index, err)
			}
		}
	}

	return tx.Commit()
}

// Load reads the stored record set in import order.
func (s *Store) Load(ctx context.Context) (types.RecordSet, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM contacts`).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting contacts: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	rs := make(types.RecordSet, count)
	rows, err := s.db.QueryContext(ctx,
		`SELECT contact_id, kind, type, value FROM fields ORDER BY contact_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int
			f    types.Field
			kind string
			typ  sql.NullString
		)
		if err := rows.Scan(&id, &kind, &typ, &f.Value); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		if id < 0 || id >= count {
			return nil, fmt.Errorf("field references unknown contact %d", id)
		}
		f.Kind = types.FieldKind(kind)
		f.Type = typ.String
		rs[id] = append(rs[id], f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fields: %w", err)
	}
	for i := range rs {
		if rs[i] == nil {
			rs[i] = types.Record{}
		}
	}
	return rs, nil
}

// Count returns the number of stored contacts and fields.
func (s *Store) Count(ctx context.Context) (contacts, fields int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM contacts), (SELECT count(*) FROM fields)`,
	).Scan(&contacts, &fields)
	if err != nil {
		return 0, 0, fmt.Errorf("counting rows: %w", err)
	}
	return contacts, fields, nil
}
