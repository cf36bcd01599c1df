/*
Package store keeps sponsor records in a SQLite database so a run can read
them without a sponsor file. The package only uses database/sql; callers pick
the driver (modernc.org/sqlite or github.com/mattn/go-sqlite3).
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CTAG07/sponsorsync/pkg/sponsors"
)

// SetupSchema creates the sponsors table. It is idempotent and safe to call
// on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaSponsors = `
CREATE TABLE IF NOT EXISTS sponsors (
    profile_url TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    avatar_url TEXT NOT NULL,
    weight REAL NOT NULL
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaSponsors); err != nil {
		return fmt.Errorf("could not create sponsors schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// ErrNotFound is returned by Delete when no sponsor has the given profile URL.
var ErrNotFound = errors.New("sponsor not found")

// Store wraps a database holding the sponsors table, with its statements
// prepared up front.
type Store struct {
	db         *sql.DB
	stmtUpsert *sql.Stmt
	stmtDelete *sql.Stmt
	stmtList   *sql.Stmt
	stmtCount  *sql.Stmt
}

const (
	queryUpsert = `INSERT INTO sponsors (profile_url, name, avatar_url, weight) VALUES (?, ?, ?, ?)
ON CONFLICT(profile_url) DO UPDATE SET name = excluded.name, avatar_url = excluded.avatar_url, weight = excluded.weight;`
	queryDelete = `DELETE FROM sponsors WHERE profile_url = ?;`
	queryList   = `SELECT name, profile_url, avatar_url, weight FROM sponsors ORDER BY profile_url;`
	queryCount  = `SELECT COUNT(*) FROM sponsors;`
)

// NewStore prepares the store's statements. SetupSchema must have been run.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	var err error
	if s.stmtUpsert, err = db.Prepare(queryUpsert); err != nil {
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}
	if s.stmtDelete, err = db.Prepare(queryDelete); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare delete: %w", err)
	}
	if s.stmtList, err = db.Prepare(queryList); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare list: %w", err)
	}
	if s.stmtCount, err = db.Prepare(queryCount); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare count: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements. It does not close the database.
func (s *Store) Close() {
	for _, stmt := range []*sql.Stmt{s.stmtUpsert, s.stmtDelete, s.stmtList, s.stmtCount} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// Upsert inserts rec or replaces the existing row with the same profile URL.
func (s *Store) Upsert(ctx context.Context, rec sponsors.Record) error {
	if _, err := s.stmtUpsert.ExecContext(ctx, rec.ProfileURL, rec.Name, rec.AvatarURL, rec.Weight); err != nil {
		return fmt.Errorf("upsert sponsor %q: %w", rec.ProfileURL, err)
	}
	return nil
}

// ReplaceAll swaps the whole table for recs in one transaction. Records are
// validated first so a bad list leaves the store untouched.
func (s *Store) ReplaceAll(ctx context.Context, recs []sponsors.Record) error {
	if errs := sponsors.ValidateAll(recs); len(errs) > 0 {
		return errors.Join(errs...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, `DELETE FROM sponsors;`); err != nil {
		return fmt.Errorf("clear sponsors: %w", err)
	}
	upsert := tx.StmtContext(ctx, s.stmtUpsert)
	for _, rec := range recs {
		if _, err = upsert.ExecContext(ctx, rec.ProfileURL, rec.Name, rec.AvatarURL, rec.Weight); err != nil {
			return fmt.Errorf("insert sponsor %q: %w", rec.ProfileURL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Delete removes the sponsor with the given profile URL.
func (s *Store) Delete(ctx context.Context, profileURL string) error {
	res, err := s.stmtDelete.ExecContext(ctx, profileURL)
	if err != nil {
		return fmt.Errorf("delete sponsor %q: %w", profileURL, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every stored sponsor ordered by profile URL.
func (s *Store) List(ctx context.Context) ([]sponsors.Record, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var recs []sponsors.Record
	for rows.Next() {
		var rec sponsors.Record
		if err = rows.Scan(&rec.Name, &rec.ProfileURL, &rec.AvatarURL, &rec.Weight); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the number of stored sponsors.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.stmtCount.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
