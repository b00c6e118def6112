package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore keeps values in the client_kv table, scoped by namespace so
// several profiles can share a database
type PostgresStore struct {
	db         *sql.DB
	namespace  string
	getStmt    *sql.Stmt
	upsertStmt *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewPostgresStore creates a PostgresStore with prepared statements.
// Returns an error if statement preparation fails.
func NewPostgresStore(db *sql.DB, namespace string) (_ *PostgresStore, err error) {
	s := &PostgresStore{db: db, namespace: namespace}
	defer func() {
		if err != nil {
			s.closeStatements()
		}
	}()

	s.getStmt, err = db.Prepare(`
		SELECT value FROM client_kv
		WHERE namespace = $1 AND key = $2
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.upsertStmt, err = db.Prepare(`
		INSERT INTO client_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	s.deleteStmt, err = db.Prepare(`DELETE FROM client_kv WHERE namespace = $1 AND key = $2`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return s, nil
}

// closeStatements closes whichever statements have been prepared so far
func (s *PostgresStore) closeStatements() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{s.getStmt, s.upsertStmt, s.deleteStmt} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

func (s *PostgresStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	defer func(start time.Time) { observe("postgres", "get", start, err) }(time.Now())

	err = s.getStmt.QueryRowContext(ctx, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { observe("postgres", "set", start, err) }(time.Now())

	if _, err = s.upsertStmt.ExecContext(ctx, s.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe("postgres", "delete", start, err) }(time.Now())

	if _, err = s.deleteStmt.ExecContext(ctx, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close releases the prepared statements. The *sql.DB stays open.
func (s *PostgresStore) Close() error {
	return s.closeStatements()
}
