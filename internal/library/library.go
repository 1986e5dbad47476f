// Package library provides read-only access to the two persistent
// SQLite stores of spec 6.4: library.db (on-demand procedure bodies
// for names the registry doesn't yet know) and help.db (HELP text,
// resolved through an alias table first). The core persists nothing of
// its own; these databases are shipped alongside the interpreter and
// never written to by this process.
package library

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	_ "modernc.org/sqlite"
)

// Store opens both databases read-only and answers LIBRARY/HELP
// lookups.
type Store struct {
	libraryDB *sql.DB
	helpDB    *sql.DB
}

// Open opens libraryPath and helpPath concurrently -- the only place
// this module runs two operations at once outside the single
// evaluator goroutine, since it is bootstrap rather than user-code
// execution (spec 5). Either path may be empty, in which case that
// half of the Store answers every lookup with ok=false.
func Open(ctx context.Context, libraryPath, helpPath string) (*Store, error) {
	s := &Store{}
	g, ctx := errgroup.WithContext(ctx)
	if libraryPath != "" {
		g.Go(func() error {
			db, err := openReadOnly(ctx, libraryPath)
			if err != nil {
				return fmt.Errorf("opening library db: %w", err)
			}
			s.libraryDB = db
			return nil
		})
	}
	if helpPath != "" {
		g.Go(func() error {
			db, err := openReadOnly(ctx, helpPath)
			if err != nil {
				return fmt.Errorf("opening help db: %w", err)
			}
			s.helpDB = db
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func openReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close releases both underlying database handles.
func (s *Store) Close() error {
	var err error
	if s.libraryDB != nil {
		err = s.libraryDB.Close()
	}
	if s.helpDB != nil {
		if herr := s.helpDB.Close(); err == nil {
			err = herr
		}
	}
	return err
}

// Lookup returns the Logo source for command from LIBRARY, for the
// evaluator to load and run on demand when a name the registry doesn't
// know turns out to be a standard-library procedure.
func (s *Store) Lookup(command string) (code string, ok bool) {
	if s.libraryDB == nil {
		return "", false
	}
	row := s.libraryDB.QueryRow(`SELECT CODE FROM LIBRARY WHERE COMMAND = ?`, command)
	if err := row.Scan(&code); err != nil {
		return "", false
	}
	return code, true
}

// Help returns HELP text for command, resolving through ALIASES first
// per spec 6.4's schema.
func (s *Store) Help(command string) (text string, ok bool) {
	if s.helpDB == nil {
		return "", false
	}
	resolved := command
	row := s.helpDB.QueryRow(`SELECT COMMAND FROM ALIASES WHERE ALIAS = ?`, command)
	var alias string
	if err := row.Scan(&alias); err == nil {
		resolved = alias
	}
	row = s.helpDB.QueryRow(`SELECT DESCRIPTION FROM HELPTEXT WHERE COMMAND = ?`, resolved)
	if err := row.Scan(&text); err != nil {
		return "", false
	}
	return text, true
}
