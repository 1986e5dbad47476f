package library

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func seedLibraryDB(t *testing.T, path string) {
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE LIBRARY (COMMAND TEXT PRIMARY KEY, CODE TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO LIBRARY (COMMAND, CODE) VALUES (?, ?)`, "SQUARE", "to square :n\noutput :n * :n\nend")
	require.NoError(t, err)
}

func seedHelpDB(t *testing.T, path string) {
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE ALIASES (ALIAS TEXT PRIMARY KEY, COMMAND TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE HELPTEXT (COMMAND TEXT PRIMARY KEY, DESCRIPTION TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO HELPTEXT (COMMAND, DESCRIPTION) VALUES (?, ?)`, "FORWARD", "moves the turtle forward")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ALIASES (ALIAS, COMMAND) VALUES (?, ?)`, "FD", "FORWARD")
	require.NoError(t, err)
}

func TestLookupAndHelpResolveThroughAliases(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "library.db")
	helpPath := filepath.Join(dir, "help.db")
	seedLibraryDB(t, libPath)
	seedHelpDB(t, helpPath)

	s, err := Open(context.Background(), libPath, helpPath)
	require.NoError(t, err)
	defer s.Close()

	code, ok := s.Lookup("SQUARE")
	require.True(t, ok)
	require.Contains(t, code, "output :n * :n")

	_, ok = s.Lookup("NOSUCHPROC")
	require.False(t, ok)

	text, ok := s.Help("FD")
	require.True(t, ok)
	require.Equal(t, "moves the turtle forward", text)

	text, ok = s.Help("FORWARD")
	require.True(t, ok)
	require.Equal(t, "moves the turtle forward", text)
}

func TestOpenWithEmptyPathsAnswersNothing(t *testing.T) {
	s, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.Lookup("ANYTHING")
	require.False(t, ok)
	_, ok = s.Help("ANYTHING")
	require.False(t, ok)
}

func TestOpenMissingFileErrors(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(os.TempDir(), "nonexistent-dir-xyz", "library.db"), "")
	require.Error(t, err)
}
