package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/litemigrate/internal/backend"
)

// SQLiteDescriptor returns a descriptor for a fresh database file inside the
// test's temp directory.
func SQLiteDescriptor(t *testing.T) backend.Descriptor {
	t.Helper()
	return backend.Descriptor{
		Kind: backend.KindSQLite,
		Path: filepath.Join(t.TempDir(), "test.db"),
	}
}

// SQLiteConnector returns a connector for a fresh temp-dir database.
func SQLiteConnector(t *testing.T) *backend.Connector {
	t.Helper()
	c, err := backend.New(SQLiteDescriptor(t))
	if err != nil {
		t.Fatalf("backend.New() failed: %v", err)
	}
	return c
}
