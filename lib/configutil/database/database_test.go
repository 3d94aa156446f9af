package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workbooks.db")
	db, err := Config{File: path}.OpenDB()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("create table t (x)")
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestOpenRequiresLocation(t *testing.T) {
	_, err := Config{}.OpenDB()
	require.Error(t, err)
}
