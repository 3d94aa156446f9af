package testutil

import (
	"database/sql"
	"testing"

	"covidexit/lib/configutil/database"
)

// OpenDB opens an in-memory sqlite database that is closed when the test
// ends. Schema, when not empty, is executed on it.
func OpenDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	db, err := database.Config{File: ":memory:"}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			t.Fatal(err)
		}
	}
	return db
}
