// Package pgtest provides PostgreSQL databases for use in tests.
package pgtest

import (
	"database/sql"
	"os"
	"testing"

	"github.com/dogmatiq/sqltest"
)

// EnvVar is the environment variable that enables tests that require a
// PostgreSQL server. sqltest reads the connection parameters from its own
// environment variables.
const EnvVar = "PROPERTYKIT_TEST_POSTGRES"

// Setup creates and returns a new PostgreSQL database connection for use in a
// test. The database is automatically dropped when the test ends.
//
// The test is skipped unless [EnvVar] is set.
func Setup(tb testing.TB) *sql.DB {
	tb.Helper()

	if os.Getenv(EnvVar) == "" {
		tb.Skipf("set %s to run tests that require PostgreSQL", EnvVar)
	}

	database, err := sqltest.NewDatabase(tb.Context(), sqltest.PGXDriver, sqltest.PostgreSQL)
	if err != nil {
		tb.Fatal(err)
	}

	db, err := database.Open()
	if err != nil {
		tb.Fatal(err)
	}

	tb.Cleanup(func() {
		if err := db.Close(); err != nil {
			tb.Error(err)
		}

		if err := database.Close(); err != nil {
			tb.Error(err)
		}
	})

	return db
}
