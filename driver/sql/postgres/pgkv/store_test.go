package pgkv_test

import (
	"testing"

	"github.com/dogmatiq/propertykit/driver/sql/postgres/internal/pgtest"
	. "github.com/dogmatiq/propertykit/driver/sql/postgres/pgkv"
	"github.com/dogmatiq/propertykit/kv"
)

func TestStore(t *testing.T) {
	db := pgtest.Setup(t)

	if err := CreateSchema(t.Context(), db); err != nil {
		t.Fatal(err)
	}

	t.Run("it can create the schema more than once", func(t *testing.T) {
		if err := CreateSchema(t.Context(), db); err != nil {
			t.Fatal(err)
		}
	})

	kv.RunTests(t, &Store{DB: db})
}

func BenchmarkStore(b *testing.B) {
	db := pgtest.Setup(b)

	if err := CreateSchema(b.Context(), db); err != nil {
		b.Fatal(err)
	}

	kv.RunBenchmarks(b, &Store{DB: db})
}
