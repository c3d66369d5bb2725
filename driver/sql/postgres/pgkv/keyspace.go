package pgkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dogmatiq/propertykit/kv"
)

type keyspace struct {
	name string
	db   *sql.DB
}

func (ks *keyspace) Name() string {
	return ks.name
}

func (ks *keyspace) Get(ctx context.Context, k []byte) (v []byte, err error) {
	row := ks.db.QueryRowContext(
		ctx,
		`SELECT value
		FROM propertykit.kv
		WHERE keyspace = $1
		AND key = $2`,
		ks.name,
		k,
	)

	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot scan keyspace pair: %w", err)
	}

	return v, nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	row := ks.db.QueryRowContext(
		ctx,
		`SELECT COUNT(key) != 0
		FROM propertykit.kv
		WHERE keyspace = $1
		AND key = $2`,
		ks.name,
		k,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("cannot scan keyspace pair: %w", err)
	}

	return exists, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	if len(v) == 0 {
		return ks.exec(
			ctx,
			`DELETE FROM propertykit.kv
			WHERE keyspace = $1
			AND key = $2`,
			ks.name,
			k,
		)
	}

	return ks.exec(
		ctx,
		`INSERT INTO propertykit.kv (
			keyspace,
			key,
			value
		) VALUES (
			$1, $2, $3
		) ON CONFLICT (keyspace, key) DO UPDATE SET
			value = excluded.value`,
		ks.name,
		k,
		v,
	)
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	rows, err := ks.db.QueryContext(
		ctx,
		`SELECT key, value
		FROM propertykit.kv
		WHERE keyspace = $1`,
		ks.name,
	)
	if err != nil {
		return fmt.Errorf("cannot query keyspace pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("cannot scan keyspace pair: %w", err)
		}

		ok, err := fn(ctx, k, v)
		if !ok || err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("cannot range over keyspace pairs: %w", err)
	}

	return nil
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	return ks.exec(
		ctx,
		`DELETE FROM propertykit.kv
		WHERE keyspace = $1`,
		ks.name,
	)
}

func (ks *keyspace) Close() error {
	return nil
}

func (ks *keyspace) exec(ctx context.Context, query string, args ...any) error {
	if _, err := ks.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("cannot execute query: %w", err)
	}
	return nil
}
