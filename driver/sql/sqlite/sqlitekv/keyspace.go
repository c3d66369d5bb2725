package sqlitekv

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
		FROM propertykit_kv
		WHERE keyspace = ?
		AND key = ?`,
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
		`SELECT EXISTS (
			SELECT 1
			FROM propertykit_kv
			WHERE keyspace = ?
			AND key = ?
		)`,
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
			`DELETE FROM propertykit_kv
			WHERE keyspace = ?
			AND key = ?`,
			ks.name,
			k,
		)
	}

	return ks.exec(
		ctx,
		`INSERT INTO propertykit_kv (
			keyspace,
			key,
			value
		) VALUES (
			?, ?, ?
		) ON CONFLICT (keyspace, key) DO UPDATE SET
			value = excluded.value`,
		ks.name,
		k,
		v,
	)
}

// pair is a key/value pair read by Range.
type pair struct {
	k, v []byte
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	// SQLite serializes access to the database, so the result set is read in
	// full before fn is invoked, allowing fn to modify the keyspace.
	pairs, err := ks.pairs(ctx)
	if err != nil {
		return err
	}

	for _, p := range pairs {
		ok, err := fn(ctx, p.k, p.v)
		if !ok || err != nil {
			return err
		}
	}

	return nil
}

func (ks *keyspace) pairs(ctx context.Context) ([]pair, error) {
	rows, err := ks.db.QueryContext(
		ctx,
		`SELECT key, value
		FROM propertykit_kv
		WHERE keyspace = ?`,
		ks.name,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot query keyspace pairs: %w", err)
	}
	defer rows.Close()

	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.k, &p.v); err != nil {
			return nil, fmt.Errorf("cannot scan keyspace pair: %w", err)
		}
		pairs = append(pairs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot range over keyspace pairs: %w", err)
	}

	return pairs, nil
}

func (ks *keyspace) EraseAll(ctx context.Context) error {
	return ks.exec(
		ctx,
		`DELETE FROM propertykit_kv
		WHERE keyspace = ?`,
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
