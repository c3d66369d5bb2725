package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/pebble/v2"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dogmatiq/propertykit/driver/aws/dynamokv"
	"github.com/dogmatiq/propertykit/driver/aws/s3kv"
	"github.com/dogmatiq/propertykit/driver/badger/badgerkv"
	"github.com/dogmatiq/propertykit/driver/memory/memorykv"
	"github.com/dogmatiq/propertykit/driver/pebble/pebblekv"
	"github.com/dogmatiq/propertykit/driver/sql/postgres/pgkv"
	"github.com/dogmatiq/propertykit/driver/sql/sqlite/sqlitekv"
	"github.com/dogmatiq/propertykit/fault"
	"github.com/dogmatiq/propertykit/kv"
	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" database/sql driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// backends is the set of backend names accepted by --backend.
var backends = []string{
	"memory",
	"badger",
	"pebble",
	"sqlite",
	"postgres",
	"dynamodb",
	"s3",
}

// openBackend opens the key/value store described by cfg. The returned
// function releases any resources held by the store.
func openBackend(
	ctx context.Context,
	cfg *Config,
	logger *logrus.Logger,
) (kv.Store, func() error, error) {
	nop := func() error { return nil }

	logger.
		WithField("backend", cfg.Backend).
		Debug("opening backend")

	switch cfg.Backend {
	case "memory":
		return &memorykv.Store{}, nop, nil

	case "badger":
		db, err := badger.Open(
			badger.
				DefaultOptions(filepath.Join(cfg.DataDir, "badger")).
				WithLogger(&badgerLogger{logger}),
		)
		if err != nil {
			return nil, nil, fault.Internal(err, "unable to open badger database")
		}
		return &badgerkv.Store{DB: db}, db.Close, nil

	case "pebble":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fault.Internal(err, "unable to create data directory")
		}

		db, err := pebble.Open(
			filepath.Join(cfg.DataDir, "pebble"),
			&pebble.Options{
				Logger: &pebbleLogger{logger},
			},
		)
		if err != nil {
			return nil, nil, fault.Internal(err, "unable to open pebble database")
		}
		return &pebblekv.Store{DB: db}, db.Close, nil

	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fault.Internal(err, "unable to create data directory")
		}

		db, err := sql.Open("sqlite", filepath.Join(cfg.DataDir, "properties.db"))
		if err != nil {
			return nil, nil, fault.Internal(err, "unable to open sqlite database")
		}
		db.SetMaxOpenConns(1)

		if err := sqlitekv.CreateSchema(ctx, db); err != nil {
			return nil, nil, errors.Join(
				fault.Internal(err, "unable to create sqlite schema"),
				db.Close(),
			)
		}
		return &sqlitekv.Store{DB: db}, db.Close, nil

	case "postgres":
		if cfg.Postgres.DSN == "" {
			return nil, nil, fault.InvalidArgument("the postgres backend requires postgres.dsn")
		}

		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fault.Internal(err, "unable to open postgres database")
		}

		if err := pgkv.CreateSchema(ctx, db); err != nil {
			return nil, nil, errors.Join(
				fault.Internal(err, "unable to create postgres schema"),
				db.Close(),
			)
		}
		return &pgkv.Store{DB: db}, db.Close, nil

	case "dynamodb":
		awsConfig, err := loadAWSConfig(ctx, cfg.DynamoDB.Region)
		if err != nil {
			return nil, nil, err
		}

		client := dynamodb.NewFromConfig(
			awsConfig,
			func(opts *dynamodb.Options) {
				if cfg.DynamoDB.Endpoint != "" {
					opts.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
				}
			},
		)
		return dynamokv.NewStore(client, cfg.DynamoDB.Table), nop, nil

	case "s3":
		awsConfig, err := loadAWSConfig(ctx, cfg.S3.Region)
		if err != nil {
			return nil, nil, err
		}

		client := s3.NewFromConfig(
			awsConfig,
			func(opts *s3.Options) {
				if cfg.S3.Endpoint != "" {
					opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
					opts.UsePathStyle = true
				}
			},
		)
		return s3kv.NewStore(client, cfg.S3.Bucket), nop, nil

	default:
		return nil, nil, fault.InvalidArgument(
			"unknown backend %q, expected one of %v",
			cfg.Backend,
			backends,
		)
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fault.Internal(err, "unable to load AWS configuration")
	}
	return cfg, nil
}
