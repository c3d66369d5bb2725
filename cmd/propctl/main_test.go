package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dogmatiq/propertykit/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs propctl with the given arguments and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, exitSuccess},
		{"invalid argument", fault.InvalidArgument("bad"), exitUserError},
		{"not found", fault.ErrNotFound, exitUserError},
		{"too small", &fault.TooSmallError{Field: "value"}, exitUserError},
		{"internal", fault.Internal(errors.New("disk"), "unable to write"), exitSysError},
		{"unclassified", errors.New("boom"), exitSysError},
		{"out of memory", fault.ErrOutOfMemory, exitSysError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}

func TestCommands(t *testing.T) {
	for _, backend := range []string{"badger", "pebble", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			run := func(args ...string) (string, error) {
				return execute(t, append([]string{"--backend", backend, "--data-dir", dir}, args...)...)
			}

			_, err := run("set", "org.x.Temp", "/0/value", "0102", "--hex")
			require.NoError(t, err)

			_, err = run("set", "org.x.Temp", "/1/value", "hello")
			require.NoError(t, err)

			out, err := run("get", "org.x.Temp", "/0/value", "--hex")
			require.NoError(t, err)
			assert.Equal(t, "0102\n", out)

			out, err = run("contains", "org.x.Temp", "/1/value", "hello")
			require.NoError(t, err)
			assert.Equal(t, "true\n", out)

			out, err = run("contains", "org.x.Temp", "/1/value", "goodbye")
			require.NoError(t, err)
			assert.Equal(t, "false\n", out)

			out, err = run("list")
			require.NoError(t, err)
			assert.Equal(
				t,
				"org.x.Temp\t/0/value\t\"\\x01\\x02\"\n"+
					"org.x.Temp\t/1/value\t\"hello\"\n",
				out,
			)

			_, err = run("delete", "org.x.Temp", "/0/value")
			require.NoError(t, err)

			_, err = run("get", "org.x.Temp", "/0/value")
			require.ErrorIs(t, err, fault.ErrNotFound)
			assert.Equal(t, exitUserError, exitCode(err))

			_, err = run("clear")
			require.NoError(t, err)

			out, err = run("list")
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestCommands_errors(t *testing.T) {
	t.Run("it rejects an unknown backend", func(t *testing.T) {
		_, err := execute(t, "--backend", "floppy", "list")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("it rejects the wrong number of arguments", func(t *testing.T) {
		_, err := execute(t, "--backend", "memory", "get", "org.x.Temp")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})

	t.Run("it rejects invalid hex values", func(t *testing.T) {
		_, err := execute(t, "--backend", "memory", "set", "org.x.Temp", "/0/value", "zz", "--hex")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})

	t.Run("it rejects unknown flags", func(t *testing.T) {
		_, err := execute(t, "--backend", "memory", "list", "--frobnicate")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})

	t.Run("it requires interface definitions to list device-owned properties", func(t *testing.T) {
		_, err := execute(t, "--backend", "memory", "purge-list")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"match", []string{"/%{sensor_id}/value", "/sensor7/value"}, "true\n"},
		{"mismatch", []string{"/%{sensor_id}/value", "/sensor7/other"}, "false\n"},
		{"leading digit", []string{"/%{sensor_id}/value", "/7/value"}, "false\n"},
		{"custom grammar", []string{"/%{sensor_id}/value", "/7/value", "--grammar", "^[0-9]+$"}, "true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"validate"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("it rejects a malformed template", func(t *testing.T) {
		_, err := execute(t, "validate", "value", "/value")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})
}

func TestPurgeListCommand(t *testing.T) {
	dir := t.TempDir()
	interfaces := filepath.Join("..", "..", "schema", "testdata")

	run := func(args ...string) (string, error) {
		return execute(
			t,
			append(
				[]string{"--backend", "sqlite", "--data-dir", dir, "--interfaces", interfaces},
				args...,
			)...,
		)
	}

	_, err := run("set", "org.example.Sensors", "/s2/name", "kitchen")
	require.NoError(t, err)

	_, err = run("set", "org.example.Sensors", "/s1/name", "hall")
	require.NoError(t, err)

	_, err = run("set", "org.example.Settings", "/enabled", "01", "--hex")
	require.NoError(t, err)

	out, err := run("purge-list")
	require.NoError(t, err)
	assert.Equal(t, "org.example.Sensors/s1/name;org.example.Sensors/s2/name\n", out)

	t.Run("it rejects properties that match no mapping", func(t *testing.T) {
		_, err := run("set", "org.example.Sensors", "/s1/unknown", "x")
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("it reads the config file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "propctl.yaml")
		require.NoError(t, os.WriteFile(file, []byte(
			"backend: sqlite\n"+
				"namespace: devices\n"+
				"postgres:\n"+
				"  dsn: postgres://localhost/props\n",
		), 0o600))

		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--config", file}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Backend)
		assert.Equal(t, "devices", cfg.Namespace)
		assert.Equal(t, "postgres://localhost/props", cfg.Postgres.DSN)
		assert.Equal(t, "us-east-1", cfg.S3.Region)
	})

	t.Run("it prefers flags over the environment", func(t *testing.T) {
		t.Setenv("PROPCTL_BACKEND", "badger")
		t.Setenv("PROPCTL_DYNAMODB_TABLE", "props")

		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--namespace", "flagged"}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)

		assert.Equal(t, "badger", cfg.Backend)
		assert.Equal(t, "flagged", cfg.Namespace)
		assert.Equal(t, "props", cfg.DynamoDB.Table)
	})

	t.Run("it rejects a missing config file", func(t *testing.T) {
		cmd := newRootCommand()
		require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

		_, err := loadConfig(cmd)
		require.ErrorIs(t, err, fault.ErrInvalidArgument)
	})
}
