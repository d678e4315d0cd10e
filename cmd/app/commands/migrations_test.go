package commands

import (
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("invalid-driver", func(t *testing.T) {
		err := RunMigrations(logger, "../../../migrations", "invalid", "postgres://localhost")
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("missing-migrations-directory", func(t *testing.T) {
		err := RunMigrations(logger, t.TempDir(), "postgres", "postgres://localhost:1/voces")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "../../../migrations", "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}

func TestMigrationsDir(t *testing.T) {
	dir, err := migrationsDir("postgres")
	require.NoError(t, err)
	require.Equal(t, "postgresql", dir)

	dir, err = migrationsDir("mysql")
	require.NoError(t, err)
	require.Equal(t, "mysql", dir)

	_, err = migrationsDir("sqlite")
	require.Error(t, err)
}

func TestMySQLUsersIdentifiersUseBinaryCollation(t *testing.T) {
	sql, err := os.ReadFile("../../../migrations/mysql/000001_create_users_table.up.sql")
	require.NoError(t, err)

	for _, column := range []string{"username", "email"} {
		pattern := regexp.MustCompile(`(?m)^\s*` + column + ` VARCHAR\(\d+\) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL`)
		require.Regexp(t, pattern, string(sql), "%s must compare byte for byte", column)
	}
}
