package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/ajali":   "pgx5://u:p@localhost:5432/ajali",
		"postgresql://u:p@localhost:5432/ajali": "pgx5://u:p@localhost:5432/ajali",
		"pgx5://u:p@localhost:5432/ajali":       "pgx5://u:p@localhost:5432/ajali",
	}
	for in, want := range cases {
		assert.Equal(t, want, MigrationURL(in), in)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "files")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitMigrationGuardsHistory(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, "files/000001_init.up.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "CHECK (old_status <> new_status)")
	assert.Contains(t, sql, "BEFORE UPDATE OR DELETE ON status_history")
	assert.Contains(t, sql, "CONSTRAINT users_email_key UNIQUE (email)")
}

func TestInitDownDropsHistoryTrigger(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, "files/000001_init.down.sql")
	require.NoError(t, err)

	assert.Contains(t, string(body), "DROP TRIGGER IF EXISTS status_history_append_only ON status_history;")
}
