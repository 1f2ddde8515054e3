package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "postgresql scheme", dsn: "postgresql://u:p@db:5432/yatube?sslmode=disable", want: "pgx5://u:p@db:5432/yatube?sslmode=disable"},
		{name: "postgres scheme", dsn: "postgres://u:p@db/yatube", want: "pgx5://u:p@db/yatube"},
		{name: "already pgx5", dsn: "pgx5://u:p@db/yatube", want: "pgx5://u:p@db/yatube"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.dsn))
		})
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
