package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLookup tests driver-name resolution.
func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"sqlite3", "sqlite3", SQLite, false},
		{"sqlite_constant", SQLite, SQLite, false},
		{"mysql", "mysql", MySQL, false},
		{"mariadb", "mariadb", MySQL, false},
		{"postgresql", "postgresql", Postgres, false},
		{"postgres_constant", Postgres, Postgres, false},
		{"unknown", "oracle", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestGet tests adapter resolution.
func TestGet(t *testing.T) {
	for _, d := range []string{SQLite, MySQL, Postgres} {
		t.Run(d, func(t *testing.T) {
			a, err := Get(d)
			require.NoError(t, err)
			assert.Equal(t, d, a.Name())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := Get("oracle")
		require.Error(t, err)
	})
}

// TestPlaceholder tests parameter placeholder rendering.
func TestPlaceholder(t *testing.T) {
	sqlite, _ := Get(SQLite)
	mysql, _ := Get(MySQL)
	postgres, _ := Get(Postgres)

	assert.Equal(t, "?", sqlite.Placeholder(1))
	assert.Equal(t, "?", sqlite.Placeholder(7))
	assert.Equal(t, "?", mysql.Placeholder(3))
	assert.Equal(t, "$1", postgres.Placeholder(1))
	assert.Equal(t, "$12", postgres.Placeholder(12))
}

// TestQuote tests identifier quoting.
func TestQuote(t *testing.T) {
	sqlite, _ := Get(SQLite)
	mysql, _ := Get(MySQL)
	postgres, _ := Get(Postgres)

	assert.Equal(t, `"users"`, sqlite.Quote("users"))
	assert.Equal(t, "`users`", mysql.Quote("users"))
	assert.Equal(t, `"users"`, postgres.Quote("users"))
}

// TestColumnType tests column-type rendering per dialect.
func TestColumnType(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		typ     Type
		length  int
		want    string
	}{
		{"int", SQLite, TypeInt, 0, "INTEGER"},
		{"bigint", Postgres, TypeBigInt, 0, "BIGINT"},
		{"float_sqlite", SQLite, TypeFloat, 0, "FLOAT"},
		{"float_postgres", Postgres, TypeFloat, 0, "REAL"},
		{"double", MySQL, TypeDouble, 0, "DOUBLE PRECISION"},
		{"bool_sqlite", SQLite, TypeBool, 0, "BOOLEAN"},
		{"bool_mysql", MySQL, TypeBool, 0, "TINYINT(1)"},
		{"string_default_length", SQLite, TypeString, 0, "VARCHAR(255)"},
		{"string_custom_length", Postgres, TypeString, 32, "VARCHAR(32)"},
		{"string_mysql_overflow", MySQL, TypeString, 65535, "TEXT"},
		{"binary_sqlite", SQLite, TypeBinary, 0, "BLOB"},
		{"binary_postgres", Postgres, TypeBinary, 0, "BYTEA"},
		{"datetime_sqlite", SQLite, TypeDateTime, 0, "DATETIME"},
		{"datetime_mysql", MySQL, TypeDateTime, 0, "DATETIME(6)"},
		{"datetime_postgres", Postgres, TypeDateTime, 0, "TIMESTAMP"},
		{"uuid_postgres", Postgres, TypeUUID, 0, "UUID"},
		{"uuid_sqlite", SQLite, TypeUUID, 0, "CHAR(36)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Get(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.ColumnType(tt.typ, tt.length))
		})
	}
}

// TestAutoIncrementPK tests the implicit key column definition.
func TestAutoIncrementPK(t *testing.T) {
	sqlite, _ := Get(SQLite)
	mysql, _ := Get(MySQL)
	postgres, _ := Get(Postgres)

	assert.Equal(t, "INTEGER PRIMARY KEY AUTOINCREMENT", sqlite.AutoIncrementPK())
	assert.Equal(t, "BIGINT PRIMARY KEY AUTO_INCREMENT", mysql.AutoIncrementPK())
	assert.Equal(t, "BIGSERIAL PRIMARY KEY", postgres.AutoIncrementPK())
}

// TestReturningID tests generated-key readback selection.
func TestReturningID(t *testing.T) {
	sqlite, _ := Get(SQLite)
	mysql, _ := Get(MySQL)
	postgres, _ := Get(Postgres)

	assert.False(t, sqlite.ReturningID())
	assert.False(t, mysql.ReturningID())
	assert.True(t, postgres.ReturningID())
}

// TestCreateIndex tests index DDL rendering.
func TestCreateIndex(t *testing.T) {
	sqlite, _ := Get(SQLite)
	mysql, _ := Get(MySQL)

	assert.Equal(t,
		`CREATE INDEX IF NOT EXISTS "users_name_idx" ON "users" ("name")`,
		sqlite.CreateIndex(false, "users_name_idx", "users", []string{"name"}),
	)
	assert.Equal(t,
		"CREATE UNIQUE INDEX IF NOT EXISTS `users_email_idx` ON `users` (`email`, `name`)",
		mysql.CreateIndex(true, "users_email_idx", "users", []string{"email", "name"}),
	)
}
