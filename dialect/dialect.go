package dialect

import (
	"context"
	"fmt"
)

// Dialect names. These match the driver names registered with database/sql
// by modernc.org/sqlite, github.com/go-sql-driver/mysql and github.com/lib/pq.
const (
	SQLite   = "sqlite"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// Lookup resolves a user-facing driver name to a dialect constant.
// It accepts the names used by the Connect API: "sqlite3", "mysql",
// "mariadb" and "postgresql", along with the dialect constants themselves.
func Lookup(name string) (string, error) {
	switch name {
	case "sqlite3", SQLite:
		return SQLite, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgresql", Postgres:
		return Postgres, nil
	default:
		return "", fmt.Errorf("dialect: unknown database driver %q", name)
	}
}

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all database operations.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Type is a database-neutral column type used by the field system when
// rendering column definitions.
type Type uint8

// Column types supported by all three backends.
const (
	TypeInt Type = iota
	TypeBigInt
	TypeFloat
	TypeDouble
	TypeBool
	TypeString
	TypeBinary
	TypeDateTime
	TypeUUID
)

// An Adapter holds the syntax rules of one SQL backend.
type Adapter struct {
	name string
}

// Get returns the adapter for the given dialect constant.
func Get(dialect string) (*Adapter, error) {
	switch dialect {
	case SQLite, MySQL, Postgres:
		return &Adapter{name: dialect}, nil
	default:
		return nil, fmt.Errorf("dialect: no adapter for dialect %q", dialect)
	}
}

// Name returns the dialect constant this adapter serves.
func (a *Adapter) Name() string { return a.name }

// Placeholder returns the parameter placeholder for the i-th bound value
// (1-based). SQLite and MySQL use "?", PostgreSQL uses "$1", "$2", ...
func (a *Adapter) Placeholder(i int) string {
	if a.name == Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// Quote quotes an identifier: backticks for MySQL, double quotes otherwise.
func (a *Adapter) Quote(ident string) string {
	if a.name == MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// ColumnType renders the column type name for the given neutral type.
// A length <= 0 means the kind's default length applies.
func (a *Adapter) ColumnType(t Type, length int) string {
	switch t {
	case TypeInt:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		if a.name == Postgres {
			return "REAL"
		}
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE PRECISION"
	case TypeBool:
		if a.name == MySQL {
			return "TINYINT(1)"
		}
		return "BOOLEAN"
	case TypeString:
		if length <= 0 {
			length = 255
		}
		// MySQL rows cannot hold VARCHARs beyond the row-size limit.
		if a.name == MySQL && length > 21844 {
			return "TEXT"
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case TypeBinary:
		if a.name == Postgres {
			return "BYTEA"
		}
		return "BLOB"
	case TypeDateTime:
		switch a.name {
		case Postgres:
			return "TIMESTAMP"
		case MySQL:
			return "DATETIME(6)"
		default:
			// SQLite stores timestamps as fixed-width text.
			return "DATETIME"
		}
	case TypeUUID:
		if a.name == Postgres {
			return "UUID"
		}
		return "CHAR(36)"
	default:
		return ""
	}
}

// AutoIncrementPK renders the column definition of an implicit
// auto-increment integer primary key.
func (a *Adapter) AutoIncrementPK() string {
	switch a.name {
	case Postgres:
		return "BIGSERIAL PRIMARY KEY"
	case MySQL:
		return "BIGINT PRIMARY KEY AUTO_INCREMENT"
	default:
		// SQLite rowid alias.
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// ReturningID reports whether generated keys must be read back with a
// RETURNING clause. lib/pq does not implement LastInsertId.
func (a *Adapter) ReturningID() bool { return a.name == Postgres }

// CreateIndex renders index DDL. MariaDB, SQLite and PostgreSQL all accept
// IF NOT EXISTS on index creation, which keeps InitTable idempotent.
func (a *Adapter) CreateIndex(unique bool, name, table string, columns []string) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	cols := ""
	for i, c := range columns {
		if i > 0 {
			cols += ", "
		}
		cols += a.Quote(c)
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, a.Quote(name), a.Quote(table), cols)
}
