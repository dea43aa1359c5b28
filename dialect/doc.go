// Package dialect provides database dialect abstraction for Cheetah ORM.
//
// This package defines the interfaces and types used for database-specific
// operations, allowing Cheetah to support multiple database backends:
// SQLite, MySQL/MariaDB, and PostgreSQL.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string matching the name of its
// registered database/sql driver:
//
//	dialect.SQLite   = "sqlite"
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//
// User-facing driver names ("sqlite3", "mysql", "mariadb", "postgresql")
// are resolved with Lookup.
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback. The
// ExecQuerier interface is implemented by both Driver and Tx.
//
// # Adapter
//
// An Adapter carries the syntax knowledge of one backend: parameter
// placeholder style, identifier quoting, column type names, auto-increment
// primary key syntax, and whether generated keys must be read back with
// RETURNING instead of LastInsertId.
//
// # Sub-packages
//
//   - dialect/sql: database/sql backed driver implementation
package dialect
