// Package sql provides a database/sql backed implementation of the
// dialect.Driver interface used by Cheetah ORM.
//
// Opening a driver:
//
//	import (
//	    "github.com/Cybermals/Cheetah-ORM/dialect"
//	    "github.com/Cybermals/Cheetah-ORM/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// The package also provides StatsDriver, a wrapper that collects query
// statistics and reports slow statements through log/slog.
package sql
