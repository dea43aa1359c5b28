package cheetah

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"       // postgres driver
	_ "modernc.org/sqlite"      // sqlite driver

	"github.com/Cybermals/Cheetah-ORM/dialect"
	csql "github.com/Cybermals/Cheetah-ORM/dialect/sql"
)

// config collects connection and session options.
type config struct {
	database string
	host     string
	port     int
	user     string
	password string
	params   map[string]string
	cache    Cache
	cacheTTL time.Duration
}

// An Option configures Connect or NewSession.
type Option func(*config)

// Database sets the database name, or the file path for SQLite.
func Database(name string) Option {
	return func(c *config) { c.database = name }
}

// Host sets the server host for MySQL and PostgreSQL.
func Host(host string) Option {
	return func(c *config) { c.host = host }
}

// Port sets the server port for MySQL and PostgreSQL.
func Port(port int) Option {
	return func(c *config) { c.port = port }
}

// User sets the database user.
func User(user string) Option {
	return func(c *config) { c.user = user }
}

// Password sets the database password.
func Password(password string) Option {
	return func(c *config) { c.password = password }
}

// Param passes an extra driver parameter through to the DSN.
func Param(key, value string) Option {
	return func(c *config) {
		if c.params == nil {
			c.params = make(map[string]string)
		}
		c.params[key] = value
	}
}

// WithCache enables the session query cache. Cached filter results are
// invalidated on every write to the table they read from.
func WithCache(cache Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL bounds the lifetime of cached filter results. Zero (the
// default) means entries live until invalidated by a write.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// Session is the connection context of the ORM: one driver handle, one
// model registry and at most one in-flight deferred transaction. A Session
// is not safe for concurrent use; callers must serialize access.
type Session struct {
	drv      dialect.Driver
	adapter  *dialect.Adapter
	registry *Registry
	cache    Cache
	cacheTTL time.Duration
	tx       dialect.Tx // open deferred transaction, nil when none
}

// Connect opens a database connection and returns a new Session.
// Recognized driver names are "sqlite3", "mysql", "mariadb" and
// "postgresql". Unlike the process-wide connection of older Cheetah
// releases, sessions are explicit values; several isolated sessions may be
// open at once.
func Connect(ctx context.Context, driverName string, opts ...Option) (*Session, error) {
	name, err := dialect.Lookup(driverName)
	if err != nil {
		return nil, err
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	dsn, err := cfg.dsn(name)
	if err != nil {
		return nil, err
	}
	drv, err := csql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	// A session is one connection handle: deferred statements and
	// connection-scoped pragmas must all land on the same connection, and
	// an in-memory SQLite database lives per connection.
	drv.DB().SetMaxOpenConns(1)
	s := newSession(drv, cfg)
	if name == dialect.SQLite {
		if err := s.exec(ctx, "PRAGMA foreign_keys = ON", nil); err != nil {
			drv.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewSession wraps an already-open driver (e.g. a StatsDriver or a test
// double) in a Session.
func NewSession(drv dialect.Driver, opts ...Option) *Session {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return newSession(drv, cfg)
}

func newSession(drv dialect.Driver, cfg *config) *Session {
	adapter, err := dialect.Get(drv.Dialect())
	if err != nil {
		// Unknown dialects fall back to SQLite syntax; Connect never
		// produces one.
		adapter, _ = dialect.Get(dialect.SQLite)
	}
	return &Session{
		drv:      drv,
		adapter:  adapter,
		registry: newRegistry(),
		cache:    cfg.cache,
		cacheTTL: cfg.cacheTTL,
	}
}

// dsn builds the driver-specific connection string.
func (c *config) dsn(name string) (string, error) {
	switch name {
	case dialect.SQLite:
		db := c.database
		if db == "" {
			db = ":memory:"
		}
		if len(c.params) > 0 {
			return db + "?" + c.encodeParams("&"), nil
		}
		return db, nil
	case dialect.MySQL:
		mc := mysql.NewConfig()
		mc.User = c.user
		mc.Passwd = c.password
		mc.DBName = c.database
		mc.Net = "tcp"
		host := c.host
		if host == "" {
			host = "127.0.0.1"
		}
		port := c.port
		if port == 0 {
			port = 3306
		}
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		// DATETIME columns must scan back as time.Time.
		mc.ParseTime = true
		if len(c.params) > 0 {
			mc.Params = c.params
		}
		return mc.FormatDSN(), nil
	case dialect.Postgres:
		kv := map[string]string{}
		for k, v := range c.params {
			kv[k] = v
		}
		if c.database != "" {
			kv["dbname"] = c.database
		}
		if c.host != "" {
			kv["host"] = c.host
		}
		if c.port != 0 {
			kv["port"] = strconv.Itoa(c.port)
		}
		if c.user != "" {
			kv["user"] = c.user
		}
		if c.password != "" {
			kv["password"] = c.password
		}
		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, kv[k]))
		}
		return strings.Join(parts, " "), nil
	default:
		return "", fmt.Errorf("cheetah: no DSN builder for dialect %q", name)
	}
}

func (c *config) encodeParams(sep string) string {
	keys := make([]string, 0, len(c.params))
	for k := range c.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+c.params[k])
	}
	return strings.Join(parts, sep)
}

// Adapter returns the dialect adapter of this session.
func (s *Session) Adapter() *dialect.Adapter { return s.adapter }

// Driver returns the underlying driver.
func (s *Session) Driver() dialect.Driver { return s.drv }

// Registry returns the model registry of this session.
func (s *Session) Registry() *Registry { return s.registry }

// NewModel declares a data model on this session. See Registry.NewModel.
func (s *Session) NewModel(name string, fields []FieldDefinition, opts ...ModelOption) (*Model, error) {
	return s.registry.newModel(s, name, fields, opts...)
}

// InTransaction reports whether deferred statements are pending commit.
func (s *Session) InTransaction() bool { return s.tx != nil }

// Commit makes all deferred statements durable. It is a no-op when no
// deferred transaction is open.
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return &PersistenceError{Op: "commit", Table: "", Err: err}
	}
	return nil
}

// Rollback abandons all deferred statements. It is a no-op when no
// deferred transaction is open.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	if err != nil {
		return &PersistenceError{Op: "rollback", Table: "", Err: err}
	}
	return nil
}

// Close rolls back any deferred work and closes the underlying connection.
func (s *Session) Close() error {
	if s.tx != nil {
		_ = s.Rollback()
	}
	return s.drv.Close()
}

// execer returns the execution target: the open deferred transaction when
// one exists, the plain driver otherwise.
func (s *Session) execer() dialect.ExecQuerier {
	if s.tx != nil {
		return s.tx
	}
	return s.drv
}

// exec runs a statement outside any deferral, or inside the open deferred
// transaction when one exists, preserving statement issuance order.
func (s *Session) exec(ctx context.Context, query string, args []any) error {
	if args == nil {
		args = []any{}
	}
	return s.execer().Exec(ctx, query, args, nil)
}

// execResult runs a statement and returns its sql.Result.
func (s *Session) execResult(ctx context.Context, query string, args []any) (csql.Result, error) {
	if args == nil {
		args = []any{}
	}
	var res csql.Result
	if err := s.execer().Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// execDeferred runs a statement inside the session transaction, opening it
// if necessary, and leaves it uncommitted.
func (s *Session) execDeferred(ctx context.Context, query string, args []any) (csql.Result, error) {
	if err := s.beginDeferred(ctx); err != nil {
		return nil, err
	}
	if args == nil {
		args = []any{}
	}
	var res csql.Result
	if err := s.tx.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Session) beginDeferred(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

// query runs a row-returning statement. The returned rows must be closed;
// every caller in this package closes them before returning so no cursor
// outlives its statement (PostgreSQL keeps table locks otherwise).
func (s *Session) query(ctx context.Context, query string, args []any) (*csql.Rows, error) {
	if args == nil {
		args = []any{}
	}
	var rows csql.Rows
	if err := s.execer().Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return &rows, nil
}

// invalidate drops every cached query reading from the given table.
func (s *Session) invalidate(ctx context.Context, table string) {
	if s.cache != nil {
		_ = s.cache.DeletePrefix(ctx, cachePrefix(table))
	}
}
