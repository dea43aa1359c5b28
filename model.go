package cheetah

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cybermals/Cheetah-ORM/filter"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// Values holds keyword-style initial field values for Model.Create.
type Values map[string]any

// Model is a declared data model: a named table plus an ordered set of
// field descriptors. Models are created once through Session.NewModel and
// immutable afterwards, except for backreference entries installed by the
// registry when later models declare foreign keys to them.
type Model struct {
	session  *Session
	name     string
	table    string
	fields   []*field.Descriptor
	byName   map[string]*field.Descriptor
	keyField *field.Descriptor // nil means the implicit auto-increment id
	indexes  []indexDef
	backrefs map[string]backref
}

// ModelName returns the declared model name.
func (m *Model) ModelName() string { return m.name }

// TableName returns the mapped table name.
func (m *Model) TableName() string { return m.table }

// KeyColumn returns the primary-key column name.
func (m *Model) KeyColumn() string {
	if m.keyField != nil {
		return m.keyField.Name()
	}
	return "id"
}

// KeyField returns the explicit primary-key descriptor, or nil for the
// implicit auto-increment id.
func (m *Model) KeyField() *field.Descriptor { return m.keyField }

// Field returns the descriptor of the named field.
func (m *Model) Field(name string) (*field.Descriptor, bool) {
	d, ok := m.byName[name]
	return d, ok
}

// Fields returns the ordered field descriptors.
func (m *Model) Fields() []*field.Descriptor { return m.fields }

// Backrefs returns the names of the backreferences installed on this model.
func (m *Model) Backrefs() []string {
	names := make([]string, 0, len(m.backrefs))
	for name := range m.backrefs {
		names = append(names, name)
	}
	return names
}

var (
	_ field.ReferencedModel = (*Model)(nil)
	_ filter.Schema         = (*Model)(nil)
)

// New returns an empty unsaved instance of this model.
func (m *Model) New() *Instance {
	return &Instance{
		model:    m,
		snapshot: make(map[string]any),
		pending:  make(map[string]any),
	}
}

// Create returns a new instance with the given initial field values. Every
// value is validated and coerced immediately; a bad value fails with a
// ValidationError before any SQL is generated.
func (m *Model) Create(values Values) (*Instance, error) {
	in := m.New()
	for name, v := range values {
		if err := in.Set(name, v); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// InitTable creates the table, constraints and secondary indexes for this
// model. It uses CREATE ... IF NOT EXISTS throughout and may be called any
// number of times.
func (m *Model) InitTable(ctx context.Context) error {
	if err := m.session.exec(ctx, m.createTableSQL(), nil); err != nil {
		return &PersistenceError{Op: "create table", Table: m.table, Err: err}
	}
	a := m.session.adapter
	for _, idx := range m.indexes {
		stmt := a.CreateIndex(idx.unique, m.table+"_"+idx.name, m.table, idx.columns)
		if err := m.session.exec(ctx, stmt, nil); err != nil {
			return &PersistenceError{Op: "create index", Table: m.table, Err: err}
		}
	}
	return nil
}

// DropTable removes the table. Statements and cursors are always closed
// after reads, so a drop directly after a filter does not deadlock on
// PostgreSQL table locks.
func (m *Model) DropTable(ctx context.Context) error {
	stmt := "DROP TABLE IF EXISTS " + m.session.adapter.Quote(m.table)
	if err := m.session.exec(ctx, stmt, nil); err != nil {
		return &PersistenceError{Op: "drop table", Table: m.table, Err: err}
	}
	m.session.invalidate(ctx, m.table)
	return nil
}

func (m *Model) createTableSQL() string {
	a := m.session.adapter
	var defs []string
	if m.keyField == nil {
		defs = append(defs, a.Quote("id")+" "+a.AutoIncrementPK())
	}
	for _, d := range m.fields {
		col := a.Quote(d.Name()) + " " + d.SQLType(a)
		if d == m.keyField {
			col += " PRIMARY KEY"
		}
		if lit, ok := defaultLiteral(d); ok {
			col += " DEFAULT " + lit
		}
		if d.Unique() && d != m.keyField {
			col += " UNIQUE"
		}
		if d.NotNull() && d != m.keyField {
			col += " NOT NULL"
		}
		defs = append(defs, col)
	}
	for _, d := range m.fields {
		if d.Kind() != field.KindForeignKey {
			continue
		}
		ref := d.Reference()
		defs = append(defs, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
			a.Quote(d.Name()), a.Quote(ref.TableName()), a.Quote(ref.KeyColumn()),
			d.OnDelete(), d.OnUpdate(),
		))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", a.Quote(m.table), strings.Join(defs, ", "))
}

// defaultLiteral renders a static default value as a DDL literal. Dynamic
// defaults (now(), generated UUIDs) and temporal values are applied on
// insert instead.
func defaultLiteral(d *field.Descriptor) (string, bool) {
	v, ok := d.Default()
	if !ok || v == nil {
		return "", false
	}
	switch d.Kind() {
	case field.KindInt, field.KindBigInt:
		if n, ok := v.(int64); ok {
			return strconv.FormatInt(n, 10), true
		}
	case field.KindFloat, field.KindDouble:
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'g', -1, 64), true
		}
	case field.KindBool:
		if b, ok := v.(bool); ok {
			if b {
				return "TRUE", true
			}
			return "FALSE", true
		}
	case field.KindString:
		if s, ok := v.(string); ok {
			return "'" + strings.ReplaceAll(s, "'", "''") + "'", true
		}
	}
	return "", false
}

// selectColumns returns the scanned columns: the key column followed by
// every declared field. An explicit key field is not listed twice.
func (m *Model) selectColumns() []string {
	cols := make([]string, 0, len(m.fields)+1)
	if m.keyField == nil {
		cols = append(cols, "id")
	}
	for _, d := range m.fields {
		cols = append(cols, d.Name())
	}
	return cols
}

func (m *Model) selectSQL() string {
	a := m.session.adapter
	cols := m.selectColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = a.Quote(c)
	}
	return "SELECT " + strings.Join(quoted, ", ") + " FROM " + a.Quote(m.table)
}

// Filter fetches all instances matching the given keyword filters, in the
// requested order. With no keywords it returns every row ordered by
// primary key ascending. Malformed keywords fail with a FilterSyntaxError
// before any SQL executes.
func (m *Model) Filter(ctx context.Context, opts ...filter.Option) ([]*Instance, error) {
	s := m.session
	spec := filter.NewSpec(opts...)
	clause, err := filter.Compile(s.adapter, m, spec)
	if err != nil {
		return nil, err
	}
	stmt := m.selectSQL() + clause.Suffix

	var key string
	if s.cache != nil {
		key = CacheKey{Table: m.table, Clause: clause.Suffix, Args: fmt.Sprint(clause.Args)}.String()
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			if raws, err := decodeRows(data); err == nil {
				return m.instantiate(raws)
			}
		}
	}

	raws, err := m.fetch(ctx, stmt, clause.Args)
	if err != nil {
		return nil, &PersistenceError{Op: "select", Table: m.table, Err: err}
	}
	if s.cache != nil {
		if data, err := encodeRows(raws); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return m.instantiate(raws)
}

// Get fetches one instance by primary key. A missing row fails with a
// NotFoundError.
func (m *Model) Get(ctx context.Context, key any) (*Instance, error) {
	coerced, err := m.coerceKey(key)
	if err != nil {
		return nil, err
	}
	a := m.session.adapter
	stmt := m.selectSQL() + fmt.Sprintf(" WHERE %s = %s", a.Quote(m.KeyColumn()), a.Placeholder(1))
	raws, err := m.fetch(ctx, stmt, []any{coerced})
	if err != nil {
		return nil, &PersistenceError{Op: "select", Table: m.table, Err: err}
	}
	if len(raws) == 0 {
		return nil, NewNotFoundError(m.name, key)
	}
	instances, err := m.instantiate(raws[:1])
	if err != nil {
		return nil, err
	}
	return instances[0], nil
}

// coerceKey normalizes a caller-supplied primary-key value.
func (m *Model) coerceKey(key any) (any, error) {
	if m.keyField != nil {
		coerced, err := m.keyField.Validate(key)
		if err != nil {
			return nil, err
		}
		return m.keyField.ToStorage(m.session.adapter, coerced)
	}
	switch k := key.(type) {
	case int:
		return int64(k), nil
	case int32:
		return int64(k), nil
	case int64:
		return k, nil
	case uint:
		return int64(k), nil
	case uint64:
		return int64(k), nil
	}
	return nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("cannot use %T as a primary key", key)}
}

// fetch runs a select and drains it into raw rows. The rows are closed
// before returning, never left open.
func (m *Model) fetch(ctx context.Context, stmt string, args []any) ([][]any, error) {
	rows, err := m.session.query(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ncols := len(m.selectColumns())
	var out [][]any
	for rows.Next() {
		raw := make([]any, ncols)
		ptrs := make([]any, ncols)
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// instantiate decodes raw rows into clean instances.
func (m *Model) instantiate(raws [][]any) ([]*Instance, error) {
	a := m.session.adapter
	instances := make([]*Instance, 0, len(raws))
	for _, raw := range raws {
		in := m.New()
		i := 0
		if m.keyField == nil {
			key, err := decodeImplicitKey(raw[0])
			if err != nil {
				return nil, err
			}
			in.key, in.hasKey = key, true
			i = 1
		}
		for _, d := range m.fields {
			v, err := d.FromStorage(a, raw[i])
			if err != nil {
				return nil, err
			}
			in.snapshot[d.Name()] = v
			if d == m.keyField {
				in.key, in.hasKey = v, v != nil
			}
			i++
		}
		in.persisted = true
		instances = append(instances, in)
	}
	return instances, nil
}

func decodeImplicitKey(raw any) (int64, error) {
	switch k := raw.(type) {
	case int64:
		return k, nil
	case int32:
		return int64(k), nil
	case []byte:
		return strconv.ParseInt(string(k), 10, 64)
	case string:
		return strconv.ParseInt(k, 10, 64)
	}
	return 0, fmt.Errorf("cheetah: unexpected key column type %T", raw)
}
