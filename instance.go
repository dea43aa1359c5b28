package cheetah

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Cybermals/Cheetah-ORM/filter"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// State is the lifecycle state of an instance.
type State uint8

// Instance states.
const (
	// StateNew marks an instance that was never persisted.
	StateNew State = iota
	// StateClean marks a persisted instance with no pending changes.
	StateClean
	// StateDirty marks a persisted instance with pending changes.
	StateDirty
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateClean:
		return "clean"
	default:
		return "dirty"
	}
}

// Instance is one row's worth of field values: the last known persisted
// snapshot, the pending uncommitted edits and the primary-key value.
type Instance struct {
	model     *Model
	snapshot  map[string]any
	pending   map[string]any
	key       any
	hasKey    bool
	persisted bool
}

// Model returns the model this instance belongs to.
func (in *Instance) Model() *Model { return in.model }

// ModelName returns the model name. Together with KeyValue it lets an
// instance stand in for its primary key in foreign-key assignments and
// filter values.
func (in *Instance) ModelName() string { return in.model.name }

// KeyValue returns the primary key and whether it has been assigned.
func (in *Instance) KeyValue() (any, bool) { return in.key, in.hasKey }

// Key returns the primary-key value, or nil if not yet assigned.
func (in *Instance) Key() any { return in.key }

// State reports the lifecycle state of this instance.
func (in *Instance) State() State {
	switch {
	case !in.persisted:
		return StateNew
	case len(in.pending) > 0:
		return StateDirty
	default:
		return StateClean
	}
}

var _ field.Keyed = (*Instance)(nil)

// Set assigns a field value. The value is validated and coerced
// immediately; a bad value fails with a ValidationError and leaves the
// instance untouched. Assigning a persisted field its snapshot value
// removes it from the pending set again.
func (in *Instance) Set(name string, v any) error {
	if name == in.model.KeyColumn() && in.model.keyField == nil {
		key, err := in.model.coerceKey(v)
		if err != nil {
			return err
		}
		in.key, in.hasKey = key, true
		return nil
	}
	d, ok := in.model.byName[name]
	if !ok {
		return &ValidationError{Field: name, Reason: fmt.Sprintf("model %s has no such field", in.model.name)}
	}
	coerced, err := d.Validate(v)
	if err != nil {
		return err
	}
	if in.persisted {
		if snap, ok := in.snapshot[name]; ok && valuesEqual(snap, coerced) {
			delete(in.pending, name)
			return nil
		}
	}
	in.pending[name] = coerced
	if d == in.model.keyField {
		in.key, in.hasKey = coerced, coerced != nil
	}
	return nil
}

// Get returns the current value of a field: the pending edit if one
// exists, the persisted snapshot otherwise, or the declared default for
// fields never assigned on a new instance.
func (in *Instance) Get(name string) (any, error) {
	if name == in.model.KeyColumn() && in.model.keyField == nil {
		if !in.hasKey {
			return nil, nil
		}
		return in.key, nil
	}
	d, ok := in.model.byName[name]
	if !ok {
		return nil, &ValidationError{Field: name, Reason: fmt.Sprintf("model %s has no such field", in.model.name)}
	}
	if v, ok := in.pending[name]; ok {
		return v, nil
	}
	if v, ok := in.snapshot[name]; ok {
		return v, nil
	}
	if v, ok := d.Default(); ok && v != nil {
		coerced, err := d.Validate(v)
		if err != nil {
			return nil, err
		}
		return coerced, nil
	}
	return nil, nil
}

// Discard clears all pending changes without contacting the database. A
// persisted instance returns to its last saved values; a new instance is
// cleared back to unset.
func (in *Instance) Discard() {
	in.pending = make(map[string]any)
}

// Save persists the pending changes and commits the transaction, making
// any previously deferred statements on the session durable as well:
// the commit boundary is connection-wide, not per-instance. Saving a
// clean instance issues no statement.
func (in *Instance) Save(ctx context.Context) error {
	return in.save(ctx, true)
}

// SaveDeferred persists the pending changes inside the session
// transaction without committing, so several instances can be made
// durable atomically by a later Save or Session.Commit.
func (in *Instance) SaveDeferred(ctx context.Context) error {
	return in.save(ctx, false)
}

func (in *Instance) save(ctx context.Context, commit bool) error {
	switch in.State() {
	case StateNew:
		return in.insert(ctx, commit)
	case StateDirty:
		return in.update(ctx, commit)
	default:
		if commit {
			return in.model.session.Commit(ctx)
		}
		return nil
	}
}

// insert compiles and executes the INSERT for a new instance. On failure
// the snapshot and pending set are left untouched.
func (in *Instance) insert(ctx context.Context, commit bool) error {
	m := in.model
	s := m.session
	a := s.adapter

	type colVal struct {
		name  string
		value any // coerced Go-level value
		bound any // driver-native value
	}
	var cols []colVal
	for _, d := range m.fields {
		v, ok := in.pending[d.Name()]
		if !ok {
			v, ok = d.InsertDefault()
			if !ok {
				continue
			}
		}
		bound, err := d.ToStorage(a, v)
		if err != nil {
			return err
		}
		cols = append(cols, colVal{name: d.Name(), value: v, bound: bound})
	}
	if m.keyField == nil && in.hasKey {
		cols = append([]colVal{{name: "id", value: in.key, bound: in.key}}, cols...)
	}

	names := make([]string, len(cols))
	holes := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, cv := range cols {
		names[i] = a.Quote(cv.name)
		holes[i] = a.Placeholder(i + 1)
		args[i] = cv.bound
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		a.Quote(m.table), strings.Join(names, ", "), strings.Join(holes, ", "))

	needKey := !in.hasKey && m.keyField == nil
	var generated int64
	switch {
	case needKey && a.ReturningID():
		stmt += " RETURNING " + a.Quote("id")
		if !commit {
			if err := s.beginDeferred(ctx); err != nil {
				return &PersistenceError{Op: "insert", Table: m.table, Err: err}
			}
		}
		rows, err := s.query(ctx, stmt, args)
		if err != nil {
			return &PersistenceError{Op: "insert", Table: m.table, Err: err}
		}
		if !rows.Next() {
			rows.Close()
			return &PersistenceError{Op: "insert", Table: m.table, Err: fmt.Errorf("no generated key returned")}
		}
		if err := rows.Scan(&generated); err != nil {
			rows.Close()
			return &PersistenceError{Op: "insert", Table: m.table, Err: err}
		}
		if err := rows.Close(); err != nil {
			return &PersistenceError{Op: "insert", Table: m.table, Err: err}
		}
	case !commit:
		res, err := s.execDeferred(ctx, stmt, args)
		if err != nil {
			return &PersistenceError{Op: "insert", Table: m.table, Err: err}
		}
		if needKey {
			if generated, err = res.LastInsertId(); err != nil {
				return &PersistenceError{Op: "insert", Table: m.table, Err: err}
			}
		}
	default:
		res, err := s.execResult(ctx, stmt, args)
		if err != nil {
			return &PersistenceError{Op: "insert", Table: m.table, Err: err}
		}
		if needKey {
			if generated, err = res.LastInsertId(); err != nil {
				return &PersistenceError{Op: "insert", Table: m.table, Err: err}
			}
		}
	}

	for _, cv := range cols {
		if cv.name == "id" && m.keyField == nil {
			continue
		}
		in.snapshot[cv.name] = cv.value
	}
	if needKey {
		in.key, in.hasKey = generated, true
	}
	if m.keyField != nil {
		if v, ok := in.snapshot[m.keyField.Name()]; ok {
			in.key, in.hasKey = v, v != nil
		}
	}
	in.pending = make(map[string]any)
	in.persisted = true
	s.invalidate(ctx, m.table)
	if commit {
		return s.Commit(ctx)
	}
	return nil
}

// update compiles and executes an UPDATE touching only the pending
// columns. On failure the snapshot and pending set are left untouched.
func (in *Instance) update(ctx context.Context, commit bool) error {
	m := in.model
	s := m.session
	a := s.adapter
	if !in.hasKey {
		return &PersistenceError{Op: "update", Table: m.table, Err: fmt.Errorf("instance has no primary key")}
	}

	var (
		sets    []string
		args    []any
		applied = make(map[string]any)
	)
	for _, d := range m.fields {
		v, ok := in.pending[d.Name()]
		if !ok {
			continue
		}
		bound, err := d.ToStorage(a, v)
		if err != nil {
			return err
		}
		args = append(args, bound)
		sets = append(sets, fmt.Sprintf("%s = %s", a.Quote(d.Name()), a.Placeholder(len(args))))
		applied[d.Name()] = v
	}
	whereKey := in.key
	if m.keyField != nil {
		if snap, ok := in.snapshot[m.keyField.Name()]; ok {
			whereKey = snap
		}
	}
	keyBound, err := m.coerceKey(whereKey)
	if err != nil {
		return err
	}
	args = append(args, keyBound)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		a.Quote(m.table), strings.Join(sets, ", "), a.Quote(m.KeyColumn()), a.Placeholder(len(args)))

	if !commit {
		if _, err := s.execDeferred(ctx, stmt, args); err != nil {
			return &PersistenceError{Op: "update", Table: m.table, Err: err}
		}
	} else if err := s.exec(ctx, stmt, args); err != nil {
		return &PersistenceError{Op: "update", Table: m.table, Err: err}
	}

	for name, v := range applied {
		in.snapshot[name] = v
	}
	in.pending = make(map[string]any)
	s.invalidate(ctx, m.table)
	if commit {
		return s.Commit(ctx)
	}
	return nil
}

// Delete removes the row of a persisted instance and commits. The
// instance becomes new again with its field values pending, so a later
// Save re-inserts it.
func (in *Instance) Delete(ctx context.Context) error {
	return in.delete(ctx, true)
}

// DeleteDeferred removes the row inside the session transaction without
// committing.
func (in *Instance) DeleteDeferred(ctx context.Context) error {
	return in.delete(ctx, false)
}

func (in *Instance) delete(ctx context.Context, commit bool) error {
	m := in.model
	s := m.session
	a := s.adapter
	if !in.persisted || !in.hasKey {
		return &PersistenceError{Op: "delete", Table: m.table, Err: fmt.Errorf("instance was never saved")}
	}
	keyBound, err := m.coerceKey(in.key)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		a.Quote(m.table), a.Quote(m.KeyColumn()), a.Placeholder(1))
	if !commit {
		if _, err := s.execDeferred(ctx, stmt, []any{keyBound}); err != nil {
			return &PersistenceError{Op: "delete", Table: m.table, Err: err}
		}
	} else if err := s.exec(ctx, stmt, []any{keyBound}); err != nil {
		return &PersistenceError{Op: "delete", Table: m.table, Err: err}
	}

	for name, v := range in.snapshot {
		if _, ok := in.pending[name]; !ok {
			in.pending[name] = v
		}
	}
	in.snapshot = make(map[string]any)
	in.persisted = false
	if m.keyField == nil {
		in.key, in.hasKey = nil, false
	}
	s.invalidate(ctx, m.table)
	if commit {
		return s.Commit(ctx)
	}
	return nil
}

// Reference resolves a foreign-key field to the referenced instance. The
// raw key is stored on the instance; the referenced row is fetched only
// on this explicit call.
func (in *Instance) Reference(ctx context.Context, name string) (*Instance, error) {
	d, ok := in.model.byName[name]
	if !ok || d.Kind() != field.KindForeignKey {
		return nil, &ValidationError{Field: name, Reason: fmt.Sprintf("model %s has no foreign-key field %q", in.model.name, name)}
	}
	ref, ok := d.Reference().(*Model)
	if !ok {
		return nil, &UnresolvedReferenceError{Model: in.model.name, Field: name, Ref: d.ReferenceName()}
	}
	v, err := in.Get(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, NewNotFoundError(ref.name, nil)
	}
	return ref.Get(ctx, v)
}

// Backref evaluates a backreference: the collection of instances of the
// referencing model whose foreign key points at this instance. The result
// is a live filtered query, not a cached snapshot.
func (in *Instance) Backref(ctx context.Context, name string) ([]*Instance, error) {
	br, ok := in.model.backrefs[name]
	if !ok {
		return nil, &ValidationError{Field: name, Reason: fmt.Sprintf("model %s has no backreference %q", in.model.name, name)}
	}
	if !in.hasKey {
		return nil, &PersistenceError{Op: "select", Table: br.model.table, Err: fmt.Errorf("instance was never saved")}
	}
	return br.model.Filter(ctx, filter.Kw(br.fkField+"_eq", in))
}

// String returns a debug representation of the instance.
func (in *Instance) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", in.model.name)
	fmt.Fprintf(&b, "%s=%v", in.model.KeyColumn(), in.key)
	for _, d := range in.model.fields {
		if d == in.model.keyField {
			continue
		}
		v, _ := in.Get(d.Name())
		fmt.Fprintf(&b, ", %s=%v", d.Name(), v)
	}
	b.WriteString(")")
	return b.String()
}

// valuesEqual compares two coerced field values.
func valuesEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if _, ok := b.([]byte); ok {
		return false
	}
	return a == b
}
