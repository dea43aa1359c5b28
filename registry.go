package cheetah

import (
	"fmt"

	"github.com/go-openapi/inflect"

	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// FieldDefinition is anything that produces a field descriptor; all the
// builders in schema/field implement it.
type FieldDefinition = field.Definition

// A ModelOption configures model declaration.
type ModelOption func(*modelConfig)

type modelConfig struct {
	table   string
	indexes []indexDef
}

type indexDef struct {
	name    string
	unique  bool
	columns []string
}

// WithTable overrides the table name. The default is the underscored
// plural of the model name ("UserProfile" becomes "user_profiles").
func WithTable(name string) ModelOption {
	return func(c *modelConfig) { c.table = name }
}

// WithIndex adds a secondary index over the given columns.
func WithIndex(name string, columns ...string) ModelOption {
	return func(c *modelConfig) {
		c.indexes = append(c.indexes, indexDef{name: name, columns: columns})
	}
}

// WithUniqueIndex adds a unique secondary index over the given columns.
func WithUniqueIndex(name string, columns ...string) ModelOption {
	return func(c *modelConfig) {
		c.indexes = append(c.indexes, indexDef{name: name, unique: true, columns: columns})
	}
}

// Registry collects the data models declared on a session. It is the
// single source of truth for model metadata and backreference wiring.
// After declaration the registry is read-mostly and safe for concurrent
// reads.
type Registry struct {
	models map[string]*Model
}

func newRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Model returns a registered model by name.
func (r *Registry) Model(name string) (*Model, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Models returns the number of registered models.
func (r *Registry) Models() int { return len(r.models) }

// newModel validates the field set, resolves foreign keys and installs
// backreferences on the referenced models.
func (r *Registry) newModel(s *Session, name string, defs []FieldDefinition, opts ...ModelOption) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("cheetah: empty model name")
	}
	if _, ok := r.models[name]; ok {
		return nil, fmt.Errorf("cheetah: model %q is already declared", name)
	}
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	table := cfg.table
	if table == "" {
		table = inflect.Tableize(name)
	}
	m := &Model{
		session:  s,
		name:     name,
		table:    table,
		byName:   make(map[string]*field.Descriptor, len(defs)),
		indexes:  cfg.indexes,
		backrefs: make(map[string]backref),
	}
	for _, def := range defs {
		d := def.Descriptor()
		if err := d.Err(); err != nil {
			return nil, err
		}
		if _, dup := m.byName[d.Name()]; dup {
			return nil, fmt.Errorf("cheetah: model %s declares field %q twice", name, d.Name())
		}
		if d.IsKey() {
			if m.keyField != nil {
				return nil, fmt.Errorf("cheetah: model %s declares more than one key field", name)
			}
			m.keyField = d
		}
		if d.Kind() == field.KindForeignKey {
			if err := r.resolveReference(m, d); err != nil {
				return nil, err
			}
		}
		m.fields = append(m.fields, d)
		m.byName[d.Name()] = d
	}
	r.models[name] = m
	// Install backreferences after registration so self-references work.
	for _, d := range m.fields {
		if d.Kind() == field.KindForeignKey {
			installBackref(m, d)
		}
	}
	return m, nil
}

// resolveReference binds a foreign-key descriptor to its referenced model.
// Models must be declared before they are referenced; a name that does not
// resolve fails the declaration.
func (r *Registry) resolveReference(m *Model, d *field.Descriptor) error {
	if ref := d.Reference(); ref != nil {
		return nil
	}
	refName := d.ReferenceName()
	if refName == m.name {
		// Self-reference resolves to the model under declaration.
		d.BindReference(m)
		return nil
	}
	ref, ok := r.models[refName]
	if !ok {
		return &UnresolvedReferenceError{Model: m.name, Field: d.Name(), Ref: refName}
	}
	d.BindReference(ref)
	return nil
}

// installBackref places the pluralized collection accessor on the
// referenced model: a Post.author foreign key gives every User instance a
// "Posts" backreference.
func installBackref(m *Model, d *field.Descriptor) {
	ref, ok := d.Reference().(*Model)
	if !ok {
		return
	}
	ref.backrefs[inflect.Pluralize(m.name)] = backref{model: m, fkField: d.Name()}
}

type backref struct {
	model   *Model
	fkField string
}
