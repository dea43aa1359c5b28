package field

import (
	"fmt"

	"github.com/Cybermals/Cheetah-ORM/dialect"
)

// A Kind is the semantic type of a field.
type Kind uint8

// Field kinds.
const (
	KindInt Kind = iota
	KindBigInt
	KindFloat
	KindDouble
	KindBool
	KindString
	KindBinary
	KindDateTime
	KindPassword
	KindUUID
	KindForeignKey
)

var kindNames = [...]string{
	KindInt:        "int",
	KindBigInt:     "bigint",
	KindFloat:      "float",
	KindDouble:     "double",
	KindBool:       "bool",
	KindString:     "string",
	KindBinary:     "binary",
	KindDateTime:   "datetime",
	KindPassword:   "password",
	KindUUID:       "uuid",
	KindForeignKey: "foreign-key",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Numeric reports whether the kind holds a numeric value.
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindBigInt, KindFloat, KindDouble:
		return true
	}
	return false
}

// RefAction is a referential action for foreign keys.
type RefAction string

// Referential actions accepted by all three backends.
const (
	Cascade    RefAction = "CASCADE"
	Restrict   RefAction = "RESTRICT"
	SetNull    RefAction = "SET NULL"
	SetDefault RefAction = "SET DEFAULT"
	NoAction   RefAction = "NO ACTION"
)

// ReferencedModel is the view of a registered data model that a foreign-key
// field needs: its name, table and primary key.
type ReferencedModel interface {
	ModelName() string
	TableName() string
	KeyColumn() string
	// KeyField returns the descriptor of an explicit primary key, or nil
	// for an implicit auto-increment integer key.
	KeyField() *Descriptor
}

// Keyed is satisfied by model instances so they can stand in for their
// primary key in foreign-key assignments and filter values.
type Keyed interface {
	ModelName() string
	// KeyValue returns the primary key and whether it has been assigned.
	KeyValue() (any, bool)
}

// A Ref is a tagged foreign-key value: either a raw primary key or a
// reference to a model instance.
type Ref struct {
	raw  any
	inst Keyed
}

// Key returns a Ref holding a raw primary-key scalar.
func Key(v any) Ref { return Ref{raw: v} }

// Of returns a Ref holding a model instance.
func Of(inst Keyed) Ref { return Ref{inst: inst} }

// Descriptor is the immutable metadata of one field. Descriptors are built
// once at model-declaration time and shared read-only across all instances
// of the model.
type Descriptor struct {
	name       string
	kind       Kind
	length     int
	notNull    bool
	unique     bool
	key        bool
	unsigned   bool
	hasDefault bool
	defaultVal any
	defaultNow bool
	defaultNew bool // uuid generated on insert

	ref      ReferencedModel
	refName  string
	onDelete RefAction
	onUpdate RefAction

	err error
}

// A Definition is anything that can produce a field descriptor. All the
// fluent builders in this package implement it.
type Definition interface {
	Descriptor() *Descriptor
}

// Descriptor implements Definition, so descriptors can be passed where
// builders are expected.
func (d *Descriptor) Descriptor() *Descriptor { return d }

// Name returns the field (column) name.
func (d *Descriptor) Name() string { return d.name }

// Kind returns the field kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Length returns the declared maximum length, or 0 if none applies.
func (d *Descriptor) Length() int { return d.length }

// NotNull reports whether the column carries a NOT NULL constraint.
func (d *Descriptor) NotNull() bool { return d.notNull }

// Unique reports whether the column carries a UNIQUE constraint.
func (d *Descriptor) Unique() bool { return d.unique }

// IsKey reports whether this field is the primary key.
func (d *Descriptor) IsKey() bool { return d.key }

// Err returns the error accumulated while building the descriptor, if any.
func (d *Descriptor) Err() error { return d.err }

// Default returns the declared default value and whether one was set.
// For DefaultNow and DefaultNew fields the value is generated per insert
// and this returns (nil, true).
func (d *Descriptor) Default() (any, bool) {
	if d.defaultNow || d.defaultNew {
		return nil, true
	}
	return d.defaultVal, d.hasDefault
}

// Reference returns the referenced model of a foreign-key field, or nil.
func (d *Descriptor) Reference() ReferencedModel { return d.ref }

// ReferenceName returns the late-bound referenced model name of a
// foreign-key field declared with ForeignKeyTo.
func (d *Descriptor) ReferenceName() string {
	if d.ref != nil {
		return d.ref.ModelName()
	}
	return d.refName
}

// OnDelete returns the ON DELETE referential action of a foreign-key field.
func (d *Descriptor) OnDelete() RefAction { return d.onDelete }

// OnUpdate returns the ON UPDATE referential action of a foreign-key field.
func (d *Descriptor) OnUpdate() RefAction { return d.onUpdate }

// BindReference resolves a foreign-key field declared with ForeignKeyTo.
// It is called by the model registry and must not be called afterwards.
func (d *Descriptor) BindReference(ref ReferencedModel) {
	d.ref = ref
}

// SQLType renders the dialect-specific column type of this field.
func (d *Descriptor) SQLType(a *dialect.Adapter) string {
	var t string
	switch d.kind {
	case KindInt:
		t = a.ColumnType(dialect.TypeInt, 0)
	case KindBigInt:
		t = a.ColumnType(dialect.TypeBigInt, 0)
	case KindFloat:
		t = a.ColumnType(dialect.TypeFloat, 0)
	case KindDouble:
		t = a.ColumnType(dialect.TypeDouble, 0)
	case KindBool:
		t = a.ColumnType(dialect.TypeBool, 0)
	case KindString:
		t = a.ColumnType(dialect.TypeString, d.length)
	case KindBinary:
		t = a.ColumnType(dialect.TypeBinary, d.length)
	case KindDateTime:
		t = a.ColumnType(dialect.TypeDateTime, 0)
	case KindPassword:
		length := d.length
		if length <= 0 {
			length = 256
		}
		t = a.ColumnType(dialect.TypeString, length)
	case KindUUID:
		t = a.ColumnType(dialect.TypeUUID, 0)
	case KindForeignKey:
		// The referencing column must match the referenced key's type.
		if d.ref != nil {
			if kf := d.ref.KeyField(); kf != nil {
				return kf.SQLType(a)
			}
		}
		t = a.ColumnType(dialect.TypeBigInt, 0)
	}
	// PostgreSQL has no unsigned integer types.
	if d.unsigned && a.Name() != dialect.Postgres && d.kind.Numeric() {
		return "UNSIGNED " + t
	}
	return t
}

func newDescriptor(name string, kind Kind) *Descriptor {
	d := &Descriptor{name: name, kind: kind, onDelete: Cascade, onUpdate: Restrict}
	if name == "" {
		d.err = fmt.Errorf("field: empty field name")
	} else if name == "id" {
		// The implicit key column is reserved unless declared as the key.
		d.err = nil
	}
	return d
}

// Int returns a builder for an integer field.
func Int(name string) *IntBuilder {
	return &IntBuilder{desc: newDescriptor(name, KindInt)}
}

// BigInt returns a builder for a 64-bit integer field.
func BigInt(name string) *IntBuilder {
	return &IntBuilder{desc: newDescriptor(name, KindBigInt)}
}

// Float returns a builder for a single-precision float field.
func Float(name string) *FloatBuilder {
	return &FloatBuilder{desc: newDescriptor(name, KindFloat)}
}

// Double returns a builder for a double-precision float field.
func Double(name string) *FloatBuilder {
	return &FloatBuilder{desc: newDescriptor(name, KindDouble)}
}

// Bool returns a builder for a boolean field.
func Bool(name string) *BoolBuilder {
	return &BoolBuilder{desc: newDescriptor(name, KindBool)}
}

// String returns a builder for a string field.
func String(name string) *StringBuilder {
	return &StringBuilder{desc: newDescriptor(name, KindString)}
}

// Binary returns a builder for a binary field.
func Binary(name string) *BinaryBuilder {
	return &BinaryBuilder{desc: newDescriptor(name, KindBinary)}
}

// DateTime returns a builder for a timestamp field.
func DateTime(name string) *DateTimeBuilder {
	return &DateTimeBuilder{desc: newDescriptor(name, KindDateTime)}
}

// Password returns a builder for a one-way hashed password field.
func Password(name string) *PasswordBuilder {
	return &PasswordBuilder{desc: newDescriptor(name, KindPassword)}
}

// UUID returns a builder for a UUID field.
func UUID(name string) *UUIDBuilder {
	return &UUIDBuilder{desc: newDescriptor(name, KindUUID)}
}

// ForeignKey returns a builder for a foreign-key field referencing the
// given model. The referenced model must already be registered.
func ForeignKey(name string, ref ReferencedModel) *ForeignKeyBuilder {
	d := newDescriptor(name, KindForeignKey)
	if ref == nil {
		d.err = fmt.Errorf("field: foreign key %q references a nil model", name)
	}
	d.ref = ref
	return &ForeignKeyBuilder{desc: d}
}

// ForeignKeyTo returns a builder for a foreign-key field referencing a
// model by name. The reference is resolved by the registry when the owning
// model is declared; an unknown name fails model declaration.
func ForeignKeyTo(name, refName string) *ForeignKeyBuilder {
	d := newDescriptor(name, KindForeignKey)
	d.refName = refName
	return &ForeignKeyBuilder{desc: d}
}

// IntBuilder builds integer fields.
type IntBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *IntBuilder) NotNull() *IntBuilder { b.desc.notNull = true; return b }

// Unique adds a UNIQUE constraint.
func (b *IntBuilder) Unique() *IntBuilder { b.desc.unique = true; return b }

// Key marks this field as the primary key.
func (b *IntBuilder) Key() *IntBuilder { b.desc.key = true; return b }

// Unsigned restricts the field to non-negative values. On PostgreSQL the
// column type is unchanged; the restriction is enforced on assignment.
func (b *IntBuilder) Unsigned() *IntBuilder { b.desc.unsigned = true; return b }

// Default sets the default value for unset fields on insert.
func (b *IntBuilder) Default(v int64) *IntBuilder {
	b.desc.hasDefault, b.desc.defaultVal = true, v
	return b
}

// Descriptor returns the built descriptor.
func (b *IntBuilder) Descriptor() *Descriptor { return b.desc }

// FloatBuilder builds float and double fields.
type FloatBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *FloatBuilder) NotNull() *FloatBuilder { b.desc.notNull = true; return b }

// Unsigned restricts the field to non-negative values.
func (b *FloatBuilder) Unsigned() *FloatBuilder { b.desc.unsigned = true; return b }

// Default sets the default value for unset fields on insert.
func (b *FloatBuilder) Default(v float64) *FloatBuilder {
	b.desc.hasDefault, b.desc.defaultVal = true, v
	return b
}

// Descriptor returns the built descriptor.
func (b *FloatBuilder) Descriptor() *Descriptor { return b.desc }

// BoolBuilder builds boolean fields.
type BoolBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *BoolBuilder) NotNull() *BoolBuilder { b.desc.notNull = true; return b }

// Default sets the default value for unset fields on insert.
func (b *BoolBuilder) Default(v bool) *BoolBuilder {
	b.desc.hasDefault, b.desc.defaultVal = true, v
	return b
}

// Descriptor returns the built descriptor.
func (b *BoolBuilder) Descriptor() *Descriptor { return b.desc }

// StringBuilder builds string fields.
type StringBuilder struct{ desc *Descriptor }

// Length sets the maximum length. Values exceeding it fail validation;
// they are never truncated. The default is 255.
func (b *StringBuilder) Length(n int) *StringBuilder { b.desc.length = n; return b }

// NotNull adds a NOT NULL constraint.
func (b *StringBuilder) NotNull() *StringBuilder { b.desc.notNull = true; return b }

// Unique adds a UNIQUE constraint.
func (b *StringBuilder) Unique() *StringBuilder { b.desc.unique = true; return b }

// Key marks this field as the primary key.
func (b *StringBuilder) Key() *StringBuilder { b.desc.key = true; return b }

// Default sets the default value for unset fields on insert.
func (b *StringBuilder) Default(v string) *StringBuilder {
	b.desc.hasDefault, b.desc.defaultVal = true, v
	return b
}

// Descriptor returns the built descriptor.
func (b *StringBuilder) Descriptor() *Descriptor { return b.desc }

// BinaryBuilder builds binary fields.
type BinaryBuilder struct{ desc *Descriptor }

// Length sets the maximum length in bytes.
func (b *BinaryBuilder) Length(n int) *BinaryBuilder { b.desc.length = n; return b }

// NotNull adds a NOT NULL constraint.
func (b *BinaryBuilder) NotNull() *BinaryBuilder { b.desc.notNull = true; return b }

// Descriptor returns the built descriptor.
func (b *BinaryBuilder) Descriptor() *Descriptor { return b.desc }

// DateTimeBuilder builds timestamp fields.
type DateTimeBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *DateTimeBuilder) NotNull() *DateTimeBuilder { b.desc.notNull = true; return b }

// Default sets a fixed default value for unset fields on insert.
func (b *DateTimeBuilder) Default(v any) *DateTimeBuilder {
	if s, ok := v.(string); ok && isNowLiteral(s) {
		b.desc.hasDefault, b.desc.defaultNow = true, true
		return b
	}
	b.desc.hasDefault, b.desc.defaultVal = true, v
	return b
}

// DefaultNow makes unset fields default to the current time on insert.
func (b *DateTimeBuilder) DefaultNow() *DateTimeBuilder {
	b.desc.hasDefault, b.desc.defaultNow = true, true
	return b
}

// Descriptor returns the built descriptor.
func (b *DateTimeBuilder) Descriptor() *Descriptor { return b.desc }

// PasswordBuilder builds password fields.
type PasswordBuilder struct{ desc *Descriptor }

// Length sets the column length reserved for the hash encoding.
func (b *PasswordBuilder) Length(n int) *PasswordBuilder { b.desc.length = n; return b }

// NotNull adds a NOT NULL constraint.
func (b *PasswordBuilder) NotNull() *PasswordBuilder { b.desc.notNull = true; return b }

// Descriptor returns the built descriptor.
func (b *PasswordBuilder) Descriptor() *Descriptor { return b.desc }

// UUIDBuilder builds UUID fields.
type UUIDBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *UUIDBuilder) NotNull() *UUIDBuilder { b.desc.notNull = true; return b }

// Unique adds a UNIQUE constraint.
func (b *UUIDBuilder) Unique() *UUIDBuilder { b.desc.unique = true; return b }

// Key marks this field as the primary key.
func (b *UUIDBuilder) Key() *UUIDBuilder { b.desc.key = true; return b }

// DefaultNew generates a random UUID for unset fields on insert.
func (b *UUIDBuilder) DefaultNew() *UUIDBuilder {
	b.desc.hasDefault, b.desc.defaultNew = true, true
	return b
}

// Descriptor returns the built descriptor.
func (b *UUIDBuilder) Descriptor() *Descriptor { return b.desc }

// ForeignKeyBuilder builds foreign-key fields.
type ForeignKeyBuilder struct{ desc *Descriptor }

// NotNull adds a NOT NULL constraint.
func (b *ForeignKeyBuilder) NotNull() *ForeignKeyBuilder { b.desc.notNull = true; return b }

// Unique adds a UNIQUE constraint, making the relation one-to-one.
func (b *ForeignKeyBuilder) Unique() *ForeignKeyBuilder { b.desc.unique = true; return b }

// OnDelete sets the ON DELETE referential action. The default is CASCADE.
func (b *ForeignKeyBuilder) OnDelete(a RefAction) *ForeignKeyBuilder {
	b.desc.onDelete = a
	return b
}

// OnUpdate sets the ON UPDATE referential action. The default is RESTRICT.
func (b *ForeignKeyBuilder) OnUpdate(a RefAction) *ForeignKeyBuilder {
	b.desc.onUpdate = a
	return b
}

// Descriptor returns the built descriptor.
func (b *ForeignKeyBuilder) Descriptor() *Descriptor { return b.desc }
