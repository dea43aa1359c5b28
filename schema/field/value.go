package field

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cybermals/Cheetah-ORM/dialect"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("cheetah: invalid field value")

// ValidationError reports a bad field value: wrong type, length overflow,
// null violation or a mismatched foreign-key reference. It is raised at
// assignment time, never deferred to save.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("cheetah: invalid value for field %q: %s", e.Field, e.Reason)
}

// Is reports whether the target error matches ErrValidation.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}

func (d *Descriptor) invalid(format string, args ...any) error {
	return &ValidationError{Field: d.name, Reason: fmt.Sprintf(format, args...)}
}

func isNowLiteral(s string) bool {
	return strings.EqualFold(s, "now()")
}

// Validate coerces v into the Go-level value of this field and fails with a
// *ValidationError when v cannot represent a legal column value.
func (d *Descriptor) Validate(v any) (any, error) {
	if v == nil {
		if d.notNull {
			return nil, d.invalid("null value for NOT NULL field")
		}
		return nil, nil
	}
	switch d.kind {
	case KindInt, KindBigInt:
		return d.validateInt(v)
	case KindFloat, KindDouble:
		return d.validateFloat(v)
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int:
			return b != 0, nil
		case int64:
			return b != 0, nil
		}
		return nil, d.invalid("cannot coerce %T to bool", v)
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, d.invalid("cannot coerce %T to string", v)
		}
		if max := d.maxLength(255); len(s) > max {
			return nil, d.invalid("length %d exceeds maximum %d", len(s), max)
		}
		return s, nil
	case KindBinary:
		b, ok := v.([]byte)
		if !ok {
			return nil, d.invalid("cannot coerce %T to []byte", v)
		}
		if max := d.maxLength(65535); len(b) > max {
			return nil, d.invalid("length %d exceeds maximum %d", len(b), max)
		}
		return b, nil
	case KindDateTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			if isNowLiteral(t) {
				return time.Now().UTC(), nil
			}
		}
		return nil, d.invalid("cannot coerce %T to time.Time", v)
	case KindPassword:
		switch p := v.(type) {
		case PasswordValue:
			return p, nil
		case string:
			hashed, err := HashPassword(p)
			if err != nil {
				return nil, d.invalid("hashing failed: %v", err)
			}
			return hashed, nil
		}
		return nil, d.invalid("cannot coerce %T to password", v)
	case KindUUID:
		switch u := v.(type) {
		case uuid.UUID:
			return u, nil
		case string:
			parsed, err := uuid.Parse(u)
			if err != nil {
				return nil, d.invalid("malformed UUID: %v", err)
			}
			return parsed, nil
		case [16]byte:
			return uuid.UUID(u), nil
		}
		return nil, d.invalid("cannot coerce %T to UUID", v)
	case KindForeignKey:
		return d.validateRef(v)
	}
	return nil, d.invalid("unsupported field kind %s", d.kind)
}

func (d *Descriptor) maxLength(fallback int) int {
	if d.length > 0 {
		return d.length
	}
	return fallback
}

func (d *Descriptor) validateInt(v any) (any, error) {
	var n int64
	switch i := v.(type) {
	case int:
		n = int64(i)
	case int8:
		n = int64(i)
	case int16:
		n = int64(i)
	case int32:
		n = int64(i)
	case int64:
		n = i
	case uint:
		n = int64(i)
	case uint8:
		n = int64(i)
	case uint16:
		n = int64(i)
	case uint32:
		n = int64(i)
	case uint64:
		if i > math.MaxInt64 {
			return nil, d.invalid("value %d overflows int64", i)
		}
		n = int64(i)
	case bool:
		if i {
			n = 1
		}
	case float32:
		return d.validateInt(float64(i))
	case float64:
		if i != math.Trunc(i) {
			return nil, d.invalid("fractional value %v for integer field", i)
		}
		n = int64(i)
	default:
		return nil, d.invalid("cannot coerce %T to integer", v)
	}
	if d.unsigned && n < 0 {
		return nil, d.invalid("negative value %d for unsigned field", n)
	}
	if d.kind == KindInt && (n > math.MaxInt32 || n < math.MinInt32) {
		return nil, d.invalid("value %d overflows 32-bit integer field", n)
	}
	return n, nil
}

func (d *Descriptor) validateFloat(v any) (any, error) {
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case float64:
		f = x
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	default:
		return nil, d.invalid("cannot coerce %T to float", v)
	}
	if d.unsigned && f < 0 {
		return nil, d.invalid("negative value %v for unsigned field", f)
	}
	return f, nil
}

func (d *Descriptor) validateRef(v any) (any, error) {
	if r, ok := v.(Ref); ok {
		if r.inst != nil {
			return d.validateRef(r.inst)
		}
		v = r.raw
	}
	if inst, ok := v.(Keyed); ok {
		if d.ref != nil && inst.ModelName() != d.ref.ModelName() {
			return nil, d.invalid("expected instance of %q, got %q", d.ref.ModelName(), inst.ModelName())
		}
		key, assigned := inst.KeyValue()
		if !assigned {
			return nil, d.invalid("referenced %s instance has not been saved", inst.ModelName())
		}
		return key, nil
	}
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, string:
		// Raw primary keys pass through; the referenced key field owns
		// the exact representation.
		return normalizeKey(v), nil
	}
	return nil, d.invalid("cannot use %T as a foreign-key value", v)
}

func normalizeKey(v any) any {
	switch k := v.(type) {
	case int:
		return int64(k)
	case int32:
		return int64(k)
	case uint:
		return int64(k)
	case uint32:
		return int64(k)
	case uint64:
		return int64(k)
	default:
		return v
	}
}

// InsertDefault returns the value to insert for this field when it was
// never assigned, and whether such a value exists.
func (d *Descriptor) InsertDefault() (any, bool) {
	switch {
	case d.defaultNow:
		return time.Now().UTC(), true
	case d.defaultNew:
		return uuid.New(), true
	case d.hasDefault:
		v, err := d.Validate(d.defaultVal)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// ToStorage converts a validated Go-level value into the driver-native
// scalar bound to the statement.
func (d *Descriptor) ToStorage(a *dialect.Adapter, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch d.kind {
	case KindDateTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, d.invalid("expected time.Time, got %T", v)
		}
		if a.Name() == dialect.SQLite {
			// Fixed-width layout: every digit position is populated, so
			// SQLite's text comparison orders timestamps chronologically.
			return t.UTC().Format(sqliteTimeLayout), nil
		}
		return t.UTC(), nil
	case KindPassword:
		p, ok := v.(PasswordValue)
		if !ok {
			return nil, d.invalid("expected password value, got %T", v)
		}
		return p.Hash(), nil
	case KindUUID:
		u, ok := v.(uuid.UUID)
		if !ok {
			return nil, d.invalid("expected UUID, got %T", v)
		}
		return u.String(), nil
	default:
		return v, nil
	}
}

// FromStorage decodes a scanned column value back into the Go-level value
// of this field.
func (d *Descriptor) FromStorage(a *dialect.Adapter, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch d.kind {
	case KindInt, KindBigInt, KindForeignKey:
		switch n := raw.(type) {
		case int64:
			return n, nil
		case int32:
			return int64(n), nil
		case []byte:
			i, err := strconv.ParseInt(string(n), 10, 64)
			if err != nil {
				return nil, d.invalid("malformed integer column: %v", err)
			}
			return i, nil
		case string:
			// String-keyed foreign keys pass through.
			if d.kind == KindForeignKey {
				return n, nil
			}
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindFloat, KindDouble:
		switch f := raw.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		case []byte:
			v, err := strconv.ParseFloat(string(f), 64)
			if err != nil {
				return nil, d.invalid("malformed float column: %v", err)
			}
			return v, nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindBool:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case []byte:
			return len(b) > 0 && b[0] != '0', nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindString:
		switch s := raw.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindBinary:
		switch b := raw.(type) {
		case []byte:
			out := make([]byte, len(b))
			copy(out, b)
			return out, nil
		case string:
			return []byte(b), nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindDateTime:
		switch t := raw.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			return parseStoredTime(d, t)
		case []byte:
			return parseStoredTime(d, string(t))
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindPassword:
		switch h := raw.(type) {
		case string:
			return PasswordValue{hash: h}, nil
		case []byte:
			return PasswordValue{hash: string(h)}, nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	case KindUUID:
		switch u := raw.(type) {
		case string:
			parsed, err := uuid.Parse(u)
			if err != nil {
				return nil, d.invalid("malformed UUID column: %v", err)
			}
			return parsed, nil
		case []byte:
			parsed, err := uuid.ParseBytes(u)
			if err != nil {
				return nil, d.invalid("malformed UUID column: %v", err)
			}
			return parsed, nil
		}
		return nil, d.invalid("unexpected column type %T", raw)
	}
	return raw, nil
}

// sqliteTimeLayout is the text representation of DATETIME columns on
// SQLite. Fractional seconds are zero-padded to nanosecond width.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

func parseStoredTime(d *Descriptor, s string) (any, error) {
	for _, layout := range []string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, d.invalid("malformed timestamp column %q", s)
}

// FilterValue converts a caller-supplied filter value into the
// driver-native scalar bound to a WHERE clause for this field.
func (d *Descriptor) FilterValue(a *dialect.Adapter, v any) (any, error) {
	coerced, err := d.Validate(v)
	if err != nil {
		return nil, err
	}
	return d.ToStorage(a, coerced)
}
