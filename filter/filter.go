package filter

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("cheetah: invalid filter")

// SyntaxError reports a malformed or unknown filter keyword, or an
// operator that is incompatible with the field kind. It is raised when the
// filter is compiled, before any SQL executes.
type SyntaxError struct {
	Keyword string
	Reason  string
}

// Error returns the error string.
func (e *SyntaxError) Error() string {
	if e.Keyword == "" {
		return fmt.Sprintf("cheetah: invalid filter: %s", e.Reason)
	}
	return fmt.Sprintf("cheetah: invalid filter keyword %q: %s", e.Keyword, e.Reason)
}

// Is reports whether the target error matches ErrSyntax.
func (e *SyntaxError) Is(err error) bool {
	return err == ErrSyntax
}

// IsSyntax returns true if the error is a filter SyntaxError.
func IsSyntax(err error) bool {
	if err == nil {
		return false
	}
	var e *SyntaxError
	return errors.As(err, &e) || errors.Is(err, ErrSyntax)
}

// A Connector joins a term to the terms before it.
type Connector uint8

// Connectors.
const (
	// None marks the first term of a filter.
	None Connector = iota
	And
	Or
)

// String returns the SQL spelling of the connector.
func (c Connector) String() string {
	switch c {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return ""
	}
}

// An Op is a comparison operator.
type Op uint8

// Comparison operators.
const (
	EQ Op = iota
	NEQ
	LT
	GT
	LTE
	GTE
)

// Relational reports whether the operator is an ordering comparison.
func (o Op) Relational() bool { return o >= LT }

// SQL returns the SQL spelling of the operator.
func (o Op) SQL() string {
	switch o {
	case EQ:
		return "="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LTE:
		return "<="
	default:
		return ">="
	}
}

// A Term is one parsed (connector, field, operator, value) element of a
// filter specification.
type Term struct {
	Connector Connector
	Field     string
	Op        Op
	Value     any
	// Raw is the keyword as the caller supplied it, kept for error messages.
	Raw string
}

// A Spec is the transient filter specification assembled from options and
// consumed by a single Compile call.
type Spec struct {
	keywords []keyword
	orderBy  string
	desc     bool
	limit    int
	offset   int
}

type keyword struct {
	key   string
	value any
}

// An Option configures one element of a filter specification.
type Option func(*Spec)

// Kw adds one filter keyword, e.g. Kw("logins_lt", 200).
func Kw(key string, value any) Option {
	return func(s *Spec) { s.keywords = append(s.keywords, keyword{key: key, value: value}) }
}

// OrderBy sets the ordering column. The default is the primary key.
func OrderBy(field string) Option {
	return func(s *Spec) { s.orderBy = field }
}

// Descending reverses the ordering direction.
func Descending() Option {
	return func(s *Spec) { s.desc = true }
}

// Limit caps the number of returned rows.
func Limit(n int) Option {
	return func(s *Spec) { s.limit = n }
}

// Offset skips the first n rows.
func Offset(n int) Option {
	return func(s *Spec) { s.offset = n }
}

// NewSpec assembles a specification from options.
func NewSpec(opts ...Option) *Spec {
	s := &Spec{limit: -1, offset: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
