package filter

import (
	"fmt"
	"strings"

	"github.com/Cybermals/Cheetah-ORM/dialect"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// Schema is the view of a data model the compiler validates keywords
// against. It is implemented by cheetah.Model.
type Schema interface {
	TableName() string
	KeyColumn() string
	Field(name string) (*field.Descriptor, bool)
}

// A Clause is a compiled filter: the statement text following the FROM
// clause (possibly empty WHERE, always an ORDER BY) and the ordered bound
// parameters.
type Clause struct {
	// Suffix is the rendered "WHERE ... ORDER BY ... LIMIT ..." text,
	// including a leading space.
	Suffix string
	// Args are the bound parameter values in placeholder order.
	Args []any
}

// Compile renders the spec against the given schema and dialect adapter.
// Identical specs always compile to identical clause text and parameter
// lists.
func Compile(a *dialect.Adapter, s Schema, spec *Spec) (Clause, error) {
	terms, err := spec.Parse()
	if err != nil {
		return Clause{}, err
	}
	var (
		b    strings.Builder
		args = make([]any, 0, len(terms))
	)
	for i, t := range terms {
		desc, ok := s.Field(t.Field)
		if !ok {
			return Clause{}, &SyntaxError{
				Keyword: t.Raw,
				Reason:  fmt.Sprintf("model %q has no field %q", s.TableName(), t.Field),
			}
		}
		if err := checkOp(desc, t); err != nil {
			return Clause{}, err
		}
		bound, err := desc.FilterValue(a, t.Value)
		if err != nil {
			return Clause{}, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" " + t.Connector.String() + " ")
		}
		args = append(args, bound)
		fmt.Fprintf(&b, "(%s %s %s)", a.Quote(t.Field), t.Op.SQL(), a.Placeholder(len(args)))
	}
	orderBy := spec.orderBy
	if orderBy == "" {
		orderBy = s.KeyColumn()
	} else if _, ok := s.Field(orderBy); !ok && orderBy != s.KeyColumn() {
		return Clause{}, &SyntaxError{
			Keyword: orderBy,
			Reason:  fmt.Sprintf("model %q has no field %q to order by", s.TableName(), orderBy),
		}
	}
	direction := "ASC"
	if spec.desc {
		direction = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s", a.Quote(orderBy), direction)
	if spec.limit >= 0 {
		fmt.Fprintf(&b, " LIMIT %d", spec.limit)
		if spec.offset >= 0 {
			fmt.Fprintf(&b, " OFFSET %d", spec.offset)
		}
	} else if spec.offset >= 0 {
		return Clause{}, &SyntaxError{Reason: "offset requires a limit"}
	}
	return Clause{Suffix: b.String(), Args: args}, nil
}

// checkOp validates operator/kind compatibility.
func checkOp(desc *field.Descriptor, t Term) error {
	kind := desc.Kind()
	switch kind {
	case field.KindPassword:
		// Hashes are salted per value; SQL comparison can never match.
		return &SyntaxError{
			Keyword: t.Raw,
			Reason:  "password fields cannot be filtered",
		}
	case field.KindBinary, field.KindForeignKey, field.KindBool, field.KindUUID:
		if t.Op.Relational() {
			return &SyntaxError{
				Keyword: t.Raw,
				Reason:  fmt.Sprintf("operator %s is not applicable to %s fields", t.Op.SQL(), kind),
			}
		}
	}
	return nil
}
