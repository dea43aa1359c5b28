package filter

import "strings"

var opSuffixes = []struct {
	suffix string
	op     Op
}{
	{"_neq", NEQ},
	{"_lte", LTE},
	{"_gte", GTE},
	{"_eq", EQ},
	{"_lt", LT},
	{"_gt", GT},
}

// parseKeyword splits a raw keyword into its connector, field name and
// operator. first reports whether this is the first keyword of the filter:
// the first term must not carry a connector, later terms default to And.
func parseKeyword(key string, first bool) (Term, error) {
	t := Term{Connector: And, Raw: key}
	rest := key
	switch {
	case strings.HasPrefix(rest, "and_"):
		rest = rest[len("and_"):]
	case strings.HasPrefix(rest, "or_"):
		t.Connector = Or
		rest = rest[len("or_"):]
	default:
		if first {
			t.Connector = None
		}
	}
	if first && t.Connector != None {
		return Term{}, &SyntaxError{Keyword: key, Reason: "the first keyword cannot carry a boolean connector"}
	}
	for _, s := range opSuffixes {
		if strings.HasSuffix(rest, s.suffix) {
			t.Field = rest[:len(rest)-len(s.suffix)]
			t.Op = s.op
			if t.Field == "" {
				return Term{}, &SyntaxError{Keyword: key, Reason: "missing field name"}
			}
			return t, nil
		}
	}
	return Term{}, &SyntaxError{Keyword: key, Reason: "missing comparison operator suffix"}
}

// Parse turns the spec's keywords into an ordered term list. Values are
// carried through untouched; Compile coerces them against the schema.
func (s *Spec) Parse() ([]Term, error) {
	terms := make([]Term, 0, len(s.keywords))
	for i, kw := range s.keywords {
		t, err := parseKeyword(kw.key, i == 0)
		if err != nil {
			return nil, err
		}
		t.Value = kw.value
		terms = append(terms, t)
	}
	return terms, nil
}
