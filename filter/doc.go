// Package filter implements the keyword filter mini-language of Cheetah ORM
// and its compilation into dialect-correct SQL clauses.
//
// A filter keyword has the grammar
//
//	[or_|and_]<field>_<op>
//
// where op is one of eq, neq, lt, gt, lte or gte. A missing connector
// prefix means an implicit "and". Keywords combine strictly left to right
// in the order the caller supplied them; each term is parenthesized
// individually and joined with the literal connector, so no operator
// precedence is ever assumed.
//
//	users.Filter(ctx,
//	    filter.Kw("logins_lt", 200),
//	    filter.Kw("or_name_eq", "Dylan"),
//	    filter.OrderBy("name"),
//	    filter.Limit(10),
//	)
//
// compiles (for SQLite) to
//
//	WHERE ("logins" < ?) OR ("name" = ?) ORDER BY "name" ASC LIMIT 10
//
// Malformed or unknown keywords and operators incompatible with the field
// kind fail with *SyntaxError before any SQL executes.
package filter
