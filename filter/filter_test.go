package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cybermals/Cheetah-ORM/dialect"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// testSchema is a minimal Schema over a fixed descriptor set.
type testSchema struct {
	table  string
	key    string
	fields map[string]*field.Descriptor
}

func (s testSchema) TableName() string { return s.table }
func (s testSchema) KeyColumn() string { return s.key }
func (s testSchema) Field(name string) (*field.Descriptor, bool) {
	d, ok := s.fields[name]
	return d, ok
}

func userSchema() testSchema {
	fields := map[string]*field.Descriptor{
		"name":   field.String("name").Length(32).Descriptor(),
		"logins": field.Int("logins").Descriptor(),
		"pswd":   field.Password("pswd").Descriptor(),
		"admin":  field.Bool("admin").Descriptor(),
		"avatar": field.Binary("avatar").Descriptor(),
	}
	return testSchema{table: "users", key: "id", fields: fields}
}

// TestParseKeyword tests keyword decomposition.
func TestParseKeyword(t *testing.T) {
	tests := []struct {
		name      string
		keyword   string
		first     bool
		field     string
		op        Op
		connector Connector
		wantErr   bool
	}{
		{"eq", "name_eq", true, "name", EQ, None, false},
		{"neq", "name_neq", true, "name", NEQ, None, false},
		{"lt", "logins_lt", true, "logins", LT, None, false},
		{"gt", "logins_gt", true, "logins", GT, None, false},
		{"lte", "logins_lte", true, "logins", LTE, None, false},
		{"gte", "logins_gte", true, "logins", GTE, None, false},
		{"implicit_and", "name_eq", false, "name", EQ, And, false},
		{"explicit_and", "and_name_eq", false, "name", EQ, And, false},
		{"explicit_or", "or_name_eq", false, "name", EQ, Or, false},
		{"field_with_underscores", "last_login_gte", true, "last_login", GTE, None, false},
		{"first_with_and", "and_name_eq", true, "", EQ, None, true},
		{"first_with_or", "or_name_eq", true, "", EQ, None, true},
		{"no_operator", "name", true, "", EQ, None, true},
		{"bare_operator", "_eq", true, "", EQ, None, true},
		{"bare_connector", "or__eq", false, "", EQ, None, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := parseKeyword(tt.keyword, tt.first)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsSyntax(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, term.Field)
			assert.Equal(t, tt.op, term.Op)
			assert.Equal(t, tt.connector, term.Connector)
			assert.Equal(t, tt.keyword, term.Raw)
		})
	}
}

// TestCompile tests clause rendering against a schema.
func TestCompile(t *testing.T) {
	sqlite, _ := dialect.Get(dialect.SQLite)
	schema := userSchema()

	t.Run("empty_spec", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec())
		require.NoError(t, err)
		assert.Equal(t, ` ORDER BY "id" ASC`, clause.Suffix)
		assert.Empty(t, clause.Args)
	})

	t.Run("single_keyword", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec(Kw("logins_lt", 200)))
		require.NoError(t, err)
		assert.Equal(t, ` WHERE ("logins" < ?) ORDER BY "id" ASC`, clause.Suffix)
		assert.Equal(t, []any{int64(200)}, clause.Args)
	})

	t.Run("implicit_and", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec(
			Kw("logins_gte", 10),
			Kw("name_neq", "fangs"),
		))
		require.NoError(t, err)
		assert.Equal(t, ` WHERE ("logins" >= ?) AND ("name" != ?) ORDER BY "id" ASC`, clause.Suffix)
		assert.Equal(t, []any{int64(10), "fangs"}, clause.Args)
	})

	t.Run("explicit_or", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec(
			Kw("name_eq", "fangs"),
			Kw("or_name_eq", "claws"),
		))
		require.NoError(t, err)
		assert.Equal(t, ` WHERE ("name" = ?) OR ("name" = ?) ORDER BY "id" ASC`, clause.Suffix)
	})

	t.Run("order_by_limit_offset", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec(
			Kw("logins_lt", 200),
			OrderBy("name"),
			Descending(),
			Limit(10),
			Offset(20),
		))
		require.NoError(t, err)
		assert.Equal(t, ` WHERE ("logins" < ?) ORDER BY "name" DESC LIMIT 10 OFFSET 20`, clause.Suffix)
	})

	t.Run("order_by_key", func(t *testing.T) {
		clause, err := Compile(sqlite, schema, NewSpec(OrderBy("id"), Descending()))
		require.NoError(t, err)
		assert.Equal(t, ` ORDER BY "id" DESC`, clause.Suffix)
	})

	t.Run("deterministic", func(t *testing.T) {
		spec := func() *Spec {
			return NewSpec(Kw("logins_gte", 10), Kw("and_name_eq", "fangs"), Limit(5))
		}
		a, err := Compile(sqlite, schema, spec())
		require.NoError(t, err)
		b, err := Compile(sqlite, schema, spec())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

// TestCompilePlaceholders tests placeholder numbering per dialect.
func TestCompilePlaceholders(t *testing.T) {
	postgres, _ := dialect.Get(dialect.Postgres)
	mysql, _ := dialect.Get(dialect.MySQL)
	schema := userSchema()

	spec := func() *Spec {
		return NewSpec(Kw("logins_gte", 10), Kw("logins_lte", 100))
	}

	clause, err := Compile(postgres, schema, spec())
	require.NoError(t, err)
	assert.Equal(t, ` WHERE ("logins" >= $1) AND ("logins" <= $2) ORDER BY "id" ASC`, clause.Suffix)

	clause, err = Compile(mysql, schema, spec())
	require.NoError(t, err)
	assert.Equal(t, " WHERE (`logins` >= ?) AND (`logins` <= ?) ORDER BY `id` ASC", clause.Suffix)
}

// TestCompileErrors tests the failure modes of compilation.
func TestCompileErrors(t *testing.T) {
	sqlite, _ := dialect.Get(dialect.SQLite)
	schema := userSchema()

	t.Run("unknown_field", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("missing_eq", 1)))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
		assert.Contains(t, err.Error(), "missing_eq")
	})

	t.Run("first_keyword_connector", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("or_name_eq", "fangs")))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
	})

	t.Run("password_filter", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("pswd_eq", "cheetah")))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
	})

	t.Run("relational_on_bool", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("admin_lt", true)))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
	})

	t.Run("relational_on_binary", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("avatar_gte", []byte{1})))
		require.Error(t, err)
	})

	t.Run("equality_on_bool_allowed", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("admin_eq", true)))
		require.NoError(t, err)
	})

	t.Run("bad_value", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Kw("logins_eq", "many")))
		require.Error(t, err)
		assert.False(t, IsSyntax(err), "value errors are validation errors")
	})

	t.Run("unknown_order_field", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(OrderBy("missing")))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
	})

	t.Run("offset_without_limit", func(t *testing.T) {
		_, err := Compile(sqlite, schema, NewSpec(Offset(5)))
		require.Error(t, err)
		assert.True(t, IsSyntax(err))
	})
}

// TestSyntaxErrorMatching tests sentinel matching.
func TestSyntaxErrorMatching(t *testing.T) {
	err := &SyntaxError{Keyword: "name", Reason: "missing comparison operator suffix"}
	assert.True(t, IsSyntax(err))
	assert.Contains(t, err.Error(), `"name"`)
	assert.False(t, IsSyntax(nil))
}
