package cheetah

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cybermals/Cheetah-ORM/dialect"
	csql "github.com/Cybermals/Cheetah-ORM/dialect/sql"
	"github.com/Cybermals/Cheetah-ORM/schema/field"
)

// newMockSession returns a session over a sqlmock database.
func newMockSession(t *testing.T, dialectName string, opts ...Option) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSession(csql.OpenDB(dialectName, db), opts...), mock
}

// TestNewModel tests model declaration and table naming.
func TestNewModel(t *testing.T) {
	s, _ := newMockSession(t, dialect.SQLite)

	t.Run("declaration", func(t *testing.T) {
		user, err := s.NewModel("User", []FieldDefinition{
			field.String("name").Length(32).NotNull().Unique(),
			field.Int("logins").NotNull().Default(0),
		})
		require.NoError(t, err)
		assert.Equal(t, "User", user.ModelName())
		assert.Equal(t, "users", user.TableName())
		assert.Equal(t, "id", user.KeyColumn())
		assert.Len(t, user.Fields(), 2)

		d, ok := user.Field("name")
		require.True(t, ok)
		assert.Equal(t, field.KindString, d.Kind())

		registered, ok := s.Registry().Model("User")
		require.True(t, ok)
		assert.Same(t, user, registered)
	})

	t.Run("compound_name_pluralizes", func(t *testing.T) {
		m, err := s.NewModel("UserProfile", []FieldDefinition{
			field.String("bio"),
		})
		require.NoError(t, err)
		assert.Equal(t, "user_profiles", m.TableName())
	})

	t.Run("table_override", func(t *testing.T) {
		m, err := s.NewModel("Legacy", []FieldDefinition{
			field.String("name"),
		}, WithTable("legacy_records"))
		require.NoError(t, err)
		assert.Equal(t, "legacy_records", m.TableName())
	})

	t.Run("duplicate_model", func(t *testing.T) {
		_, err := s.NewModel("User", []FieldDefinition{field.String("name")})
		require.Error(t, err)
	})

	t.Run("duplicate_field", func(t *testing.T) {
		_, err := s.NewModel("Dup", []FieldDefinition{
			field.String("name"),
			field.Int("name"),
		})
		require.Error(t, err)
	})

	t.Run("two_key_fields", func(t *testing.T) {
		_, err := s.NewModel("TwoKeys", []FieldDefinition{
			field.Int("a").Key(),
			field.Int("b").Key(),
		})
		require.Error(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		_, err := s.NewModel("", []FieldDefinition{field.String("name")})
		require.Error(t, err)
	})

	t.Run("builder_error_surfaces", func(t *testing.T) {
		_, err := s.NewModel("Bad", []FieldDefinition{field.String("")})
		require.Error(t, err)
	})
}

// TestExplicitKey tests models with a declared primary-key field.
func TestExplicitKey(t *testing.T) {
	s, _ := newMockSession(t, dialect.SQLite)

	m, err := s.NewModel("Device", []FieldDefinition{
		field.UUID("serial").Key(),
		field.String("name"),
	})
	require.NoError(t, err)
	assert.Equal(t, "serial", m.KeyColumn())
}

// TestForeignKeyResolution tests reference binding and backreferences.
func TestForeignKeyResolution(t *testing.T) {
	s, _ := newMockSession(t, dialect.SQLite)

	user, err := s.NewModel("User", []FieldDefinition{
		field.String("name").Length(32).NotNull(),
	})
	require.NoError(t, err)

	t.Run("direct_reference", func(t *testing.T) {
		post, err := s.NewModel("Post", []FieldDefinition{
			field.String("title").NotNull(),
			field.ForeignKey("author", user).NotNull(),
		})
		require.NoError(t, err)

		d, ok := post.Field("author")
		require.True(t, ok)
		assert.Equal(t, "User", d.Reference().ModelName())
	})

	t.Run("backref_installed", func(t *testing.T) {
		assert.Contains(t, user.Backrefs(), "Posts")
	})

	t.Run("late_bound_reference", func(t *testing.T) {
		comment, err := s.NewModel("Comment", []FieldDefinition{
			field.String("body").NotNull(),
			field.ForeignKeyTo("post", "Post"),
		})
		require.NoError(t, err)

		d, _ := comment.Field("post")
		assert.Equal(t, "Post", d.Reference().ModelName())
	})

	t.Run("self_reference", func(t *testing.T) {
		node, err := s.NewModel("Node", []FieldDefinition{
			field.String("name"),
			field.ForeignKeyTo("parent", "Node"),
		})
		require.NoError(t, err)

		d, _ := node.Field("parent")
		assert.Equal(t, "Node", d.Reference().ModelName())
		assert.Contains(t, node.Backrefs(), "Nodes")
	})

	t.Run("unknown_reference", func(t *testing.T) {
		_, err := s.NewModel("Orphan", []FieldDefinition{
			field.ForeignKeyTo("owner", "Missing"),
		})
		require.Error(t, err)
		assert.True(t, IsUnresolvedReference(err))
	})
}
