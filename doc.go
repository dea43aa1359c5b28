// Package cheetah is a database-neutral object-relational mapping layer.
// Declarative data models compile into SQL schema and CRUD statements, and
// a keyword-based filter mini-language translates into dialect-correct
// WHERE/ORDER BY/LIMIT clauses across SQLite, MySQL/MariaDB and PostgreSQL.
//
// # Connecting
//
//	session, err := cheetah.Connect(ctx, "sqlite3", cheetah.Database("app.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
// # Declaring models
//
//	users, err := session.NewModel("User", []field.Definition{
//	    field.String("name").Length(32).NotNull().Unique(),
//	    field.Password("pswd").Length(128).NotNull(),
//	    field.String("email").Length(128).NotNull(),
//	    field.Int("logins").Default(0),
//	    field.DateTime("joined").NotNull().DefaultNow(),
//	})
//	posts, err := session.NewModel("Post", []field.Definition{
//	    field.ForeignKey("author", users).NotNull(),
//	    field.String("content").Length(65535).NotNull(),
//	    field.DateTime("date").NotNull().DefaultNow(),
//	})
//
// Declaring a model with a foreign key installs a pluralized backreference
// on the referenced model: every User instance exposes "Posts", a live
// filtered query for the posts referencing it.
//
// # Working with instances
//
//	dylan, _ := users.Create(cheetah.Values{"name": "Dylan", "pswd": "cheetah", "email": "d@x.com"})
//	if err := dylan.Save(ctx); err != nil { ... }
//
//	matches, _ := users.Filter(ctx, filter.Kw("name_eq", "Dylan"))
//	pswd, _ := matches[0].Get("pswd")
//	pswd.(field.PasswordValue).Matches("cheetah") // true
//
// Field values validate at assignment time; Save issues an INSERT for new
// instances and an UPDATE of only the changed columns otherwise.
// SaveDeferred executes without committing so several instances can be
// made durable together by the next committing Save or Session.Commit.
package cheetah
