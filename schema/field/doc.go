// Package field provides fluent builders for defining data model fields in
// Cheetah ORM.
//
// A field is declared with a kind constructor and configured with a chain
// of options:
//
//	field.String("name").Length(32).NotNull().Unique()
//	field.Int("logins").Default(0)
//	field.DateTime("joined").NotNull().DefaultNow()
//	field.Password("pswd").Length(128).NotNull()
//	field.ForeignKey("author", users).NotNull()
//
// # Field Kinds
//
//	field.Int("count")          // INTEGER
//	field.BigInt("views")       // BIGINT
//	field.Float("ratio")        // FLOAT / REAL
//	field.Double("score")       // DOUBLE PRECISION
//	field.Bool("active")        // BOOLEAN
//	field.String("name")        // VARCHAR(n)
//	field.Binary("token")       // BLOB / BYTEA
//	field.DateTime("joined")    // DATETIME / TIMESTAMP
//	field.Password("pswd")      // VARCHAR(n), one-way hashed
//	field.UUID("ref")           // CHAR(36) / UUID
//	field.ForeignKey("user", m) // key type of the referenced model
//
// # Value Pipeline
//
// Every descriptor knows how to validate and coerce an assigned value
// (Validate), convert it to a driver-native scalar (ToStorage) and decode a
// scanned column back into its Go-level value (FromStorage). Validation
// failures are reported as *ValidationError at assignment time, never
// deferred to save.
//
// # Passwords
//
// Password fields hash on assignment with PBKDF2-SHA256 and a per-value
// random salt. Reading the field back yields an opaque Password value whose
// Matches method verifies a plaintext candidate. The plaintext is never
// stored or recoverable.
package field
