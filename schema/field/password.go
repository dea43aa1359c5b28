package field

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 29000
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32
	pbkdf2Ident      = "pbkdf2-sha256"
)

// Hashes use passlib's adapted base64: unpadded standard base64 with "."
// in place of "+", so hashes written by the Python implementation verify
// unchanged and ours verify under it.
func ab64Encode(b []byte) string {
	return strings.ReplaceAll(base64.RawStdEncoding.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// PasswordValue is the opaque value held by a password field. It carries
// only the salted PBKDF2-SHA256 hash; the plaintext is never stored and
// cannot be reconstructed.
type PasswordValue struct {
	hash string
}

// HashPassword hashes a plaintext password with a fresh random salt.
func HashPassword(plaintext string) (PasswordValue, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return PasswordValue{}, err
	}
	key := pbkdf2.Key([]byte(plaintext), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	hash := fmt.Sprintf("$%s$%d$%s$%s", pbkdf2Ident, pbkdf2Iterations, ab64Encode(salt), ab64Encode(key))
	return PasswordValue{hash: hash}, nil
}

// PasswordFromHash wraps an already-encoded hash, as read from storage.
func PasswordFromHash(hash string) PasswordValue {
	return PasswordValue{hash: hash}
}

// Hash returns the encoded hash string stored in the database.
func (p PasswordValue) Hash() string { return p.hash }

// String returns the encoded hash, never the plaintext.
func (p PasswordValue) String() string { return p.hash }

// Matches re-derives the hash from the candidate plaintext with the stored
// salt and iteration count and compares in constant time.
func (p PasswordValue) Matches(plaintext string) bool {
	parts := strings.Split(p.hash, "$")
	// Leading "$" yields an empty first element.
	if len(parts) != 5 || parts[1] != pbkdf2Ident {
		return false
	}
	iter, err := strconv.Atoi(parts[2])
	if err != nil || iter <= 0 {
		return false
	}
	salt, err := ab64Decode(parts[3])
	if err != nil {
		return false
	}
	want, err := ab64Decode(parts[4])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(plaintext), salt, iter, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
