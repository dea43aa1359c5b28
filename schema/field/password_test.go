package field

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHashPassword tests the encoded hash format.
func TestHashPassword(t *testing.T) {
	p, err := HashPassword("cheetah")
	require.NoError(t, err)

	parts := strings.Split(p.Hash(), "$")
	require.Len(t, parts, 5)
	assert.Empty(t, parts[0])
	assert.Equal(t, "pbkdf2-sha256", parts[1])
	assert.Equal(t, "29000", parts[2])
	assert.NotEmpty(t, parts[3])
	assert.NotEmpty(t, parts[4])
}

// TestPasswordMatches tests verification against the stored hash.
func TestPasswordMatches(t *testing.T) {
	p, err := HashPassword("cheetah")
	require.NoError(t, err)

	assert.True(t, p.Matches("cheetah"))
	assert.False(t, p.Matches("wrongpass"))
	assert.False(t, p.Matches(""))
}

// TestPasswordSalting tests that equal plaintexts hash differently.
func TestPasswordSalting(t *testing.T) {
	a, err := HashPassword("cheetah")
	require.NoError(t, err)
	b, err := HashPassword("cheetah")
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.True(t, a.Matches("cheetah"))
	assert.True(t, b.Matches("cheetah"))
}

// TestPasswordFromHash tests round-tripping through storage.
func TestPasswordFromHash(t *testing.T) {
	p, err := HashPassword("cheetah")
	require.NoError(t, err)

	restored := PasswordFromHash(p.Hash())
	assert.True(t, restored.Matches("cheetah"))
	assert.False(t, restored.Matches("wrongpass"))
}

// TestPasswordPasslibHash verifies a hash produced by passlib's
// pbkdf2_sha256, whose adapted base64 substitutes "." for "+" in the
// salt and digest.
func TestPasswordPasslibHash(t *testing.T) {
	const hash = "$pbkdf2-sha256$29000$../rSaDFKuOkUcPBKBWI3w$6ReCqZZ4mEOPvdAQcd8GSOuZ4qhT5tGxBmw.a./BBNI"

	p := PasswordFromHash(hash)
	assert.True(t, p.Matches("cheetah"))
	assert.False(t, p.Matches("wrongpass"))
}

// TestPasswordEncodingIsAdaptedBase64 tests that freshly produced hashes
// never contain "+", matching what passlib expects to read back.
func TestPasswordEncodingIsAdaptedBase64(t *testing.T) {
	for i := 0; i < 32; i++ {
		p, err := HashPassword("cheetah")
		require.NoError(t, err)
		assert.NotContains(t, p.Hash(), "+")
		assert.NotContains(t, p.Hash(), "=")
	}
}

// TestPasswordNeverLeaksPlaintext tests the string form.
func TestPasswordNeverLeaksPlaintext(t *testing.T) {
	p, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotContains(t, p.String(), "hunter2")
	assert.Equal(t, p.Hash(), p.String())
}

// TestPasswordMalformedHash tests verification against bad stored data.
func TestPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$10$abc$def",
		"$pbkdf2-sha256$notanumber$abc$def",
		"$pbkdf2-sha256$29000$!!!$def",
	} {
		assert.False(t, PasswordFromHash(hash).Matches("cheetah"), "hash %q", hash)
	}
}
