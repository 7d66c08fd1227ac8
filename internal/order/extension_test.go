package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionPredicateRoundTrip(t *testing.T) {
	pred := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}

	ext := BuildExtension(pred)
	require.Len(t, ext, 32+len(pred))

	got, err := ExtensionPredicate(ext)
	require.NoError(t, err)
	assert.Equal(t, pred, got)
}

func TestEmptyExtension(t *testing.T) {
	assert.Nil(t, BuildExtension(nil))

	got, err := ExtensionPredicate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExtensionPredicateMalformed(t *testing.T) {
	_, err := ExtensionPredicate([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestDeriveSalt(t *testing.T) {
	ext := BuildExtension([]byte{0xde, 0xad, 0xbe, 0xef})

	salt := DeriveSalt(ext)
	require.NotNil(t, salt)
	assert.LessOrEqual(t, salt.BitLen(), 160)
	assert.Equal(t, salt, DeriveSalt(ext), "derivation must be stable")

	other := DeriveSalt(BuildExtension([]byte{0xde, 0xad, 0xbe, 0xee}))
	assert.NotEqual(t, salt, other)

	assert.Nil(t, DeriveSalt(nil))
}
