package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTraitsRoundTrip(t *testing.T) {
	in := MakerTraits{
		HasExtension:       true,
		AllowPartialFill:   true,
		AllowMultipleFills: true,
		Nonce:              42,
		ExpiresAt:          time.Unix(1700000000, 0).UTC(),
	}

	assert.Equal(t, in, DecodeTraits(in.Encode()))
}

func TestTraitsFlagsIndependent(t *testing.T) {
	base := MakerTraits{ExpiresAt: time.Unix(1700000000, 0).UTC()}

	decoded := DecodeTraits(base.Encode())
	assert.False(t, decoded.HasExtension)
	assert.False(t, decoded.AllowPartialFill)
	assert.False(t, decoded.AllowMultipleFills)

	base.HasExtension = true
	decoded = DecodeTraits(base.Encode())
	assert.True(t, decoded.HasExtension)
	assert.False(t, decoded.AllowMultipleFills)
}

func TestTraitsZeroExpiration(t *testing.T) {
	decoded := DecodeTraits(MakerTraits{AllowPartialFill: true}.Encode())
	assert.True(t, decoded.ExpiresAt.IsZero())
}
