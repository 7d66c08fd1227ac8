package order

import (
	"math/big"
	"time"
)

// MakerTraits is the capability set packed into the order's traits word:
// fill-mode flags, extension marker, nonce and expiration. Raw bit positions
// never leave this file.
type MakerTraits struct {
	HasExtension       bool
	AllowPartialFill   bool
	AllowMultipleFills bool
	Nonce              uint64
	ExpiresAt          time.Time
}

// Swap protocol traits layout: flags occupy the high byte, the low 200 bits
// carry packed uint40 fields.
const (
	noPartialFillsBit     = 255
	allowMultipleFillsBit = 254
	hasExtensionBit       = 249

	nonceOffset      = 120
	expirationOffset = 80
	uint40Mask       = 1<<40 - 1
)

func (t MakerTraits) Encode() *big.Int {
	v := new(big.Int)
	if !t.AllowPartialFill {
		v.SetBit(v, noPartialFillsBit, 1)
	}
	if t.AllowMultipleFills {
		v.SetBit(v, allowMultipleFillsBit, 1)
	}
	if t.HasExtension {
		v.SetBit(v, hasExtensionBit, 1)
	}

	nonce := new(big.Int).SetUint64(t.Nonce & uint40Mask)
	v.Or(v, nonce.Lsh(nonce, nonceOffset))

	if !t.ExpiresAt.IsZero() {
		exp := new(big.Int).SetUint64(uint64(t.ExpiresAt.Unix()) & uint40Mask)
		v.Or(v, exp.Lsh(exp, expirationOffset))
	}
	return v
}

func DecodeTraits(v *big.Int) MakerTraits {
	t := MakerTraits{
		AllowPartialFill:   v.Bit(noPartialFillsBit) == 0,
		AllowMultipleFills: v.Bit(allowMultipleFillsBit) == 1,
		HasExtension:       v.Bit(hasExtensionBit) == 1,
	}

	t.Nonce = new(big.Int).Rsh(v, nonceOffset).Uint64() & uint40Mask
	exp := new(big.Int).Rsh(v, expirationOffset).Uint64() & uint40Mask
	if exp != 0 {
		t.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return t
}
