package order

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// The extension is a table of 8 dynamic fields: a 32-byte word of cumulative
// uint32 end-offsets followed by the concatenated field bytes. Field i's
// offset sits in bytes [32-4(i+1), 32-4i) of the word. Only the predicate
// slot is populated here.
const (
	extensionSlots   = 8
	predicateSlot    = 4
	offsetsWordBytes = 32
)

const saltBits = 160

var saltMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), saltBits), big.NewInt(1))

// BuildExtension packs the predicate into its slot of the extension table.
// An empty predicate yields an empty extension.
func BuildExtension(predicate []byte) []byte {
	if len(predicate) == 0 {
		return nil
	}

	offsets := make([]byte, offsetsWordBytes)
	cum := uint32(0)
	for i := 0; i < extensionSlots; i++ {
		if i == predicateSlot {
			cum += uint32(len(predicate))
		}
		binary.BigEndian.PutUint32(offsets[offsetsWordBytes-4*(i+1):offsetsWordBytes-4*i], cum)
	}

	out := make([]byte, 0, offsetsWordBytes+len(predicate))
	out = append(out, offsets...)
	out = append(out, predicate...)
	return out
}

// ExtensionPredicate extracts the predicate bytes back out of an extension.
func ExtensionPredicate(extension []byte) ([]byte, error) {
	if len(extension) == 0 {
		return nil, nil
	}
	if len(extension) < offsetsWordBytes {
		return nil, errors.New("extension is shorter than its offsets word")
	}

	start := uint32(0)
	if predicateSlot > 0 {
		start = binary.BigEndian.Uint32(extension[offsetsWordBytes-4*predicateSlot : offsetsWordBytes-4*(predicateSlot-1)])
	}
	end := binary.BigEndian.Uint32(extension[offsetsWordBytes-4*(predicateSlot+1) : offsetsWordBytes-4*predicateSlot])
	if int(end) > len(extension)-offsetsWordBytes || start > end {
		return nil, errors.New("extension offsets are out of bounds")
	}

	return extension[offsetsWordBytes+start : offsetsWordBytes+end], nil
}

// DeriveSalt computes the only salt the relay accepts for an order carrying
// this extension: keccak256 of the extension bytes truncated to 160 bits.
// Must stay byte-identical to the relay's own derivation.
func DeriveSalt(extension []byte) *big.Int {
	if len(extension) == 0 {
		return nil
	}
	h := crypto.Keccak256Hash(extension)
	return new(big.Int).And(h.Big(), saltMask)
}
