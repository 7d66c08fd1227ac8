package order

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
)

// TypeHash commits to the order tuple layout the swap protocol verifies
// signatures against.
var TypeHash = crypto.Keccak256Hash([]byte(
	"Order(uint256 salt,address maker,address receiver,address makerAsset,address takerAsset,uint256 makingAmount,uint256 takingAmount,uint256 makerTraits)",
))

// Order is an unsigned conditional swap order. All fields are immutable once
// hashed; addresses cross into their uint256 wire form only inside Hash.
type Order struct {
	Salt         *big.Int
	Maker        common.Address
	Receiver     common.Address
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount *big.Int
	TakingAmount *big.Int
	Traits       MakerTraits

	Extension []byte
	Condition condition.Condition
}

// Hash is the EIP-712 struct hash of the immutable order tuple. It is a pure
// function of the fields: the domain separator is applied by the signer, not
// here.
func (o *Order) Hash() common.Hash {
	enc := make([]byte, 0, 9*32)
	enc = append(enc, TypeHash.Bytes()...)
	enc = append(enc, math.U256Bytes(o.Salt)...)
	enc = append(enc, common.LeftPadBytes(o.Maker.Bytes(), 32)...)
	enc = append(enc, common.LeftPadBytes(o.Receiver.Bytes(), 32)...)
	enc = append(enc, common.LeftPadBytes(o.MakerAsset.Bytes(), 32)...)
	enc = append(enc, common.LeftPadBytes(o.TakerAsset.Bytes(), 32)...)
	enc = append(enc, math.U256Bytes(o.MakingAmount)...)
	enc = append(enc, math.U256Bytes(o.TakingAmount)...)
	enc = append(enc, math.U256Bytes(o.Traits.Encode())...)
	return crypto.Keccak256Hash(enc)
}
