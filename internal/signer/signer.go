package signer

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/order"
)

var (
	ErrKeyUnavailable = errors.New("signing key is not available")
	ErrDomainMismatch = errors.New("order was built for a different signing domain")
)

var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "receiver", Type: "address"},
		{Name: "makerAsset", Type: "address"},
		{Name: "takerAsset", Type: "address"},
		{Name: "makingAmount", Type: "uint256"},
		{Name: "takingAmount", Type: "uint256"},
		{Name: "makerTraits", Type: "uint256"},
	},
}

// Signer produces EIP-712 signatures over order tuples for a single signing
// domain. One signer never signs for another chain or verifying contract.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address

	domain    apitypes.TypedDataDomain
	chainID   int64
	verifying common.Address
}

func New(key *ecdsa.PrivateKey, name, version string, chainID int64, verifyingContract common.Address) (*Signer, error) {
	if key == nil {
		return nil, ErrKeyUnavailable
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		domain: apitypes.TypedDataDomain{
			Name:              name,
			Version:           version,
			ChainId:           math.NewHexOrDecimal256(chainID),
			VerifyingContract: verifyingContract.String(),
		},
		chainID:   chainID,
		verifying: verifyingContract,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// CheckDomain guards against cross-chain replay: an order hashed for one
// domain must not be signed or submitted against another.
func (s *Signer) CheckDomain(chainID int64, verifyingContract common.Address) error {
	if chainID != s.chainID || verifyingContract != s.verifying {
		return errors.From(ErrDomainMismatch, logan.F{
			"want_chain_id": s.chainID,
			"got_chain_id":  chainID,
			"want_contract": s.verifying.String(),
			"got_contract":  verifyingContract.String(),
		})
	}
	return nil
}

// Sign returns the 65-byte signature and the domain-separated order hash the
// relay and the protocol identify the order by. Deterministic comparison of
// the typed-data struct hash against Order.Hash guards the two encodings
// against drifting apart.
func (s *Signer) Sign(o *order.Order) (sig []byte, orderHash common.Hash, err error) {
	typed := apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "Order",
		Domain:      s.domain,
		Message: apitypes.TypedDataMessage{
			"salt":         (*math.HexOrDecimal256)(o.Salt),
			"maker":        o.Maker.String(),
			"receiver":     o.Receiver.String(),
			"makerAsset":   o.MakerAsset.String(),
			"takerAsset":   o.TakerAsset.String(),
			"makingAmount": (*math.HexOrDecimal256)(o.MakingAmount),
			"takingAmount": (*math.HexOrDecimal256)(o.TakingAmount),
			"makerTraits":  (*math.HexOrDecimal256)(o.Traits.Encode()),
		},
	}

	structHash, err := typed.HashStruct(typed.PrimaryType, typed.Message)
	if err != nil {
		return nil, common.Hash{}, errors.Wrap(err, "failed to hash order message")
	}
	if common.BytesToHash(structHash) != o.Hash() {
		return nil, common.Hash{}, errors.New("typed-data struct hash diverged from the order hash")
	}

	domainSep, err := typed.HashStruct("EIP712Domain", typed.Domain.Map())
	if err != nil {
		return nil, common.Hash{}, errors.Wrap(err, "failed to hash signing domain")
	}

	digest := crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSep, structHash)
	sig, err = crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, common.Hash{}, errors.Wrap(err, "failed to sign order digest")
	}
	sig[64] += 27

	return sig, digest, nil
}

// SignCancellation authorizes a relay-side cancellation of the order with a
// personal-sign signature over its hash.
func (s *Signer) SignCancellation(orderHash common.Hash) ([]byte, error) {
	digest := accounts.TextHash(orderHash.Bytes())
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign cancellation digest")
	}
	sig[64] += 27
	return sig, nil
}
