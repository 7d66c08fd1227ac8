package order

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
	"github.com/IndexFi/oracle-order-svc/internal/predicate"
)

var (
	ErrInvalidAmount         = errors.New("order amounts must be positive")
	ErrSameAsset             = errors.New("maker and taker assets must differ")
	ErrExpired               = errors.New("expiration must be in the future")
	ErrSaltExtensionMismatch = errors.New("salt must be derived from the extension, not chosen independently")
)

// Params describes the order to build. Salt may only be set for orders
// without a condition: a conditional order carries an extension and its salt
// is derived, never chosen.
type Params struct {
	Maker        common.Address
	Receiver     common.Address
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount *big.Int
	TakingAmount *big.Int

	Expiration         time.Time
	Nonce              uint64
	AllowPartialFill   bool
	AllowMultipleFills bool

	Condition *condition.Condition
	Salt      *big.Int
}

// Builder assembles unsigned orders, compiling the condition into the
// extension predicate and coupling the salt to the extension bytes.
type Builder struct {
	compiler *predicate.Compiler
}

func NewBuilder(compiler *predicate.Compiler) *Builder {
	return &Builder{compiler: compiler}
}

func (b *Builder) Build(p Params) (*Order, error) {
	if p.MakingAmount == nil || p.MakingAmount.Sign() <= 0 ||
		p.TakingAmount == nil || p.TakingAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.MakerAsset == p.TakerAsset {
		return nil, ErrSameAsset
	}
	if !p.Expiration.After(time.Now()) {
		return nil, errors.From(ErrExpired, logan.F{"expiration": p.Expiration})
	}

	var extension []byte
	if p.Condition != nil {
		if p.Salt != nil {
			return nil, ErrSaltExtensionMismatch
		}
		pred, err := b.compiler.Compile(*p.Condition)
		if err != nil {
			return nil, errors.Wrap(err, "failed to compile condition predicate")
		}
		extension = BuildExtension(pred)
	}

	salt := p.Salt
	if len(extension) > 0 {
		salt = DeriveSalt(extension)
	}
	if salt == nil {
		return nil, errors.New("salt is required for orders without an extension")
	}

	o := &Order{
		Salt:         salt,
		Maker:        p.Maker,
		Receiver:     p.Receiver,
		MakerAsset:   p.MakerAsset,
		TakerAsset:   p.TakerAsset,
		MakingAmount: p.MakingAmount,
		TakingAmount: p.TakingAmount,
		Traits: MakerTraits{
			HasExtension:       len(extension) > 0,
			AllowPartialFill:   p.AllowPartialFill,
			AllowMultipleFills: p.AllowMultipleFills,
			Nonce:              p.Nonce,
			ExpiresAt:          p.Expiration.UTC(),
		},
		Extension: extension,
	}
	if p.Condition != nil {
		o.Condition = *p.Condition
	}

	return o, nil
}

// Validate re-checks the salt/extension coupling on an already-built order.
// Runs before every submission so an inconsistent order never reaches the
// relay.
func Validate(o *Order) error {
	if o.Salt == nil {
		return errors.New("order salt is not set")
	}
	if len(o.Extension) > 0 {
		if !o.Traits.HasExtension {
			return errors.New("extension present but not flagged in traits")
		}
		if o.Salt.Cmp(DeriveSalt(o.Extension)) != 0 {
			return ErrSaltExtensionMismatch
		}
	} else if o.Traits.HasExtension {
		return errors.New("traits flag an extension the order does not carry")
	}
	return nil
}
