package predicate

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
	"github.com/IndexFi/oracle-order-svc/internal/oracle"
)

var (
	ErrUnsupportedOperator = errors.New("operator has no on-chain predicate primitive")
	ErrThresholdOutOfRange = errors.New("threshold cannot be translated to a strict comparison")
)

// helperABI is the swap protocol's predicate grammar. Only strict gt/lt and a
// scoped static call are available as primitives.
const helperABI = `[
	{"name":"gt","type":"function","stateMutability":"view","inputs":[{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"lt","type":"function","stateMutability":"view","inputs":[{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"arbitraryStaticCall","type":"function","stateMutability":"view","inputs":[{"name":"target","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var helper abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(helperABI))
	if err != nil {
		panic(errors.Wrap(err, "failed to parse predicate helper ABI"))
	}
	helper = parsed
}

// Compiler translates conditions into predicate bytes evaluable by the swap
// protocol. Output is deterministic: the same condition against the same
// contract pair always compiles to identical bytes.
type Compiler struct {
	oracleAddress common.Address
	swapAddress   common.Address
}

func NewCompiler(oracleAddress, swapAddress common.Address) *Compiler {
	return &Compiler{
		oracleAddress: oracleAddress,
		swapAddress:   swapAddress,
	}
}

// Compile builds the predicate: a static call fetching the index value,
// wrapped into a strict comparison, prefixed with the swap protocol address
// that scopes the evaluation.
//
// The grammar has no >=, <= or == primitive. GTE and LTE rely on values being
// scaled fixed-point integers with unit step 1: gte(t) becomes gt(t-1) and
// lte(t) becomes lt(t+1). EQ would need an AND combinator the protocol does
// not expose, so it is rejected here and stays monitoring-only.
func (c *Compiler) Compile(cond condition.Condition) ([]byte, error) {
	if err := cond.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid condition")
	}

	threshold := new(big.Int).Set(cond.Threshold)
	method := ""
	switch cond.Operator {
	case condition.GT:
		method = "gt"
	case condition.LT:
		method = "lt"
	case condition.GTE:
		if threshold.Sign() == 0 {
			return nil, errors.From(ErrThresholdOutOfRange, logan.F{"operator": "gte", "threshold": "0"})
		}
		method = "gt"
		threshold.Sub(threshold, big.NewInt(1))
	case condition.LTE:
		method = "lt"
		threshold.Add(threshold, big.NewInt(1))
	case condition.EQ:
		return nil, errors.From(ErrUnsupportedOperator, logan.F{"operator": "eq"})
	default:
		return nil, errors.From(ErrUnsupportedOperator, logan.F{"operator": cond.Operator.String()})
	}

	readCall, err := oracle.PackGetIndexValue(cond.IndexID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode index read call")
	}

	staticCall, err := helper.Pack("arbitraryStaticCall", c.oracleAddress, readCall)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode arbitraryStaticCall")
	}

	comparison, err := helper.Pack(method, threshold, staticCall)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode comparison", logan.F{"method": method})
	}

	out := make([]byte, 0, common.AddressLength+len(comparison))
	out = append(out, c.swapAddress.Bytes()...)
	out = append(out, comparison...)
	return out, nil
}
