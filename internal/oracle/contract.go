package oracle

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// IndexOracleABI mirrors the deployed index oracle contract surface.
const IndexOracleABI = `[
	{"name":"getIndexValue","type":"function","stateMutability":"view","inputs":[{"name":"indexId","type":"uint256"}],"outputs":[{"name":"value","type":"uint256"},{"name":"timestamp","type":"uint256"}]},
	{"name":"getIndex","type":"function","stateMutability":"view","inputs":[{"name":"indexId","type":"uint256"}],"outputs":[{"name":"value","type":"uint256"},{"name":"timestamp","type":"uint256"},{"name":"active","type":"bool"},{"name":"oracleType","type":"uint8"},{"name":"creator","type":"address"},{"name":"name","type":"string"}]},
	{"name":"updateIndex","type":"function","stateMutability":"nonpayable","inputs":[{"name":"indexType","type":"uint8"},{"name":"value","type":"uint256"}],"outputs":[]},
	{"name":"updateCustomIndex","type":"function","stateMutability":"nonpayable","inputs":[{"name":"indexId","type":"uint256"},{"name":"value","type":"uint256"}],"outputs":[]},
	{"name":"setIndexStatus","type":"function","stateMutability":"nonpayable","inputs":[{"name":"indexId","type":"uint256"},{"name":"active","type":"bool"}],"outputs":[]},
	{"name":"setIndexOracleType","type":"function","stateMutability":"nonpayable","inputs":[{"name":"indexId","type":"uint256"},{"name":"oracleType","type":"uint8"}],"outputs":[]},
	{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

var indexOracleABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(IndexOracleABI))
	if err != nil {
		panic(errors.Wrap(err, "failed to parse index oracle ABI"))
	}
	indexOracleABI = parsed
}

// PackGetIndexValue builds the calldata for getIndexValue(indexId). The same
// bytes are embedded into on-chain predicates, so the encoding must stay
// byte-identical to what the contract expects.
func PackGetIndexValue(indexID *big.Int) ([]byte, error) {
	data, err := indexOracleABI.Pack("getIndexValue", indexID)
	return data, errors.Wrap(err, "failed to pack getIndexValue call")
}

// Contract is a typed wrapper over the index oracle bound contract.
type Contract struct {
	address common.Address
	bound   *bind.BoundContract
}

func NewContract(address common.Address, cli *ethclient.Client) *Contract {
	return &Contract{
		address: address,
		bound:   bind.NewBoundContract(address, indexOracleABI, cli, cli, cli),
	}
}

func (c *Contract) Address() common.Address {
	return c.address
}

// Index is the on-chain state of a single index.
type Index struct {
	ID        *big.Int
	Name      string
	Value     *big.Int
	Timestamp time.Time
	Active    bool
	Backend   Backend
	Creator   common.Address
}

func (c *Contract) GetIndex(opts *bind.CallOpts, indexID *big.Int) (Index, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "getIndex", indexID); err != nil {
		return Index{}, errors.Wrap(err, "failed to call getIndex")
	}

	return Index{
		ID:        indexID,
		Name:      *abi.ConvertType(out[5], new(string)).(*string),
		Value:     *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Timestamp: time.Unix((*abi.ConvertType(out[1], new(*big.Int)).(**big.Int)).Int64(), 0),
		Active:    *abi.ConvertType(out[2], new(bool)).(*bool),
		Backend:   Backend(*abi.ConvertType(out[3], new(uint8)).(*uint8)),
		Creator:   *abi.ConvertType(out[4], new(common.Address)).(*common.Address),
	}, nil
}

func (c *Contract) GetIndexValue(opts *bind.CallOpts, indexID *big.Int) (*big.Int, time.Time, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "getIndexValue", indexID); err != nil {
		return nil, time.Time{}, errors.Wrap(err, "failed to call getIndexValue")
	}

	value := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	ts := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	return value, time.Unix(ts.Int64(), 0), nil
}

func (c *Contract) Owner(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := c.bound.Call(opts, &out, "owner"); err != nil {
		return common.Address{}, errors.Wrap(err, "failed to call owner")
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Contract) UpdateIndex(opts *bind.TransactOpts, indexType uint8, value *big.Int) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, "updateIndex", indexType, value)
	return tx, errors.Wrap(err, "failed to send updateIndex")
}

func (c *Contract) UpdateCustomIndex(opts *bind.TransactOpts, indexID, value *big.Int) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, "updateCustomIndex", indexID, value)
	return tx, errors.Wrap(err, "failed to send updateCustomIndex")
}

func (c *Contract) SetIndexStatus(opts *bind.TransactOpts, indexID *big.Int, active bool) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, "setIndexStatus", indexID, active)
	return tx, errors.Wrap(err, "failed to send setIndexStatus")
}

func (c *Contract) SetIndexOracleType(opts *bind.TransactOpts, indexID *big.Int, backend Backend) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, "setIndexOracleType", indexID, uint8(backend))
	return tx, errors.Wrap(err, "failed to send setIndexOracleType")
}
