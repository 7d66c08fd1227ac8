package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
	"github.com/IndexFi/oracle-order-svc/internal/data"
	"github.com/IndexFi/oracle-order-svc/internal/data/memory"
	"github.com/IndexFi/oracle-order-svc/internal/order"
	"github.com/IndexFi/oracle-order-svc/internal/predicate"
	"github.com/IndexFi/oracle-order-svc/internal/relay"
	"github.com/IndexFi/oracle-order-svc/internal/service/requests"
	"github.com/IndexFi/oracle-order-svc/internal/signer"
)

const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testOracle = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSwap   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testUSDC   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	testWETH   = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

type fakeRelay struct {
	submitErr error
	status    string
	fillTx    *string
	getErr    error
	cancelTx  string
	cancelErr error

	submitted []requests.SubmitOrderRequest
}

func (f *fakeRelay) SubmitOrder(_ context.Context, body requests.SubmitOrderRequest) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, body)
	return nil
}

func (f *fakeRelay) GetOrder(string) (*requests.Order, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &requests.Order{Attributes: requests.OrderAttributes{Status: f.status, FillTxHash: f.fillTx}}, nil
}

func (f *fakeRelay) GetOrdersByMaker(string) ([]requests.Order, error) {
	return nil, nil
}

func (f *fakeRelay) CancelOrder(_ context.Context, _ string, _ requests.CancelOrderRequest) (string, error) {
	if f.cancelErr != nil {
		return "", f.cancelErr
	}
	return f.cancelTx, nil
}

type env struct {
	manager *Manager
	relay   *fakeRelay
	orders  data.Orders
	maker   common.Address
}

func newEnv(t *testing.T) *env {
	t.Helper()

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	sgn, err := signer.New(key, "IndexFi Conditional Swap", "1", 1, testSwap)
	require.NoError(t, err)

	rl := &fakeRelay{status: "pending"}
	orders := memory.NewOrders()
	return &env{
		manager: NewManager(logan.New(), rl, orders, sgn, 1, testSwap),
		relay:   rl,
		orders:  orders,
		maker:   sgn.Address(),
	}
}

func (e *env) buildOrder(t *testing.T) *order.Order {
	t.Helper()

	cond := condition.New(2, condition.GT, big.NewInt(2000))
	b := order.NewBuilder(predicate.NewCompiler(testOracle, testSwap))
	o, err := b.Build(order.Params{
		Maker:        e.maker,
		MakerAsset:   testUSDC,
		TakerAsset:   testWETH,
		MakingAmount: big.NewInt(1_000_000),
		TakingAmount: big.NewInt(500_000),
		Expiration:   time.Now().Add(time.Hour),
		Nonce:        7,
		Condition:    &cond,
	})
	require.NoError(t, err)
	return o
}

func TestSubmitCachesOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	hash, err := e.manager.Submit(ctx, e.buildOrder(t))
	require.NoError(t, err)

	entry, err := e.orders.Get(hash.Hex())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, data.StatusSubmitted, entry.Status)
	assert.False(t, entry.SubmitError.Valid)
	assert.True(t, entry.Operator.Valid)
	assert.Equal(t, "gt", entry.Operator.String)
	require.Len(t, e.relay.submitted, 1)
	assert.Equal(t, hash.Hex(), e.relay.submitted[0].Data.ID)
}

func TestSubmitFailurePreservesOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.relay.submitErr = errors.New("insufficient allowance")

	o := e.buildOrder(t)
	hash, err := e.manager.Submit(ctx, o)
	require.Error(t, err)

	entry, err := e.orders.Get(hash.Hex())
	require.NoError(t, err)
	require.NotNil(t, entry, "rejected orders must stay cached")
	assert.Equal(t, data.StatusSubmitted, entry.Status)
	require.True(t, entry.SubmitError.Valid)
	assert.Contains(t, entry.SubmitError.String, "insufficient allowance")

	// retrying the same order after funding succeeds and clears the error
	e.relay.submitErr = nil
	retryHash, err := e.manager.Submit(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, hash, retryHash)

	entry, err = e.orders.Get(hash.Hex())
	require.NoError(t, err)
	assert.False(t, entry.SubmitError.Valid)
}

func TestSubmitRejectsTamperedSalt(t *testing.T) {
	e := newEnv(t)

	o := e.buildOrder(t)
	o.Salt = big.NewInt(1)

	_, err := e.manager.Submit(context.Background(), o)
	assert.Equal(t, order.ErrSaltExtensionMismatch, errors.Cause(err))
}

func TestStatusLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	hash, err := e.manager.Submit(ctx, e.buildOrder(t))
	require.NoError(t, err)

	st, err := e.manager.Status(ctx, hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, data.StatusPending, st)

	tx := "0xfilltx"
	e.relay.status = "filled"
	e.relay.fillTx = &tx

	st, err = e.manager.Status(ctx, hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, data.StatusFilled, st)

	entry, err := e.orders.Get(hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, "0xfilltx", entry.FillTxHash.String)

	// a terminal entry is frozen even if the relay regresses
	e.relay.status = "pending"
	st, err = e.manager.Status(ctx, hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, data.StatusFilled, st)
}

func TestStatusExpiresVanishedOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	hash, err := e.manager.Submit(ctx, e.buildOrder(t))
	require.NoError(t, err)

	entry, err := e.orders.Get(hash.Hex())
	require.NoError(t, err)
	entry.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, e.orders.Update(*entry))

	e.relay.getErr = relay.ErrOrderNotFound
	st, err := e.manager.Status(ctx, hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, data.StatusExpired, st)
}

func TestStatusUnknownOrder(t *testing.T) {
	e := newEnv(t)

	_, err := e.manager.Status(context.Background(), "0xdeadbeef")
	assert.Equal(t, ErrNotCached, errors.Cause(err))
}

func TestCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.relay.cancelTx = "0xcanceltx"

	hash, err := e.manager.Submit(ctx, e.buildOrder(t))
	require.NoError(t, err)

	tx, err := e.manager.Cancel(ctx, hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, "0xcanceltx", tx)

	entry, err := e.orders.Get(hash.Hex())
	require.NoError(t, err)
	assert.Equal(t, data.StatusCancelled, entry.Status)
	assert.Equal(t, "0xcanceltx", entry.CancelTxHash.String)

	_, err = e.manager.Cancel(ctx, hash.Hex())
	assert.Equal(t, ErrAlreadyClosed, errors.Cause(err))
}

func TestCancelForeignOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	o := e.buildOrder(t)
	o.Maker = common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	hash, err := e.manager.Submit(ctx, o)
	require.NoError(t, err)

	_, err = e.manager.Cancel(ctx, hash.Hex())
	assert.Equal(t, ErrNotMaker, errors.Cause(err))
}

func TestListForMaker(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.manager.Submit(ctx, e.buildOrder(t))
	require.NoError(t, err)

	entries, err := e.manager.ListForMaker(e.maker)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = e.manager.ListForMaker(testUSDC)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
