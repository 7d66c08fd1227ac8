package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/data"
	"github.com/IndexFi/oracle-order-svc/internal/order"
	"github.com/IndexFi/oracle-order-svc/internal/relay"
	"github.com/IndexFi/oracle-order-svc/internal/service/requests"
	"github.com/IndexFi/oracle-order-svc/internal/signer"
)

var (
	ErrNotCached     = errors.New("order is not present in the local cache")
	ErrNotMaker      = errors.New("caller key does not belong to the order maker")
	ErrAlreadyClosed = errors.New("order already reached a terminal status")
)

// Manager owns the order lifecycle: it signs and submits orders, mirrors
// them in the local cache, polls their relay status and cancels them. Cache
// transitions are monotonic; a relay rejection never discards a built order.
type Manager struct {
	log    *logan.Entry
	relay  relay.Client
	orders data.Orders
	signer *signer.Signer

	chainID   int64
	verifying common.Address
}

func NewManager(log *logan.Entry, rl relay.Client, orders data.Orders, sgn *signer.Signer, chainID int64, verifying common.Address) *Manager {
	return &Manager{
		log:       log,
		relay:     rl,
		orders:    orders,
		signer:    sgn,
		chainID:   chainID,
		verifying: verifying,
	}
}

// Submit signs the order and pushes it to the relay. The cache entry is
// persisted before the relay call, so a rejection leaves the order locally
// available with the error attached; calling Submit again with the same order
// retries without rebuilding.
func (m *Manager) Submit(ctx context.Context, o *order.Order) (common.Hash, error) {
	if err := order.Validate(o); err != nil {
		return common.Hash{}, errors.Wrap(err, "order failed pre-submission validation")
	}
	if err := m.signer.CheckDomain(m.chainID, m.verifying); err != nil {
		return common.Hash{}, err
	}

	sig, orderHash, err := m.signer.Sign(o)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to sign order")
	}
	log := m.log.WithField("order_hash", orderHash.Hex())

	entry, err := m.orders.Get(orderHash.Hex())
	if err != nil {
		return orderHash, errors.Wrap(err, "failed to look up cache entry")
	}
	if entry == nil {
		fresh := m.newCacheEntry(o, sig, orderHash)
		if err = m.orders.Insert(fresh); err != nil {
			return orderHash, errors.Wrap(err, "failed to cache built order")
		}
		entry = &fresh
	} else if entry.Status.Terminal() {
		return orderHash, ErrAlreadyClosed
	}

	body := requests.NewSubmitOrder(o, sig, orderHash, m.chainID)
	if err = m.relay.SubmitOrder(ctx, body); err != nil {
		entry.SubmitError = sql.NullString{String: err.Error(), Valid: true}
		if updErr := m.orders.Update(*entry); updErr != nil {
			log.WithError(updErr).Error("failed to record submission error")
		}
		if relay.IsRejection(err) {
			log.WithError(err).Warn("relay rejected the order, kept it cached for retry")
		}
		return orderHash, errors.Wrap(err, "failed to submit order to relay")
	}

	entry.SubmitError = sql.NullString{}
	if err = m.orders.Update(*entry); err != nil {
		return orderHash, errors.Wrap(err, "failed to clear submission error")
	}

	log.Info("order submitted to relay")
	return orderHash, nil
}

// Status refreshes the cached lifecycle state from the relay. Terminal
// entries are frozen and returned as-is.
func (m *Manager) Status(ctx context.Context, orderHash string) (data.Status, error) {
	entry, err := m.orders.Get(orderHash)
	if err != nil {
		return "", errors.Wrap(err, "failed to look up cache entry")
	}
	if entry == nil {
		return "", ErrNotCached
	}
	if entry.Status.Terminal() {
		return entry.Status, nil
	}

	ro, err := m.relay.GetOrder(orderHash)
	if err != nil {
		if errors.Cause(err) == relay.ErrOrderNotFound && time.Now().After(entry.ExpiresAt) {
			return m.transition(entry, data.StatusExpired, nil)
		}
		return entry.Status, errors.Wrap(err, "failed to poll relay for order status")
	}

	next, err := mapRelayStatus(ro.Attributes.Status)
	if err != nil {
		return entry.Status, err
	}
	return m.transition(entry, next, ro.Attributes.FillTxHash)
}

// Cancel withdraws the order from the relay with the maker's key and freezes
// the cache entry.
func (m *Manager) Cancel(ctx context.Context, orderHash string) (string, error) {
	entry, err := m.orders.Get(orderHash)
	if err != nil {
		return "", errors.Wrap(err, "failed to look up cache entry")
	}
	if entry == nil {
		return "", ErrNotCached
	}
	if entry.Maker != m.signer.Address().String() {
		return "", ErrNotMaker
	}
	if entry.Status.Terminal() {
		return "", ErrAlreadyClosed
	}

	sig, err := m.signer.SignCancellation(common.HexToHash(orderHash))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign cancellation")
	}

	body := requests.NewCancelOrder(orderHash, m.signer.Address(), sig)
	txHash, err := m.relay.CancelOrder(ctx, orderHash, body)
	if err != nil {
		return "", errors.Wrap(err, "failed to cancel order")
	}

	entry.CancelTxHash = sql.NullString{String: txHash, Valid: true}
	if _, err = m.transition(entry, data.StatusCancelled, nil); err != nil {
		return txHash, err
	}

	m.log.WithFields(logan.F{"order_hash": orderHash, "tx": txHash}).Info("order cancelled")
	return txHash, nil
}

// ListForMaker is a read path over the local mirror, it never mutates state.
func (m *Manager) ListForMaker(maker common.Address) ([]data.OrderCacheEntry, error) {
	entries, err := m.orders.ListByMaker(maker.String())
	return entries, errors.Wrap(err, "failed to list maker orders")
}

func (m *Manager) transition(entry *data.OrderCacheEntry, next data.Status, fillTx *string) (data.Status, error) {
	if !entry.Status.CanTransition(next) {
		m.log.WithFields(logan.F{
			"order_hash": entry.OrderHash,
			"from":       entry.Status,
			"to":         next,
		}).Warn("refusing non-monotonic status transition")
		return entry.Status, nil
	}
	if entry.Status == next {
		return entry.Status, nil
	}

	entry.Status = next
	if next == data.StatusFilled && fillTx != nil {
		entry.FillTxHash = sql.NullString{String: *fillTx, Valid: true}
	}
	if err := m.orders.Update(*entry); err != nil {
		return entry.Status, errors.Wrap(err, "failed to persist status transition")
	}

	m.log.WithFields(logan.F{"order_hash": entry.OrderHash, "status": next}).Info("order status updated")
	return next, nil
}

func (m *Manager) newCacheEntry(o *order.Order, sig []byte, orderHash common.Hash) data.OrderCacheEntry {
	entry := data.OrderCacheEntry{
		OrderHash:         orderHash.Hex(),
		Maker:             o.Maker.String(),
		Receiver:          o.Receiver.String(),
		MakerAsset:        o.MakerAsset.String(),
		TakerAsset:        o.TakerAsset.String(),
		MakingAmount:      o.MakingAmount.String(),
		TakingAmount:      o.TakingAmount.String(),
		Salt:              o.Salt.String(),
		Nonce:             int64(o.Traits.Nonce),
		Traits:            o.Traits.Encode().String(),
		Signature:         hexutil.Encode(sig),
		ExpiresAt:         o.Traits.ExpiresAt,
		ChainID:           m.chainID,
		VerifyingContract: m.verifying.String(),
		Status:            data.StatusSubmitted,
		CreatedAt:         time.Now().UTC(),
	}
	if len(o.Extension) > 0 {
		entry.Extension = hexutil.Encode(o.Extension)
		entry.IndexID = sql.NullInt64{Int64: o.Condition.IndexID.Int64(), Valid: true}
		entry.Operator = sql.NullString{String: o.Condition.Operator.String(), Valid: true}
		entry.Threshold = sql.NullString{String: o.Condition.Threshold.String(), Valid: true}
	}
	return entry
}

func mapRelayStatus(s string) (data.Status, error) {
	switch s {
	case "submitted":
		return data.StatusSubmitted, nil
	case "pending", "open":
		return data.StatusPending, nil
	case "filled":
		return data.StatusFilled, nil
	case "cancelled":
		return data.StatusCancelled, nil
	case "expired":
		return data.StatusExpired, nil
	}
	return "", errors.From(errors.New("unknown relay order status"), logan.F{"status": s})
}
