package service

import (
	"context"
	"math/big"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
	"github.com/IndexFi/oracle-order-svc/internal/data"
	"github.com/IndexFi/oracle-order-svc/internal/oracle"
)

// monitor re-evaluates every open conditional order against a fresh oracle
// sample, without touching the relay. It logs fillability flips so operators
// see when a fill attempt would start succeeding.
type monitor struct {
	log    *logan.Entry
	source oracle.Reader
	orders data.Orders

	freshFor time.Duration
	verdicts map[string]bool
}

func newMonitor(log *logan.Entry, source oracle.Reader, orders data.Orders, freshFor time.Duration) *monitor {
	return &monitor{
		log:      log,
		source:   source,
		orders:   orders,
		freshFor: freshFor,
		verdicts: make(map[string]bool),
	}
}

func (m *monitor) run(ctx context.Context) error {
	entries, err := m.orders.ListActive()
	if err != nil {
		return errors.Wrap(err, "failed to list active orders")
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "monitoring cancelled")
		}
		if !entry.Operator.Valid {
			continue
		}
		seen[entry.OrderHash] = struct{}{}

		if err = m.check(ctx, entry); err != nil {
			m.log.WithError(err).WithField("order_hash", entry.OrderHash).
				Warn("failed to evaluate order condition")
		}
	}

	for hash := range m.verdicts {
		if _, ok := seen[hash]; !ok {
			delete(m.verdicts, hash)
		}
	}

	return nil
}

func (m *monitor) check(ctx context.Context, entry data.OrderCacheEntry) error {
	cond, err := cacheCondition(entry)
	if err != nil {
		return err
	}

	sample, err := m.source.GetSample(ctx, entry.IndexID.Int64)
	if err != nil {
		return errors.Wrap(err, "failed to sample index")
	}

	log := m.log.WithFields(logan.F{
		"order_hash": entry.OrderHash,
		"index_id":   entry.IndexID.Int64,
		"value":      sample.Value.String(),
	})

	fillable, err := condition.EvaluateSample(cond, sample, m.freshFor, time.Now())
	if err != nil {
		log.WithError(err).Warn("condition verdict is based on stale data")
	}

	if prev, ok := m.verdicts[entry.OrderHash]; !ok || prev != fillable {
		log.WithField("fillable", fillable).Info("order fillability changed")
	}
	m.verdicts[entry.OrderHash] = fillable

	return nil
}

func cacheCondition(entry data.OrderCacheEntry) (condition.Condition, error) {
	op, err := condition.ParseOperator(entry.Operator.String)
	if err != nil {
		return condition.Condition{}, errors.Wrap(err, "cached operator is malformed")
	}
	threshold, ok := new(big.Int).SetString(entry.Threshold.String, 10)
	if !ok {
		return condition.Condition{}, errors.New("cached threshold is malformed")
	}
	return condition.New(entry.IndexID.Int64, op, threshold), nil
}
