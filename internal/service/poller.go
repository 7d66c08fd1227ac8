package service

import (
	"context"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/data"
)

// poller periodically refreshes the relay status of every non-terminal cache
// entry, expires orders the relay no longer reports, and prunes terminal
// entries past the retention window.
type poller struct {
	log     *logan.Entry
	manager *Manager
	orders  data.Orders

	retention time.Duration
}

func newPoller(log *logan.Entry, manager *Manager, orders data.Orders, retention time.Duration) *poller {
	return &poller{
		log:       log,
		manager:   manager,
		orders:    orders,
		retention: retention,
	}
}

func (p *poller) run(ctx context.Context) error {
	entries, err := p.orders.ListActive()
	if err != nil {
		return errors.Wrap(err, "failed to list active orders")
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "polling cancelled")
		}

		status, err := p.manager.Status(ctx, entry.OrderHash)
		if err != nil {
			p.log.WithError(err).WithField("order_hash", entry.OrderHash).
				Warn("failed to refresh order status")
			continue
		}
		p.log.WithFields(logan.F{"order_hash": entry.OrderHash, "status": status}).
			Debug("order status refreshed")
	}

	if p.retention > 0 {
		cutoff := time.Now().Add(-p.retention)
		if err = p.orders.DeleteTerminalBefore(cutoff); err != nil {
			return errors.Wrap(err, "failed to prune terminal orders")
		}
	}

	return nil
}
