package postgres

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/fatih/structs"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/data"
)

const ordersTable = "order_cache"

type orders struct {
	db *pgdb.DB
}

func NewOrders(db *pgdb.DB) data.Orders {
	return orders{db: db}
}

func (q orders) Insert(entry data.OrderCacheEntry) error {
	stmt := squirrel.Insert(ordersTable).SetMap(structs.Map(entry))
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert order cache entry")
}

func (q orders) Get(orderHash string) (*data.OrderCacheEntry, error) {
	var result data.OrderCacheEntry
	stmt := squirrel.Select("*").From(ordersTable).Where(squirrel.Eq{"order_hash": orderHash})

	if err := q.db.Get(&result, stmt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to select order cache entry")
	}

	return &result, nil
}

func (q orders) Update(entry data.OrderCacheEntry) error {
	m := structs.Map(entry)
	delete(m, "order_hash")
	stmt := squirrel.Update(ordersTable).SetMap(m).
		Where(squirrel.Eq{"order_hash": entry.OrderHash})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to update order cache entry")
}

func (q orders) ListByMaker(maker string) ([]data.OrderCacheEntry, error) {
	var result []data.OrderCacheEntry
	stmt := squirrel.Select("*").From(ordersTable).
		Where(squirrel.Eq{"maker": maker}).
		OrderBy("created_at DESC")

	err := q.db.Select(&result, stmt)
	return result, errors.Wrap(err, "failed to select orders by maker")
}

func (q orders) ListConditional(conditional bool) ([]data.OrderCacheEntry, error) {
	var result []data.OrderCacheEntry
	pred := squirrel.Sqlizer(squirrel.NotEq{"operator": nil})
	if !conditional {
		pred = squirrel.Eq{"operator": nil}
	}
	stmt := squirrel.Select("*").From(ordersTable).Where(pred).OrderBy("created_at DESC")

	err := q.db.Select(&result, stmt)
	return result, errors.Wrap(err, "failed to select orders by kind")
}

func (q orders) ListActive() ([]data.OrderCacheEntry, error) {
	var result []data.OrderCacheEntry
	stmt := squirrel.Select("*").From(ordersTable).
		Where(squirrel.Eq{"status": []data.Status{data.StatusSubmitted, data.StatusPending}}).
		OrderBy("created_at")

	err := q.db.Select(&result, stmt)
	return result, errors.Wrap(err, "failed to select active orders")
}

func (q orders) Delete(orderHash string) error {
	stmt := squirrel.Delete(ordersTable).Where(squirrel.Eq{"order_hash": orderHash})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to delete order cache entry")
}

func (q orders) DeleteByMaker(maker string) error {
	stmt := squirrel.Delete(ordersTable).Where(squirrel.Eq{"maker": maker})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to delete orders by maker")
}

func (q orders) DeleteAll() error {
	stmt := squirrel.Delete(ordersTable)
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to delete all order cache entries")
}

func (q orders) DeleteTerminalBefore(t time.Time) error {
	stmt := squirrel.Delete(ordersTable).
		Where(squirrel.Eq{"status": []data.Status{data.StatusFilled, data.StatusCancelled, data.StatusExpired}}).
		Where(squirrel.Lt{"created_at": t})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to prune terminal orders")
}
