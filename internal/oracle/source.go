package oracle

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/IndexFi/oracle-order-svc/internal/condition"
)

var ErrIndexNotFound = errors.New("index is not registered in the oracle")

var zeroAddress common.Address

// Reader is the read surface the evaluator and monitor depend on.
type Reader interface {
	GetSample(ctx context.Context, indexID int64) (condition.Sample, error)
}

// IndexReader exposes the reads the admin needs to authorize a mutation.
type IndexReader interface {
	GetIndex(ctx context.Context, indexID int64) (Index, error)
	Owner(ctx context.Context) (common.Address, error)
}

// Source reads index state from the oracle contract. Reads are gated to a
// minimum inter-request interval and deduplicated in flight per index id, so
// concurrent monitors never multiply RPC load for the same index.
type Source struct {
	log      *logan.Entry
	contract *Contract

	gate     *rate.Limiter
	inflight singleflight.Group

	requestTimeout time.Duration
}

func NewSource(log *logan.Entry, contract *Contract, readInterval, requestTimeout time.Duration) *Source {
	return &Source{
		log:            log,
		contract:       contract,
		gate:           rate.NewLimiter(rate.Every(readInterval), 1),
		requestTimeout: requestTimeout,
	}
}

func (s *Source) GetSample(ctx context.Context, indexID int64) (condition.Sample, error) {
	idx, err := s.GetIndex(ctx, indexID)
	if err != nil {
		return condition.Sample{}, err
	}
	return condition.Sample{
		Value:     idx.Value,
		Timestamp: idx.Timestamp,
		Active:    idx.Active,
	}, nil
}

func (s *Source) GetIndex(ctx context.Context, indexID int64) (Index, error) {
	v, err, _ := s.inflight.Do(strconv.FormatInt(indexID, 10), func() (interface{}, error) {
		if err := s.gate.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "read gate wait cancelled")
		}

		child, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		idx, err := s.contract.GetIndex(&bind.CallOpts{Context: child}, big.NewInt(indexID))
		if err != nil {
			return Index{}, errors.Wrap(err, "failed to get index from contract")
		}
		if idx.Creator == zeroAddress {
			return Index{}, errors.From(ErrIndexNotFound, logan.F{"index_id": indexID})
		}

		return idx, nil
	})
	if err != nil {
		return Index{}, err
	}

	return v.(Index), nil
}

func (s *Source) Owner(ctx context.Context) (common.Address, error) {
	v, err, _ := s.inflight.Do("owner", func() (interface{}, error) {
		if err := s.gate.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "read gate wait cancelled")
		}

		child, cancel := context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()

		owner, err := s.contract.Owner(&bind.CallOpts{Context: child})
		return owner, errors.Wrap(err, "failed to get oracle owner")
	})
	if err != nil {
		return common.Address{}, err
	}

	return v.(common.Address), nil
}
