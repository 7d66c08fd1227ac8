package oracle

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var ErrNotAuthorized = errors.New("caller is neither the index creator nor an oracle admin")

// Admin performs privileged index mutations: value pushes, activation
// toggles and backend switches. Every write is preceded by a creator-or-admin
// check, so an unauthorized call fails before any transaction is sent.
type Admin struct {
	log      *logan.Entry
	contract *Contract
	reader   IndexReader

	key    *ecdsa.PrivateKey
	caller common.Address
	admin  common.Address

	chainID        *big.Int
	requestTimeout time.Duration
}

func NewAdmin(log *logan.Entry, contract *Contract, reader IndexReader, key *ecdsa.PrivateKey, admin common.Address, chainID int64, requestTimeout time.Duration) *Admin {
	return &Admin{
		log:            log,
		contract:       contract,
		reader:         reader,
		key:            key,
		caller:         crypto.PubkeyToAddress(key.PublicKey),
		admin:          admin,
		chainID:        big.NewInt(chainID),
		requestTimeout: requestTimeout,
	}
}

// PushValue updates the index value through the path its id binds it to:
// predefined indexes go through updateIndex, custom ones through
// updateCustomIndex. The contract stamps the write time itself.
func (a *Admin) PushValue(ctx context.Context, indexID int64, value *big.Int) (*types.Transaction, error) {
	if value == nil || value.Sign() < 0 {
		return nil, errors.New("index value must be a non-negative integer")
	}
	opts, err := a.authorize(ctx, indexID)
	if err != nil {
		return nil, err
	}

	if indexID <= IndexVIX {
		tx, err := a.contract.UpdateIndex(opts, uint8(indexID), value)
		return tx, errors.Wrap(err, "failed to update predefined index")
	}
	tx, err := a.contract.UpdateCustomIndex(opts, big.NewInt(indexID), value)
	return tx, errors.Wrap(err, "failed to update custom index")
}

func (a *Admin) SetActive(ctx context.Context, indexID int64, active bool) (*types.Transaction, error) {
	opts, err := a.authorize(ctx, indexID)
	if err != nil {
		return nil, err
	}

	a.log.WithFields(logan.F{"index_id": indexID, "active": active}).Info("switching index activation")
	tx, err := a.contract.SetIndexStatus(opts, big.NewInt(indexID), active)
	return tx, errors.Wrap(err, "failed to set index status")
}

// SetBackend rebinds the index to another oracle backend. The last pushed
// value survives the switch unchanged.
func (a *Admin) SetBackend(ctx context.Context, indexID int64, backend Backend) (*types.Transaction, error) {
	if backend != BackendMock && backend != BackendManaged {
		return nil, errors.New("unknown oracle backend")
	}
	opts, err := a.authorize(ctx, indexID)
	if err != nil {
		return nil, err
	}

	a.log.WithFields(logan.F{"index_id": indexID, "backend": backend.String()}).Info("switching index oracle backend")
	tx, err := a.contract.SetIndexOracleType(opts, big.NewInt(indexID), backend)
	return tx, errors.Wrap(err, "failed to set index oracle type")
}

func (a *Admin) authorize(ctx context.Context, indexID int64) (*bind.TransactOpts, error) {
	idx, err := a.reader.GetIndex(ctx, indexID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get index for authorization")
	}

	if a.caller != idx.Creator && a.caller != a.admin {
		owner, err := a.reader.Owner(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get oracle owner")
		}
		if a.caller != owner {
			return nil, errors.From(ErrNotAuthorized, logan.F{
				"caller":   a.caller.String(),
				"creator":  idx.Creator.String(),
				"index_id": indexID,
			})
		}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(a.key, a.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transactor")
	}
	opts.Context = ctx
	return opts, nil
}
