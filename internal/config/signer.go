package config

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Signer struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
	// Admin is the account allowed to mutate any index regardless of its creator
	Admin common.Address
}

func (c *config) Signer() Signer {
	return c.signerOnce.Do(func() interface{} {
		var cfg struct {
			Key   string         `fig:"key,required"`
			Admin common.Address `fig:"admin"`
		}
		err := figure.Out(&cfg).
			With(figure.BaseHooks, figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "signer")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out signer"))
		}

		key, err := crypto.HexToECDSA(cfg.Key)
		if err != nil {
			panic(errors.Wrap(err, "failed to parse signing key"))
		}

		return Signer{
			Key:     key,
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Admin:   cfg.Admin,
		}
	}).(Signer)
}
