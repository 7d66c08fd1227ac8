package config

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Network struct {
	EthClient       *ethclient.Client
	ChainID         int64
	OracleContract  common.Address
	SwapContract    common.Address
	ProtocolName    string
	ProtocolVersion string

	RequestTimeout  time.Duration
	PollPeriod      time.Duration
	ReadInterval    time.Duration
	FreshnessWindow time.Duration
	Retention       time.Duration
}

const defaultRequestTimeout = 10 * time.Second
const defaultPollPeriod = 15 * time.Second
const defaultReadInterval = 200 * time.Millisecond
const defaultFreshnessWindow = 5 * time.Minute
const defaultRetention = 30 * 24 * time.Hour

const defaultProtocolName = "IndexFi Conditional Swap"
const defaultProtocolVersion = "1"

const maxChainID int64 = math.MaxUint64/2 - 36

func (c *config) Network() Network {
	return c.networkOnce.Do(func() interface{} {
		var cfg struct {
			RPC             string         `fig:"rpc,required"`
			OracleContract  common.Address `fig:"oracle_contract,required"`
			SwapContract    common.Address `fig:"swap_contract,required"`
			ChainID         int64          `fig:"chain_id,required"`
			ProtocolName    string         `fig:"protocol_name"`
			ProtocolVersion string         `fig:"protocol_version"`
			RequestTimeout  time.Duration  `fig:"request_timeout"`
			PollPeriod      time.Duration  `fig:"poll_period"`
			ReadInterval    time.Duration  `fig:"read_interval"`
			FreshnessWindow time.Duration  `fig:"freshness_window"`
			Retention       time.Duration  `fig:"retention"`
		}

		err := figure.Out(&cfg).
			With(figure.BaseHooks, figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "network")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out network"))
		}

		if cfg.ChainID > maxChainID || cfg.ChainID <= 0 {
			panic("chain_id value out of range due to EIP 2294")
		}
		cli, err := ethclient.Dial(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to RPC provider"))
		}

		if cfg.ProtocolName == "" {
			cfg.ProtocolName = defaultProtocolName
		}
		if cfg.ProtocolVersion == "" {
			cfg.ProtocolVersion = defaultProtocolVersion
		}
		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}
		if cfg.PollPeriod == 0 {
			cfg.PollPeriod = defaultPollPeriod
		}
		if cfg.ReadInterval == 0 {
			cfg.ReadInterval = defaultReadInterval
		}
		if cfg.FreshnessWindow == 0 {
			cfg.FreshnessWindow = defaultFreshnessWindow
		}
		if cfg.Retention == 0 {
			cfg.Retention = defaultRetention
		}

		return Network{
			EthClient:       cli,
			ChainID:         cfg.ChainID,
			OracleContract:  cfg.OracleContract,
			SwapContract:    cfg.SwapContract,
			ProtocolName:    cfg.ProtocolName,
			ProtocolVersion: cfg.ProtocolVersion,
			RequestTimeout:  cfg.RequestTimeout,
			PollPeriod:      cfg.PollPeriod,
			ReadInterval:    cfg.ReadInterval,
			FreshnessWindow: cfg.FreshnessWindow,
			Retention:       cfg.Retention,
		}
	}).(Network)
}
