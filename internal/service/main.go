package service

import (
	"context"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/running"

	"github.com/IndexFi/oracle-order-svc/internal/config"
	"github.com/IndexFi/oracle-order-svc/internal/data/postgres"
	"github.com/IndexFi/oracle-order-svc/internal/oracle"
	"github.com/IndexFi/oracle-order-svc/internal/relay"
	"github.com/IndexFi/oracle-order-svc/internal/signer"
)

type service struct {
	log     *logan.Entry
	poller  *poller
	monitor *monitor
	network config.Network
}

func (s *service) run() error {
	s.log.Info("Service started")
	ctx := context.Background()

	go running.WithBackOff(ctx, s.log.WithField("runner", "condition-monitor"), "condition-monitor",
		s.monitor.run, s.network.PollPeriod, time.Second, time.Minute)

	running.WithBackOff(ctx, s.log.WithField("runner", "status-poller"), "status-poller",
		s.poller.run, s.network.PollPeriod, time.Second, time.Minute)

	return nil
}

func newService(cfg config.Config) *service {
	log := cfg.Log()
	net := cfg.Network()

	sgn, err := signer.New(cfg.Signer().Key, net.ProtocolName, net.ProtocolVersion, net.ChainID, net.SwapContract)
	if err != nil {
		panic(errors.Wrap(err, "failed to instantiate order signer"))
	}

	orders := postgres.NewOrders(cfg.DB())
	contract := oracle.NewContract(net.OracleContract, net.EthClient)
	source := oracle.NewSource(log, contract, net.ReadInterval, net.RequestTimeout)
	manager := NewManager(log, relay.NewClient(cfg.Relay().Connector), orders, sgn, net.ChainID, net.SwapContract)

	return &service{
		log:     log,
		poller:  newPoller(log, manager, orders, net.Retention),
		monitor: newMonitor(log, source, orders, net.FreshnessWindow),
		network: net,
	}
}

func Run(cfg config.Config) {
	if err := newService(cfg).run(); err != nil {
		panic(err)
	}
}
