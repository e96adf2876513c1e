package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/celer-network/go-eosdeploy/config"
	"github.com/celer-network/go-eosdeploy/db"
	"github.com/celer-network/go-eosdeploy/db/badgerdb"
	"github.com/celer-network/go-eosdeploy/db/memorydb"
	"github.com/celer-network/go-eosdeploy/deployer"
	"github.com/celer-network/go-eosdeploy/history"
	"github.com/celer-network/go-eosdeploy/metrics"
	"github.com/celer-network/go-eosdeploy/publisher"
	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/session/eosapi"
	"github.com/celer-network/go-eosdeploy/session/simulated"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type app struct {
	cfg       *config.Config
	db        db.DB
	session   session.Session
	store     *publisher.Store
	journal   *history.Journal
	collector *metrics.Collector
	deployer  *deployer.Deployer
}

func openDB(cfg config.DBConfig) (db.DB, error) {
	switch cfg.Type {
	case config.DBTypeBadger:
		return badgerdb.NewDB(cfg.Dir)
	default:
		return memorydb.NewDB(), nil
	}
}

func openSession(ctx context.Context, cfg *config.Config, simulate bool) (session.Session, error) {
	if simulate {
		chain := simulated.NewChain()
		chain.CreateAccount(cfg.Account.Name, cfg.Simulation.RAMQuota, 0)
		logger.Info().Str("account", cfg.Account.Name).Int64("ramQuota", cfg.Simulation.RAMQuota).Msg("Using simulated chain")
		return chain.Session(cfg.Account.Name), nil
	}
	return eosapi.New(ctx, eosapi.Config{
		Endpoint:   cfg.Chain.Endpoint,
		Account:    cfg.Account.Name,
		Permission: cfg.Account.Permission,
		Key:        cfg.Account.Key,
		Timeout:    cfg.Chain.Timeout,
	})
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	simulate := v.GetBool(flagSimulate)
	if err := cfg.Validate(simulate); err != nil {
		return nil, err
	}

	database, err := openDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Type, err)
	}
	sess, err := openSession(ctx, cfg, simulate)
	if err != nil {
		database.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		db:        database,
		session:   sess,
		store:     publisher.NewStore(database),
		journal:   history.NewJournal(database),
		collector: collector,
	}
	a.deployer = deployer.New(sess, a.store,
		deployer.WithJournal(a.journal),
		deployer.WithMetrics(a.collector),
		deployer.WithCodeMultiplier(cfg.Deploy.CodeMultiplier),
	)
	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close db")
	}
}

// render writes v as yaml or json.
func render(w io.Writer, format string, v interface{}) error {
	var out []byte
	var err error
	switch format {
	case "json":
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	case "yaml", "":
		out, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
