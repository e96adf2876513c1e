// Package deployer installs contract code and interfaces on an account,
// buying exactly the storage the installation is missing, and republishes
// the interface whenever the account ends up running it.
package deployer

import (
	"context"
	"fmt"
	"sync"

	"github.com/celer-network/go-eosdeploy/history"
	"github.com/celer-network/go-eosdeploy/log"
	"github.com/celer-network/go-eosdeploy/metrics"
	"github.com/celer-network/go-eosdeploy/publisher"
	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
)

type Option func(*Deployer)

// WithJournal records every deployment attempt in j.
func WithJournal(j *history.Journal) Option {
	return func(d *Deployer) { d.journal = j }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(d *Deployer) { d.metrics = c }
}

// WithCodeMultiplier overrides the per byte RAM charge of code.
func WithCodeMultiplier(multiplier int64) Option {
	return func(d *Deployer) { d.estimator = NewEstimator(multiplier) }
}

// Deployer drives deployments through one session. Concurrent deployments
// to different accounts are independent; a second deployment to an account
// with one in flight is refused.
type Deployer struct {
	session   session.Session
	store     *publisher.Store
	estimator *Estimator
	executor  *Executor
	journal   *history.Journal
	metrics   *metrics.Collector
	logger    *log.Logger

	inFlight sync.Map
}

func New(sess session.Session, store *publisher.Store, opts ...Option) *Deployer {
	d := &Deployer{
		session:   sess,
		store:     store,
		estimator: NewEstimator(DefaultCodeMultiplier),
		logger:    log.NewLogger("deployer"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.executor = NewExecutor(sess, store, d.metrics)
	return d
}

func (d *Deployer) identity() (types.Identity, error) {
	id, ok := d.session.Actor()
	if !ok {
		return types.Identity{}, types.ErrNoSession
	}
	return id, nil
}

func (d *Deployer) acquire(account string) error {
	if _, busy := d.inFlight.LoadOrStore(account, struct{}{}); busy {
		return fmt.Errorf("%w: %s", types.ErrDeploymentInFlight, account)
	}
	return nil
}

func (d *Deployer) release(account string) {
	d.inFlight.Delete(account)
}

// accountState reads the target account. A failed read yields an account
// with no free RAM and no code, so the plan buys the full cost.
func (d *Deployer) accountState(ctx context.Context, id types.Identity) *types.AccountInfo {
	info, err := d.session.Query(ctx, id.Actor)
	if err != nil {
		d.logger.Warn().Err(err).Str("account", string(id.Actor)).Msg("Failed to query account, assuming no free RAM")
		return &types.AccountInfo{Name: id.Actor}
	}
	return info
}

// previousDeployment returns what the account currently runs, or nil when
// it never deployed or the read failed.
func (d *Deployer) previousDeployment(ctx context.Context, info *types.AccountInfo) *types.DeployedCode {
	if !info.HasCode() {
		return nil
	}
	previous, err := d.session.FetchCode(ctx, info.Name)
	if err != nil {
		d.logger.Warn().Err(err).Str("account", string(info.Name)).Msg("Failed to fetch deployed code, estimating full cost")
		return nil
	}
	return previous
}

// NetBytesRequired estimates the storage a deployment of code and iface
// needs beyond what the account already occupies.
func (d *Deployer) NetBytesRequired(ctx context.Context, info *types.AccountInfo, code types.Code, iface *types.Interface) int64 {
	return d.estimator.Estimate(code, iface, d.previousDeployment(ctx, info))
}

// Deploy installs code and iface on the session account. The returned error
// is nil for successful and unchanged deployments, including those whose
// interface could not be stored locally (see Result.PublishErr). A failed
// submission returns its result along with the rejection.
func (d *Deployer) Deploy(ctx context.Context, code types.Code, iface *types.Interface) (*Result, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	if iface == nil {
		return nil, fmt.Errorf("%w: nil interface", types.ErrMalformedInterface)
	}
	if _, err := types.NewCode(code); err != nil {
		return nil, err
	}

	account := string(id.Actor)
	if err := d.acquire(account); err != nil {
		return nil, err
	}
	defer d.release(account)

	info := d.accountState(ctx, id)
	net := d.NetBytesRequired(ctx, info, code, iface)
	plan, err := BuildPlan(id, net, info.FreeRAM(), code, iface)
	if err != nil {
		return nil, err
	}
	if d.logger.IsDebugEnabled() {
		d.logger.Debug().
			Str("account", account).
			Int64("netBytes", net).
			Int64("freeRAM", info.FreeRAM()).
			Int64("ramToBuy", plan.RAMToBuy).
			Int("actions", len(plan.Actions)).
			Msg("Planned deployment")
	}

	result := d.executor.Execute(ctx, id, plan, iface)
	d.metrics.ObserveDeployment(result.Outcome, plan.RAMToBuy)
	d.record(account, code, iface, result)

	if result.Outcome == types.OutcomeFailure {
		return result, result.Err
	}
	return result, nil
}

func (d *Deployer) record(account string, code types.Code, iface *types.Interface, result *Result) {
	if d.journal == nil {
		return
	}
	rec := &types.DeploymentRecord{
		Account:  account,
		CodeHash: code.Hash(),
		CodeSize: len(code),
		ABISize:  len(iface.Encoded()),
		NetBytes: result.Plan.NetBytes,
		Outcome:  result.Outcome,
		TxID:     result.TxID,
	}
	if result.Outcome == types.OutcomeSuccess {
		rec.RAMPurchased = result.Plan.RAMToBuy
	}
	switch {
	case result.PublishErr != nil:
		rec.Error = result.PublishErr.Error()
	case result.Err != nil:
		rec.Error = result.Err.Error()
	}
	if err := d.journal.Record(rec); err != nil {
		d.logger.Error().Err(err).Str("account", account).Msg("Failed to journal deployment")
	}
}

// CheckDeployedInterface republishes the interface of an account that
// already runs a contract, typically after a session is restored. It
// returns nil without error when nothing is deployed.
func (d *Deployer) CheckDeployedInterface(ctx context.Context) (*types.PublishedInterface, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	info, err := d.session.Query(ctx, id.Actor)
	if err != nil {
		return nil, err
	}
	if !info.HasCode() {
		return nil, nil
	}

	abi, err := d.session.FetchInterface(ctx, id.Actor)
	if err != nil {
		return nil, err
	}
	published, err := publisher.Publish(abi)
	d.metrics.ObservePublish(err)
	if err != nil {
		return nil, err
	}
	if err := d.store.Set(string(id.Actor), published); err != nil {
		return nil, err
	}
	d.logger.Info().Str("account", string(id.Actor)).Int("actions", len(published.Actions)).Msg("Republished deployed interface")
	return published, nil
}
