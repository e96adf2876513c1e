package deployer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/celer-network/go-eosdeploy/log"
	"github.com/celer-network/go-eosdeploy/metrics"
	"github.com/celer-network/go-eosdeploy/publisher"
	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
)

const setExactCodeName = "set_exact_code"

// unchangedVersionText is the node wording when only text is available.
const unchangedVersionText = "contract is already running this version of code"

// Result is the classified outcome of one submission.
type Result struct {
	Outcome   types.Outcome
	TxID      string
	Plan      *Plan
	Interface *types.PublishedInterface
	// Err is the raw rejection for failures. Unchanged deployments carry the
	// benign rejection wrapped with types.ErrUnchangedVersion.
	Err error
	// PublishErr is set when the chain runs the contract but the interface
	// could not be projected or stored locally. It never changes Outcome.
	PublishErr error
}

// Published reports whether the interface was republished.
func (r *Result) Published() bool {
	return r.Outcome.Published() && r.Interface != nil && r.PublishErr == nil
}

// classifyRejection is the only place mapping chain rejections onto the
// benign already-deployed outcome.
func classifyRejection(err error) types.Outcome {
	var chainErr *types.ChainError
	if errors.As(err, &chainErr) {
		if chainErr.Code == types.ChainCodeSetExactCode || chainErr.Name == setExactCodeName {
			return types.OutcomeUnchanged
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), unchangedVersionText) {
		return types.OutcomeUnchanged
	}
	return types.OutcomeFailure
}

// Executor submits plans and republishes the interface on success.
type Executor struct {
	session session.Session
	store   *publisher.Store
	metrics *metrics.Collector
	logger  *log.Logger
}

func NewExecutor(sess session.Session, store *publisher.Store, collector *metrics.Collector) *Executor {
	return &Executor{
		session: sess,
		store:   store,
		metrics: collector,
		logger:  log.NewLogger("executor"),
	}
}

func (e *Executor) publish(account string, iface *types.Interface) (*types.PublishedInterface, error) {
	published, err := publisher.Publish(iface.ABI())
	if err != nil {
		return nil, err
	}
	return published, e.store.Set(account, published)
}

// Execute submits plan atomically. It never retries; once submitted the
// outcome is awaited to completion.
func (e *Executor) Execute(ctx context.Context, actor types.Identity, plan *Plan, iface *types.Interface) *Result {
	result := &Result{Plan: plan}
	account := string(actor.Actor)

	receipt, err := e.session.Submit(ctx, plan.Actions)
	switch {
	case err == nil:
		result.Outcome = types.OutcomeSuccess
		result.TxID = receipt.TxID
	case classifyRejection(err) == types.OutcomeUnchanged:
		result.Outcome = types.OutcomeUnchanged
		result.Err = fmt.Errorf("%w: %w", types.ErrUnchangedVersion, err)
	default:
		result.Outcome = types.OutcomeFailure
		result.Err = err
	}

	if result.Outcome == types.OutcomeFailure {
		e.logger.Error().Err(err).Str("account", account).Int64("ramToBuy", plan.RAMToBuy).Msg("Deployment failed")
		return result
	}

	published, err := e.publish(account, iface)
	e.metrics.ObservePublish(err)
	result.Interface = published
	if err != nil {
		result.PublishErr = err
		e.logger.Error().Err(err).
			Str("account", account).
			Str("outcome", string(result.Outcome)).
			Str("tx", result.TxID).
			Msg("Deployed but failed to publish interface")
		return result
	}

	e.logger.Info().
		Str("account", account).
		Str("outcome", string(result.Outcome)).
		Str("tx", result.TxID).
		Int64("ramBought", plan.RAMToBuy).
		Int("actions", len(published.Actions)).
		Int("tables", len(published.Tables)).
		Msg("Deployed successfully")
	return result
}
