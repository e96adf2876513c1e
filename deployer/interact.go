package deployer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/celer-network/go-eosdeploy/session"
	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

// Transact invokes action of the contract deployed on the session account
// with params given as JSON, encoded through the deployed interface.
func (d *Deployer) Transact(ctx context.Context, action string, params json.RawMessage) (*session.Receipt, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	abi, err := d.session.FetchInterface(ctx, id.Actor)
	if err != nil {
		return nil, err
	}
	if abi.ActionForName(eos.ActN(action)) == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownAction, action)
	}
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	data, err := abi.EncodeAction(eos.ActN(action), params)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", action, err)
	}

	receipt, err := d.session.Submit(ctx, []*eos.Action{{
		Account:       id.Actor,
		Name:          eos.ActN(action),
		Authorization: []eos.PermissionLevel{id.PermissionLevel()},
		ActionData:    eos.ActionData{HexData: data},
	}})
	if err != nil {
		d.logger.Error().Err(err).Str("action", action).Msg("Interaction failed")
		return nil, err
	}
	d.logger.Info().Str("action", action).Str("tx", receipt.TxID).Msg("Interaction success")
	return receipt, nil
}

// TableRows reads rows of a table of the contract deployed on the session
// account. query.Code is always the session account; an empty scope reads
// the account's own scope.
func (d *Deployer) TableRows(ctx context.Context, query session.TableQuery) (json.RawMessage, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}
	published, exists, err := d.store.Get(string(id.Actor))
	if err != nil {
		return nil, err
	}
	if exists && !published.HasTable(query.Table) {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, query.Table)
	}
	query.Code = id.Actor
	if query.Scope == "" {
		query.Scope = string(id.Actor)
	}
	rows, err := d.session.TableRows(ctx, query)
	if err != nil {
		d.logger.Error().Err(err).Str("table", query.Table).Msg("Interaction failed")
		return nil, err
	}
	return rows, nil
}
