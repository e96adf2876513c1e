package deployer

import (
	"context"
	"fmt"
	"sort"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/system"
)

const ownerPermission = "owner"

func hasCodePermission(auth eos.Authority, actor eos.AccountName) bool {
	for _, acc := range auth.Accounts {
		if acc.Permission.Actor == actor && acc.Permission.Permission == eos.PN(types.CodePermission) {
			return true
		}
	}
	return false
}

// withCodePermission returns a copy of auth also satisfied by actor@eosio.code.
// Accounts stay sorted as the chain requires.
func withCodePermission(auth eos.Authority, actor eos.AccountName) eos.Authority {
	accounts := append([]eos.PermissionLevelWeight{}, auth.Accounts...)
	accounts = append(accounts, eos.PermissionLevelWeight{
		Permission: eos.PermissionLevel{Actor: actor, Permission: eos.PN(types.CodePermission)},
		Weight:     1,
	})
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i].Permission, accounts[j].Permission
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		return a.Permission < b.Permission
	})
	threshold := auth.Threshold
	if threshold == 0 {
		threshold = 1
	}
	return eos.Authority{
		Threshold: threshold,
		Keys:      append([]eos.KeyWeight{}, auth.Keys...),
		Accounts:  accounts,
		Waits:     append([]eos.WaitWeight{}, auth.Waits...),
	}
}

// GrantCodePermission lets the deployed contract act with the account's
// active authority. It returns false with types.ErrAlreadyGranted when the
// permission is present, and types.ErrPermissionNotFound when the account
// has no active permission.
func (d *Deployer) GrantCodePermission(ctx context.Context) (bool, error) {
	id, err := d.identity()
	if err != nil {
		return false, err
	}
	info, err := d.session.Query(ctx, id.Actor)
	if err != nil {
		return false, err
	}

	active, ok := info.Permission(types.ActivePermission)
	if !ok {
		return false, fmt.Errorf("%w: %s@%s", types.ErrPermissionNotFound, id.Actor, types.ActivePermission)
	}
	if hasCodePermission(active.Auth, id.Actor) {
		d.logger.Warn().Str("account", string(id.Actor)).Msg("Code permission already granted")
		return false, types.ErrAlreadyGranted
	}

	parent := active.Parent
	if parent == "" {
		parent = ownerPermission
	}
	action := &eos.Action{
		Account:       systemAccount,
		Name:          actionUpdateAuth,
		Authorization: []eos.PermissionLevel{id.PermissionLevel()},
		ActionData: eos.NewActionData(system.UpdateAuth{
			Account:    id.Actor,
			Permission: eos.PN(types.ActivePermission),
			Parent:     eos.PN(parent),
			Auth:       withCodePermission(active.Auth, id.Actor),
		}),
	}
	receipt, err := d.session.Submit(ctx, []*eos.Action{action})
	if err != nil {
		d.logger.Error().Err(err).Str("account", string(id.Actor)).Msg("Failed to grant code permission")
		return false, err
	}
	d.logger.Info().Str("account", string(id.Actor)).Str("tx", receipt.TxID).Msg("Granted code permission")
	return true, nil
}
