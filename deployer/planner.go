package deployer

import (
	"fmt"
	"math"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/system"
)

var (
	systemAccount     = eos.AN("eosio")
	actionBuyRAMBytes = eos.ActN("buyrambytes")
	actionSetCode     = eos.ActN("setcode")
	actionSetABI      = eos.ActN("setabi")
	actionUpdateAuth  = eos.ActN("updateauth")
)

// Plan is the ordered action list of one deployment attempt.
type Plan struct {
	Actions  []*eos.Action
	NetBytes int64
	RAMToBuy int64
}

// RAMToBuy is the storage that must be bought before installing.
func RAMToBuy(netBytesRequired int64, freeRAM int64) int64 {
	if freeRAM >= netBytesRequired {
		return 0
	}
	return netBytesRequired - freeRAM
}

// BuildPlan composes the actions for deploying code and iface to actor. A
// storage purchase, when needed, comes first so the installs are funded
// when the chain checks RAM at execution time.
func BuildPlan(actor types.Identity, netBytesRequired int64, freeRAM int64, code types.Code, iface *types.Interface) (*Plan, error) {
	auth := []eos.PermissionLevel{actor.PermissionLevel()}
	plan := &Plan{
		NetBytes: netBytesRequired,
		RAMToBuy: RAMToBuy(netBytesRequired, freeRAM),
	}

	if plan.RAMToBuy > 0 {
		if plan.RAMToBuy > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d bytes", types.ErrRAMOverflow, plan.RAMToBuy)
		}
		plan.Actions = append(plan.Actions, &eos.Action{
			Account:       systemAccount,
			Name:          actionBuyRAMBytes,
			Authorization: auth,
			ActionData: eos.NewActionData(system.BuyRAMBytes{
				Payer:    actor.Actor,
				Receiver: actor.Actor,
				Bytes:    uint32(plan.RAMToBuy),
			}),
		})
	}

	plan.Actions = append(plan.Actions,
		&eos.Action{
			Account:       systemAccount,
			Name:          actionSetCode,
			Authorization: auth,
			ActionData: eos.NewActionData(system.SetCode{
				Account:   actor.Actor,
				VMType:    0,
				VMVersion: 0,
				Code:      eos.HexBytes(code),
			}),
		},
		&eos.Action{
			Account:       systemAccount,
			Name:          actionSetABI,
			Authorization: auth,
			ActionData: eos.NewActionData(system.SetABI{
				Account: actor.Actor,
				ABI:     eos.HexBytes(iface.Encoded()),
			}),
		},
	)
	return plan, nil
}
