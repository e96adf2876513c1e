// Package publisher projects contract ABIs into the action and table listing
// consumers render, and keeps the latest projection per account.
package publisher

import (
	"fmt"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
)

// Publish flattens every action's parameter struct and lists the tables.
// It fails with types.ErrMalformedInterface when a struct cannot be resolved.
func Publish(abi *eos.ABI) (*types.PublishedInterface, error) {
	if abi == nil {
		return nil, fmt.Errorf("%w: nil abi", types.ErrMalformedInterface)
	}

	published := &types.PublishedInterface{
		Actions: make([]types.PublishedAction, 0, len(abi.Actions)),
		Tables:  make([]types.PublishedTable, 0, len(abi.Tables)),
	}
	for _, action := range abi.Actions {
		fields, err := types.ActionFields(abi, action.Type)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", action.Name, err)
		}
		params := make([]types.ActionParam, 0, len(fields))
		for _, field := range fields {
			params = append(params, types.ActionParam{Name: field.Name, Type: field.Type})
		}
		published.Actions = append(published.Actions, types.PublishedAction{
			Name:   string(action.Name),
			Params: params,
		})
	}
	for _, table := range abi.Tables {
		published.Tables = append(published.Tables, types.PublishedTable{Name: string(table.Name)})
	}
	return published, nil
}
