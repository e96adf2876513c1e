package simulated

import (
	"fmt"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
	"github.com/eoscanada/eos-go/system"
)

// decode resolves action data that was either attached as a Go value or
// supplied pre-encoded as hex data.
func decode(data eos.ActionData, out interface{}) error {
	if len(data.HexData) == 0 {
		return &types.ChainError{Code: 3015014, Name: "abi_serialization_exception", Message: fmt.Sprintf("unsupported action data %T", data.Data)}
	}
	if err := eos.UnmarshalBinary(data.HexData, out); err != nil {
		return &types.ChainError{Code: 3015014, Name: "abi_serialization_exception", Message: err.Error()}
	}
	return nil
}

func buyRAMArgs(data eos.ActionData) (eos.AccountName, eos.AccountName, uint32, error) {
	switch v := data.Data.(type) {
	case system.BuyRAMBytes:
		return v.Payer, v.Receiver, v.Bytes, nil
	case *system.BuyRAMBytes:
		return v.Payer, v.Receiver, v.Bytes, nil
	}
	var v system.BuyRAMBytes
	err := decode(data, &v)
	return v.Payer, v.Receiver, v.Bytes, err
}

func setCodeArgs(data eos.ActionData) (eos.AccountName, []byte, error) {
	switch v := data.Data.(type) {
	case system.SetCode:
		return v.Account, v.Code, nil
	case *system.SetCode:
		return v.Account, v.Code, nil
	}
	var v system.SetCode
	err := decode(data, &v)
	return v.Account, v.Code, err
}

func setABIArgs(data eos.ActionData) (eos.AccountName, []byte, error) {
	switch v := data.Data.(type) {
	case system.SetABI:
		return v.Account, v.ABI, nil
	case *system.SetABI:
		return v.Account, v.ABI, nil
	}
	var v system.SetABI
	err := decode(data, &v)
	return v.Account, v.ABI, err
}

func updateAuthArgs(data eos.ActionData) (eos.AccountName, eos.PermissionName, eos.PermissionName, eos.Authority, error) {
	switch v := data.Data.(type) {
	case system.UpdateAuth:
		return v.Account, v.Permission, v.Parent, v.Auth, nil
	case *system.UpdateAuth:
		return v.Account, v.Permission, v.Parent, v.Auth, nil
	}
	var v system.UpdateAuth
	err := decode(data, &v)
	return v.Account, v.Permission, v.Parent, v.Auth, err
}
