// Package simulated is an in-memory chain that implements session.Session.
// It models the resource accounting relevant to deployments: RAM quota and
// usage, setcode/setabi charges, buyrambytes and updateauth.
package simulated

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/celer-network/go-eosdeploy/types"
	eos "github.com/eoscanada/eos-go"
	"github.com/minio/sha256-simd"
)

// SetcodeRAMMultiplier is the per byte RAM charge applied to contract code.
const SetcodeRAMMultiplier = 10

type account struct {
	info types.AccountInfo
	code []byte
	abi  []byte
	rows map[string][]json.RawMessage
}

func cloneAuthority(auth eos.Authority) eos.Authority {
	return eos.Authority{
		Threshold: auth.Threshold,
		Keys:      append([]eos.KeyWeight{}, auth.Keys...),
		Accounts:  append([]eos.PermissionLevelWeight{}, auth.Accounts...),
		Waits:     append([]eos.WaitWeight{}, auth.Waits...),
	}
}

func (a *account) clone() *account {
	c := *a
	c.info.Permissions = make([]types.Permission, len(a.info.Permissions))
	for i, perm := range a.info.Permissions {
		perm.Auth = cloneAuthority(perm.Auth)
		c.info.Permissions[i] = perm
	}
	c.rows = make(map[string][]json.RawMessage, len(a.rows))
	for table, rows := range a.rows {
		c.rows[table] = append([]json.RawMessage{}, rows...)
	}
	return &c
}

// Chain holds the simulated state. It is safe for concurrent use.
type Chain struct {
	lock      sync.Mutex
	accounts  map[eos.AccountName]*account
	now       func() time.Time
	blockNum  uint32
	txLog     [][]*eos.Action
	queryErr  error
	fetchErr  error
	submitErr error
}

func NewChain() *Chain {
	return &Chain{
		accounts: make(map[eos.AccountName]*account),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for last_code_update.
func (c *Chain) SetClock(now func() time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now
}

// CreateAccount registers name with owner and active permissions keyed to
// nothing but a placeholder key, and the given RAM quota and usage.
func (c *Chain) CreateAccount(name string, ramQuota int64, ramUsage int64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	auth := eos.Authority{Threshold: 1}
	c.accounts[eos.AN(name)] = &account{
		info: types.AccountInfo{
			Name:           eos.AN(name),
			RAMQuota:       ramQuota,
			RAMUsage:       ramUsage,
			LastCodeUpdate: time.Unix(0, 0).UTC(),
			Permissions: []types.Permission{
				{Name: "owner", Auth: auth},
				{Name: types.ActivePermission, Parent: "owner", Auth: auth},
			},
		},
		rows: make(map[string][]json.RawMessage),
	}
}

// Account returns a snapshot of the account state.
func (c *Chain) Account(name string) (types.AccountInfo, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	acc, ok := c.accounts[eos.AN(name)]
	if !ok {
		return types.AccountInfo{}, false
	}
	return acc.clone().info, true
}

// SetRows replaces the rows of table on account.
func (c *Chain) SetRows(name string, table string, rows ...json.RawMessage) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if acc, ok := c.accounts[eos.AN(name)]; ok {
		acc.rows[table] = rows
	}
}

// FailQueries makes account queries return err until reset with nil.
func (c *Chain) FailQueries(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.queryErr = err
}

// FailFetches makes code and interface reads return err until reset with nil.
func (c *Chain) FailFetches(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.fetchErr = err
}

// FailSubmissions makes every submission fail with err, as a network fault would.
func (c *Chain) FailSubmissions(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.submitErr = err
}

// Transactions returns every accepted transaction in order.
func (c *Chain) Transactions() [][]*eos.Action {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([][]*eos.Action{}, c.txLog...)
}

func (c *Chain) lookup(name eos.AccountName) (*account, error) {
	acc, ok := c.accounts[name]
	if !ok {
		return nil, &types.ChainError{Code: 3010001, Name: "name_type_exception", Message: fmt.Sprintf("unknown key (eosio::chain::name): %s", name)}
	}
	return acc, nil
}

// apply runs actions against a copy of the touched accounts and commits only
// when every action succeeds.
func (c *Chain) apply(actor types.Identity, actions []*eos.Action) (string, error) {
	touched := make(map[eos.AccountName]*account)
	get := func(name eos.AccountName) (*account, error) {
		if acc, ok := touched[name]; ok {
			return acc, nil
		}
		acc, err := c.lookup(name)
		if err != nil {
			return nil, err
		}
		touched[name] = acc.clone()
		return touched[name], nil
	}

	for _, action := range actions {
		if err := checkAuth(actor, action); err != nil {
			return "", err
		}
		var err error
		if action.Account == eos.AN("eosio") {
			err = c.applySystem(get, action)
		} else {
			err = applyContract(get, action)
		}
		if err != nil {
			return "", err
		}
	}

	for name, acc := range touched {
		if acc.info.RAMQuota >= 0 && acc.info.RAMUsage > acc.info.RAMQuota {
			return "", &types.ChainError{
				Code:    types.ChainCodeRAMUsageExceeded,
				Name:    "ram_usage_exceeded",
				Message: fmt.Sprintf("account %s has insufficient ram; needs %d bytes has %d bytes", name, acc.info.RAMUsage, acc.info.RAMQuota),
			}
		}
	}
	for name, acc := range touched {
		c.accounts[name] = acc
	}

	c.blockNum++
	c.txLog = append(c.txLog, actions)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(len(c.txLog)))
	sum := sha256.Sum256(seq[:])
	return hex.EncodeToString(sum[:]), nil
}

func checkAuth(actor types.Identity, action *eos.Action) error {
	for _, level := range action.Authorization {
		if level.Actor == actor.Actor && level.Permission == actor.Permission {
			return nil
		}
	}
	return &types.ChainError{
		Code:    types.ChainCodeMissingAuth,
		Name:    "missing_auth_exception",
		Message: fmt.Sprintf("missing authority of %s", actor),
	}
}

func (c *Chain) applySystem(get func(eos.AccountName) (*account, error), action *eos.Action) error {
	switch action.Name {
	case eos.ActN("buyrambytes"):
		payer, receiver, size, err := buyRAMArgs(action.ActionData)
		if err != nil {
			return err
		}
		if _, err := get(payer); err != nil {
			return err
		}
		acc, err := get(receiver)
		if err != nil {
			return err
		}
		acc.info.RAMQuota += int64(size)

	case eos.ActN("setcode"):
		target, code, err := setCodeArgs(action.ActionData)
		if err != nil {
			return err
		}
		acc, err := get(target)
		if err != nil {
			return err
		}
		if len(acc.code) > 0 && bytes.Equal(acc.code, code) {
			return &types.ChainError{
				Code:    types.ChainCodeSetExactCode,
				Name:    "set_exact_code",
				Message: "contract is already running this version of code",
			}
		}
		acc.info.RAMUsage += int64(len(code)-len(acc.code)) * SetcodeRAMMultiplier
		acc.code = append([]byte{}, code...)
		acc.info.LastCodeUpdate = c.now().UTC()

	case eos.ActN("setabi"):
		target, abi, err := setABIArgs(action.ActionData)
		if err != nil {
			return err
		}
		acc, err := get(target)
		if err != nil {
			return err
		}
		if len(abi) > 0 {
			var decoded eos.ABI
			if err := eos.UnmarshalBinary(abi, &decoded); err != nil {
				return &types.ChainError{Code: 3015014, Name: "abi_serialization_exception", Message: err.Error()}
			}
		}
		acc.info.RAMUsage += int64(len(abi) - len(acc.abi))
		acc.abi = append([]byte{}, abi...)

	case eos.ActN("updateauth"):
		target, perm, parent, auth, err := updateAuthArgs(action.ActionData)
		if err != nil {
			return err
		}
		acc, err := get(target)
		if err != nil {
			return err
		}
		if p, ok := acc.info.Permission(string(perm)); ok {
			p.Parent = string(parent)
			p.Auth = auth
		} else {
			acc.info.Permissions = append(acc.info.Permissions, types.Permission{Name: string(perm), Parent: string(parent), Auth: auth})
		}

	default:
		return &types.ChainError{Code: 3040004, Name: "action_validate_exception", Message: fmt.Sprintf("unknown system action %s", action.Name)}
	}
	return nil
}

func applyContract(get func(eos.AccountName) (*account, error), action *eos.Action) error {
	acc, err := get(action.Account)
	if err != nil {
		return err
	}
	if len(acc.code) == 0 || len(acc.abi) == 0 {
		return &types.ChainError{Code: 3050003, Name: "eosio_assert_message_exception", Message: fmt.Sprintf("account %s has no contract", action.Account)}
	}
	var abi eos.ABI
	if err := eos.UnmarshalBinary(acc.abi, &abi); err != nil {
		return &types.ChainError{Code: 3015014, Name: "abi_serialization_exception", Message: err.Error()}
	}
	for _, def := range abi.Actions {
		if def.Name == action.Name {
			return nil
		}
	}
	return &types.ChainError{Code: 3040004, Name: "action_validate_exception", Message: fmt.Sprintf("unknown action %s on %s", action.Name, action.Account)}
}
