package types

import (
	"math"
	"time"

	eos "github.com/eoscanada/eos-go"
)

// ActivePermission is the permission deployments are authorized under.
const ActivePermission = "active"

// CodePermission is the virtual permission a contract uses to act on its own behalf.
const CodePermission = "eosio.code"

type Permission struct {
	Name   string
	Parent string
	Auth   eos.Authority
}

// AccountInfo is the slice of account state the deployer reads.
type AccountInfo struct {
	Name           eos.AccountName
	RAMQuota       int64
	RAMUsage       int64
	LastCodeUpdate time.Time
	Permissions    []Permission
}

// FreeRAM returns purchased but unused storage. A negative quota means the
// account is not RAM limited.
func (info *AccountInfo) FreeRAM() int64 {
	if info.RAMQuota < 0 {
		return math.MaxInt64
	}
	free := info.RAMQuota - info.RAMUsage
	if free < 0 {
		return 0
	}
	return free
}

// HasCode reports whether code was ever set on the account. Chains report
// the epoch as last_code_update for accounts that never deployed.
func (info *AccountInfo) HasCode() bool {
	return !info.LastCodeUpdate.IsZero() && info.LastCodeUpdate.Unix() > 0
}

func (info *AccountInfo) Permission(name string) (*Permission, bool) {
	for i := range info.Permissions {
		if info.Permissions[i].Name == name {
			return &info.Permissions[i], true
		}
	}
	return nil, false
}

// Identity is the authenticated actor issuing transactions.
type Identity struct {
	Actor      eos.AccountName
	Permission eos.PermissionName
}

func NewIdentity(actor string, permission string) Identity {
	if permission == "" {
		permission = ActivePermission
	}
	return Identity{Actor: eos.AN(actor), Permission: eos.PN(permission)}
}

func (id Identity) PermissionLevel() eos.PermissionLevel {
	return eos.PermissionLevel{Actor: id.Actor, Permission: id.Permission}
}

func (id Identity) String() string {
	return string(id.Actor) + "@" + string(id.Permission)
}
