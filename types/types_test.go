package types

import (
	"errors"
	"math"
	"testing"
	"time"

	eos "github.com/eoscanada/eos-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `{
  "version": "eosio::abi/1.1",
  "structs": [
    {"name": "user", "base": "", "fields": [
      {"name": "vaulta_account", "type": "name"},
      {"name": "is_admin", "type": "uint8"}
    ]},
    {"name": "newuser", "base": "", "fields": [
      {"name": "vaulta_account", "type": "name"}
    ]}
  ],
  "actions": [{"name": "newuser", "type": "newuser", "ricardian_contract": ""}],
  "tables": [{"name": "users", "index_type": "i64", "key_names": [], "key_types": [], "type": "user"}]
}`

func TestParseInterfaceEncodes(t *testing.T) {
	iface, err := ParseInterface([]byte(testABI))
	require.NoError(t, err)
	assert.NotEmpty(t, iface.Encoded())
	assert.Len(t, iface.ABI().Actions, 1)

	again, err := NewInterface(iface.ABI())
	require.NoError(t, err)
	assert.Equal(t, iface.Encoded(), again.Encoded(), "encoding is deterministic")
}

func TestNewInterfaceRejectsUnknownStruct(t *testing.T) {
	abi := &eos.ABI{
		Version: "eosio::abi/1.1",
		Actions: []eos.ActionDef{{Name: "hi", Type: "missing"}},
	}
	_, err := NewInterface(abi)
	assert.True(t, errors.Is(err, ErrMalformedInterface))

	_, err = NewInterface(nil)
	assert.True(t, errors.Is(err, ErrMalformedInterface))
}

func TestActionFieldsFlattensBase(t *testing.T) {
	abi := &eos.ABI{
		Structs: []eos.StructDef{
			{Name: "base", Fields: []eos.FieldDef{{Name: "owner", Type: "name"}}},
			{Name: "child", Base: "base", Fields: []eos.FieldDef{{Name: "memo", Type: "string"}}},
			{Name: "loop", Base: "loop"},
		},
	}
	fields, err := ActionFields(abi, "child")
	require.NoError(t, err)
	assert.Equal(t, []eos.FieldDef{{Name: "owner", Type: "name"}, {Name: "memo", Type: "string"}}, fields)

	_, err = ActionFields(abi, "loop")
	assert.True(t, errors.Is(err, ErrMalformedInterface))
}

func TestNewCode(t *testing.T) {
	_, err := NewCode([]byte{0x01, 0x02})
	assert.True(t, errors.Is(err, ErrInvalidCode))

	code, err := NewCode([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Len(t, code.Hash(), 64)
	assert.Equal(t, code.Hash(), Code(append([]byte{}, code...)).Hash())
}

func TestAccountInfo(t *testing.T) {
	info := &AccountInfo{RAMQuota: 5000, RAMUsage: 3000}
	assert.Equal(t, int64(2000), info.FreeRAM())

	info.RAMUsage = 6000
	assert.Equal(t, int64(0), info.FreeRAM())

	info.RAMQuota = -1
	assert.Equal(t, int64(math.MaxInt64), info.FreeRAM())

	assert.False(t, info.HasCode())
	info.LastCodeUpdate = time.Unix(0, 0).UTC()
	assert.False(t, info.HasCode(), "epoch means never updated")
	info.LastCodeUpdate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, info.HasCode())

	info.Permissions = []Permission{{Name: "owner"}, {Name: "active", Parent: "owner"}}
	perm, ok := info.Permission(ActivePermission)
	require.True(t, ok)
	assert.Equal(t, "owner", perm.Parent)
	_, ok = info.Permission("missing")
	assert.False(t, ok)
}

func TestIdentity(t *testing.T) {
	id := NewIdentity("alice", "")
	assert.Equal(t, "alice@active", id.String())
	assert.Equal(t, eos.PermissionLevel{Actor: "alice", Permission: "active"}, id.PermissionLevel())
}

func TestChainError(t *testing.T) {
	err := &ChainError{Code: ChainCodeSetExactCode, Name: "set_exact_code", Message: "contract is already running this version of code"}
	assert.Contains(t, err.Error(), "set_exact_code")
	assert.Equal(t, "plain", (&ChainError{Message: "plain"}).Error())
}
