package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Chain.Timeout)
	assert.Equal(t, "active", cfg.Account.Permission)
	assert.Equal(t, DBTypeMemory, cfg.DB.Type)
	assert.EqualValues(t, 10, cfg.Deploy.CodeMultiplier)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chain:
  endpoint: http://127.0.0.1:8888
  timeout: 5s
account:
  name: alice
db:
  type: badgerdb
  dir: /tmp/eosdeploy
deploy:
  code_multiplier: 12
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8888", cfg.Chain.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Chain.Timeout)
	assert.Equal(t, "alice", cfg.Account.Name)
	assert.Equal(t, DBTypeBadger, cfg.DB.Type)
	assert.EqualValues(t, 12, cfg.Deploy.CodeMultiplier)
	assert.NoError(t, cfg.Validate(false))
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[account]
name = "alice"
`), 0644))
	t.Setenv("EOSDEPLOY_ACCOUNT_NAME", "bob")
	t.Setenv("EOSDEPLOY_ACCOUNT_KEY", "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Account.Name)
	assert.NotEmpty(t, cfg.Account.Key)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config "+path)
}

func TestReadIntoBoundViper(t *testing.T) {
	v := New()
	require.NoError(t, Read(v, ""))
	assert.Equal(t, DBTypeMemory, v.GetString(KeyDBType))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  name: carol\n"), 0644))
	require.NoError(t, Read(v, path))
	assert.Equal(t, "carol", v.GetString(KeyAccountName))

	err := Read(New(), filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		simulate bool
		want     error
	}{
		{"NoAccount", Config{DB: DBConfig{Type: DBTypeMemory}}, true, ErrMissingAccount},
		{"NoEndpoint", Config{Account: AccountConfig{Name: "alice"}, DB: DBConfig{Type: DBTypeMemory}}, false, ErrMissingEndpoint},
		{"Simulated", Config{Account: AccountConfig{Name: "alice"}, DB: DBConfig{Type: DBTypeMemory}}, true, nil},
		{"BadgerNoDir", Config{Account: AccountConfig{Name: "alice"}, DB: DBConfig{Type: DBTypeBadger}}, true, ErrUnknownDBType},
		{"BadType", Config{Account: AccountConfig{Name: "alice"}, DB: DBConfig{Type: "leveldb"}}, true, ErrUnknownDBType},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate(test.simulate)
			if test.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, test.want), err)
		})
	}
}
