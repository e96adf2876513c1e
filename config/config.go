// Package config loads deployment settings from a config file and EOSDEPLOY_
// prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "EOSDEPLOY"

const (
	KeyChainEndpoint      = "chain.endpoint"
	KeyChainTimeout       = "chain.timeout"
	KeyAccountName        = "account.name"
	KeyAccountPermission  = "account.permission"
	KeyAccountKey         = "account.key"
	KeyDBType             = "db.type"
	KeyDBDir              = "db.dir"
	KeyCodeMultiplier     = "deploy.code_multiplier"
	KeySimulationRAMQuota = "simulation.ram_quota"
)

const (
	DBTypeMemory = "memorydb"
	DBTypeBadger = "badgerdb"
)

var (
	ErrMissingEndpoint = errors.New("chain.endpoint is required")
	ErrMissingAccount  = errors.New("account.name is required")
	ErrUnknownDBType   = errors.New("unknown db.type")
)

type ChainConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AccountConfig struct {
	Name       string `mapstructure:"name"`
	Permission string `mapstructure:"permission"`
	// Key is a WIF private key. Leave it out of files and set EOSDEPLOY_ACCOUNT_KEY.
	Key string `mapstructure:"key"`
}

type DBConfig struct {
	Type string `mapstructure:"type"`
	Dir  string `mapstructure:"dir"`
}

type DeployConfig struct {
	CodeMultiplier int64 `mapstructure:"code_multiplier"`
}

// SimulationConfig shapes the in-memory chain used by --simulate.
type SimulationConfig struct {
	RAMQuota int64 `mapstructure:"ram_quota"`
}

type Config struct {
	Chain      ChainConfig      `mapstructure:"chain"`
	Account    AccountConfig    `mapstructure:"account"`
	DB         DBConfig         `mapstructure:"db"`
	Deploy     DeployConfig     `mapstructure:"deploy"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyChainEndpoint, "")
	v.SetDefault(KeyChainTimeout, 30*time.Second)
	v.SetDefault(KeyAccountName, "")
	v.SetDefault(KeyAccountPermission, "active")
	v.SetDefault(KeyAccountKey, "")
	v.SetDefault(KeyDBType, DBTypeMemory)
	v.SetDefault(KeyDBDir, "")
	v.SetDefault(KeyCodeMultiplier, 10)
	v.SetDefault(KeySimulationRAMQuota, 0)
}

// New returns a viper instance with defaults and environment binding, ready
// for flags to be bound onto it.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// Read merges the file at path into v. An empty path leaves v untouched.
func Read(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load reads path, when set, on top of defaults and environment.
func Load(path string) (*Config, error) {
	v := New()
	if err := Read(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings a run needs. Simulated runs need no endpoint.
func (c *Config) Validate(simulate bool) error {
	if c.Account.Name == "" {
		return ErrMissingAccount
	}
	if !simulate && c.Chain.Endpoint == "" {
		return ErrMissingEndpoint
	}
	switch c.DB.Type {
	case DBTypeMemory:
	case DBTypeBadger:
		if c.DB.Dir == "" {
			return fmt.Errorf("%w: %s needs db.dir", ErrUnknownDBType, c.DB.Type)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDBType, c.DB.Type)
	}
	return nil
}
