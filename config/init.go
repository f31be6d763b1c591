package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "configs/config.toml"

// Load decodes the toml file at path, applies defaults and stores the result in Config.
func Load(path string) (*Conf, error) {
	if path == "" {
		path = DefaultPath
	}
	conf := &Conf{}
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	conf.setDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	Config = conf
	return conf, nil
}

func (c *Conf) setDefaults() {
	if c.Env.Port == "" {
		c.Env.Port = "8080"
	}
	if c.Env.Version == "" {
		c.Env.Version = "v1"
	}
	if c.Env.WorkerNum <= 0 {
		c.Env.WorkerNum = 4
	}
	if c.Env.QueueSize <= 0 {
		c.Env.QueueSize = 100
	}
	if c.Contract.CurrencySymbol == "" {
		c.Contract.CurrencySymbol = "ETH"
	}
	if c.Contract.CurrencyDecimal == 0 {
		c.Contract.CurrencyDecimal = 18
	}
	if c.Wallet.Mode == "" {
		c.Wallet.Mode = "rpc"
	}
	if c.Wallet.PollInterval == 0 {
		c.Wallet.PollInterval = 5
	}
	if c.Wallet.PrivateKeyEnv == "" {
		c.Wallet.PrivateKeyEnv = "admin_private_key"
	}
	if c.Redis.PanelTTL == 0 {
		c.Redis.PanelTTL = 3600
	}
	if c.Jwt.ExpireTime == 0 {
		c.Jwt.ExpireTime = 24 * 3600
	}
	if c.Events.Lookback == 0 {
		c.Events.Lookback = 5000
	}
	if c.Events.PollInterval == 0 {
		c.Events.PollInterval = 15
	}
	if c.Events.Keep <= 0 {
		c.Events.Keep = 200
	}
	if c.Events.Recent <= 0 {
		c.Events.Recent = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the fields without which the panel cannot start.
func (c *Conf) Validate() error {
	switch {
	case c.Contract.Address == "":
		return errors.New("config: contract.address is empty")
	case c.Contract.AbiPath == "":
		return errors.New("config: contract.abi_path is empty")
	case c.Network.ChainId == 0:
		return errors.New("config: network.chain_id is empty")
	case c.Network.NetUrl == "":
		return errors.New("config: network.net_url is empty")
	}
	if c.Wallet.Mode != "rpc" && c.Wallet.Mode != "keyed" {
		return fmt.Errorf("config: unknown wallet.mode %q", c.Wallet.Mode)
	}
	if c.Wallet.Mode == "rpc" && c.Wallet.RpcUrl == "" {
		return errors.New("config: wallet.rpc_url is required in rpc mode")
	}
	return nil
}
