package cli

import (
	"context"
	"fmt"
	"time"

	"contract-admin/config"
	"contract-admin/internal/chain"
	"contract-admin/internal/connection"
	"contract-admin/internal/contract"
	"contract-admin/internal/forms"
	"contract-admin/internal/wallet"
	"contract-admin/log"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// walletCapability is a wallet whose change events come from polling.
type walletCapability interface {
	wallet.Capability
	chain.Poller
}

// Chain is the contract interface plus the wallet it is administered through.
type Chain struct {
	Interface *contract.Interface
	Wallet    walletCapability
	Tracker   *connection.Tracker
	Logs      chain.LogSource // node the event log reads from

	closers []func()
}

func (c *Chain) Close() {
	if c.Tracker != nil {
		c.Tracker.Close()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// openChain loads the ABI, dials the node and opens the configured wallet.
// With retry set the node is dialled until it answers or ctx ends.
func openChain(ctx context.Context, conf *config.Conf, retry bool) (*Chain, error) {
	iface, err := contract.LoadFile(conf.Contract.AbiPath)
	if err != nil {
		return nil, err
	}
	if missing := iface.Missing(conf.Contract.Functions); len(missing) > 0 {
		log.Logger.Warn("selected functions not in ABI", zap.Strings("functions", missing))
	}
	if !common.IsHexAddress(conf.Contract.Address) {
		return nil, fmt.Errorf("config: contract.address %q is not an address", conf.Contract.Address)
	}

	dial := chain.Dial
	if retry {
		dial = chain.DialRetry
	}
	client, err := dial(ctx, conf.Network.NetUrl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", conf.Network.NetUrl, err)
	}
	c := &Chain{Interface: iface, Logs: client, closers: []func(){client.Close}}
	bound := chain.NewContract(client, common.HexToAddress(conf.Contract.Address), iface.ABI())

	switch conf.Wallet.Mode {
	case "keyed":
		key, err := chain.KeyFromEnv(conf.Wallet.PrivateKeyEnv)
		if err != nil {
			c.Close()
			return nil, err
		}
		w, err := chain.NewKeyedWallet(bound, key, conf.Network.ChainId)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Wallet = w
	default:
		w, err := chain.DialWallet(ctx, conf.Wallet.RpcUrl, bound)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Wallet = w
		c.closers = append(c.closers, w.Close)
	}
	c.Tracker = connection.NewTracker(c.Wallet, requiredChain(conf))
	log.Logger.Info("chain ready",
		zap.String("mode", conf.Wallet.Mode),
		zap.String("contract", conf.Contract.Address),
		zap.Uint64("chain_id", conf.Network.ChainId),
		zap.Int("functions", len(iface.Functions())))
	return c, nil
}

func requiredChain(conf *config.Conf) wallet.ChainParams {
	return wallet.ChainParams{
		ChainID:        conf.Network.ChainId,
		Name:           conf.Network.Name,
		RpcUrl:         conf.Network.NetUrl,
		ExplorerUrl:    conf.Network.ExplorerUrl,
		CurrencyName:   conf.Contract.CurrencySymbol,
		CurrencySymbol: conf.Contract.CurrencySymbol,
		Decimals:       conf.Contract.CurrencyDecimal,
	}
}

func formOptions(conf *config.Conf) forms.Options {
	return forms.Options{CurrencySymbol: conf.Contract.CurrencySymbol}
}

func pollInterval(conf *config.Conf) time.Duration {
	return time.Duration(conf.Wallet.PollInterval) * time.Second
}
