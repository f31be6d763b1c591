package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCWallet talks to an external wallet over JSON-RPC (a Frame or Rabby style
// desktop endpoint). The wallet signs; the panel only sends requests.
type RPCWallet struct {
	*Contract
	watcher

	rpc *rpc.Client
}

var _ wallet.Capability = (*RPCWallet)(nil)

// DialWallet connects to the wallet endpoint at url.
func DialWallet(ctx context.Context, url string, contract *Contract) (*RPCWallet, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrNoWallet, err)
	}
	return NewRPCWallet(c, contract), nil
}

func NewRPCWallet(c *rpc.Client, contract *Contract) *RPCWallet {
	return &RPCWallet{Contract: contract, rpc: c}
}

func (w *RPCWallet) Close() { w.rpc.Close() }

// RequestAccounts asks the wallet for account access. Any failure that is not
// a wallet answer means no wallet is reachable.
func (w *RPCWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := w.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		var rpcErr rpc.Error
		if !errors.As(err, &rpcErr) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", wallet.ErrNoWallet, err)
		}
		return nil, mapError(err)
	}
	return accounts, nil
}

func (w *RPCWallet) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := w.rpc.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return 0, mapError(err)
	}
	return uint64(id), nil
}

type switchChainParams struct {
	ChainID hexutil.Uint64 `json:"chainId"`
}

func (w *RPCWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	err := w.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: hexutil.Uint64(chainID)})
	return mapError(err)
}

type nativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

type addChainParams struct {
	ChainID           hexutil.Uint64 `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RpcUrls           []string       `json:"rpcUrls"`
	BlockExplorerUrls []string       `json:"blockExplorerUrls,omitempty"`
	NativeCurrency    nativeCurrency `json:"nativeCurrency"`
}

func (w *RPCWallet) AddChain(ctx context.Context, p wallet.ChainParams) error {
	params := addChainParams{
		ChainID:   hexutil.Uint64(p.ChainID),
		ChainName: p.Name,
		RpcUrls:   []string{p.RpcUrl},
		NativeCurrency: nativeCurrency{
			Name:     p.CurrencyName,
			Symbol:   p.CurrencySymbol,
			Decimals: p.Decimals,
		},
	}
	if p.ExplorerUrl != "" {
		params.BlockExplorerUrls = []string{p.ExplorerUrl}
	}
	return mapError(w.rpc.CallContext(ctx, nil, "wallet_addEthereumChain", params))
}

type sendTxParams struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value *hexutil.Big   `json:"value,omitempty"`
}

// Transact asks the wallet to sign and send a call to function.
func (w *RPCWallet) Transact(ctx context.Context, from common.Address, function string, args wallet.Args, value *big.Int) (wallet.PendingTx, error) {
	data, _, err := w.Pack(function, args)
	if err != nil {
		return nil, err
	}
	params := sendTxParams{From: from, To: w.address, Data: data}
	if value != nil && value.Sign() > 0 {
		params.Value = (*hexutil.Big)(value)
	}

	var hash common.Hash
	if err := w.rpc.CallContext(ctx, &hash, "eth_sendTransaction", params); err != nil {
		return nil, mapError(err)
	}
	p := &pendingTx{hash: hash}
	if w.client != nil {
		p.backend = w.client
	}
	return p, nil
}

// Poll reads the exposed accounts and chain and emits change events.
func (w *RPCWallet) Poll(ctx context.Context) error {
	var accounts []common.Address
	if err := w.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return mapError(err)
	}
	chainID, err := w.ChainID(ctx)
	if err != nil {
		return err
	}
	w.emit(w.observe(accounts, chainID))
	return nil
}
