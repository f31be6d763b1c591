package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyedWallet signs locally with a private key and sends through the node.
// It is bound to the chain it was created for and cannot switch.
type KeyedWallet struct {
	*Contract
	watcher

	key     *ecdsa.PrivateKey
	account common.Address
	chainID uint64
}

var _ wallet.Capability = (*KeyedWallet)(nil)

// KeyFromEnv reads a hex private key from the environment variable name.
func KeyFromEnv(name string) (string, error) {
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", fmt.Errorf("chain: environment variable %s is empty", name)
	}
	return key, nil
}

// NewKeyedWallet parses hexKey, with or without 0x, for signing on chainID.
func NewKeyedWallet(contract *Contract, hexKey string, chainID uint64) (*KeyedWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: parse private key: %w", err)
	}
	return &KeyedWallet{
		Contract: contract,
		key:      key,
		account:  crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
	}, nil
}

func (w *KeyedWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{w.account}, nil
}

// ChainID reports the node's chain, which may differ from the signing chain.
func (w *KeyedWallet) ChainID(ctx context.Context) (uint64, error) {
	if w.client == nil {
		return w.chainID, nil
	}
	id, err := w.client.ChainID(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	return id.Uint64(), nil
}

func (w *KeyedWallet) SwitchChain(_ context.Context, chainID uint64) error {
	if chainID == w.chainID {
		return nil
	}
	return fmt.Errorf("%w: keyed signer is bound to chain %d", wallet.ErrSwitchUnsupported, w.chainID)
}

func (w *KeyedWallet) AddChain(_ context.Context, p wallet.ChainParams) error {
	return fmt.Errorf("%w: cannot add chain %d", wallet.ErrSwitchUnsupported, p.ChainID)
}

// Transact signs and sends a call to function from the key's account.
func (w *KeyedWallet) Transact(ctx context.Context, from common.Address, function string, args wallet.Args, value *big.Int) (wallet.PendingTx, error) {
	if from != w.account {
		return nil, fmt.Errorf("chain: keyed signer cannot send from %s", from.Hex())
	}
	m, err := w.method(function)
	if err != nil {
		return nil, err
	}
	params, err := CoerceArgs(m, args)
	if err != nil {
		return nil, err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(w.key, new(big.Int).SetUint64(w.chainID))
	if err != nil {
		return nil, err
	}
	auth.Context = ctx
	if value != nil && value.Sign() > 0 {
		auth.Value = value
	}

	tx, err := w.bound.Transact(auth, function, params...)
	if err != nil {
		return nil, mapError(err)
	}
	return &pendingTx{hash: tx.Hash(), tx: tx, backend: w.client}, nil
}

// Poll checks the node's chain; the account never changes.
func (w *KeyedWallet) Poll(ctx context.Context) error {
	id, err := w.ChainID(ctx)
	if err != nil {
		return err
	}
	w.emit(w.observe([]common.Address{w.account}, id))
	return nil
}
