// Package wallettest provides an in-memory wallet capability for tests.
package wallettest

import (
	"context"
	"math/big"
	"sync"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Call records one Call or Transact on the fake.
type Call struct {
	Function string
	Args     wallet.Args
	From     common.Address
	Value    *big.Int
}

// Wallet is a programmable wallet.Capability.
type Wallet struct {
	mu sync.Mutex

	Accounts     []common.Address
	Chain        uint64
	KnownChains  map[uint64]bool
	AccountsErr  error
	TransactErr  error
	WaitErr      error
	Reverted     bool
	BlockNumber  uint64
	TxHash       common.Hash
	Outputs      map[string][]wallet.Output
	CallErr      error
	Balances     map[common.Address]*big.Int
	Added        []wallet.ChainParams
	Switches     []uint64
	Calls        []Call
	Transactions []Call
	Subscribers  int

	// Gate, when set, blocks Wait until it is closed.
	Gate chan struct{}

	listeners map[int]func(wallet.Event)
	next      int
}

// New returns a wallet holding account on chain.
func New(account common.Address, chain uint64) *Wallet {
	return &Wallet{
		Accounts:    []common.Address{account},
		Chain:       chain,
		KnownChains: map[uint64]bool{chain: true},
		BlockNumber: 1,
		TxHash:      common.HexToHash("0xabc1"),
		Outputs:     map[string][]wallet.Output{},
		Balances:    map[common.Address]*big.Int{},
		listeners:   map[int]func(wallet.Event){},
	}
}

func (w *Wallet) RequestAccounts(context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.AccountsErr != nil {
		return nil, w.AccountsErr
	}
	return append([]common.Address(nil), w.Accounts...), nil
}

func (w *Wallet) ChainID(context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Chain, nil
}

func (w *Wallet) SwitchChain(_ context.Context, chainID uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Switches = append(w.Switches, chainID)
	if !w.KnownChains[chainID] {
		return wallet.ErrChainUnknown
	}
	w.Chain = chainID
	return nil
}

func (w *Wallet) AddChain(_ context.Context, params wallet.ChainParams) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Added = append(w.Added, params)
	w.KnownChains[params.ChainID] = true
	return nil
}

func (w *Wallet) Subscribe(fn func(wallet.Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.next
	w.next++
	w.listeners[id] = fn
	w.Subscribers++
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.listeners[id]; ok {
			delete(w.listeners, id)
			w.Subscribers--
		}
	}
}

// Emit delivers ev to every subscriber, outside the lock.
func (w *Wallet) Emit(ev wallet.Event) {
	w.mu.Lock()
	fns := make([]func(wallet.Event), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// SetChain changes the active chain and notifies subscribers.
func (w *Wallet) SetChain(chainID uint64) {
	w.mu.Lock()
	w.Chain = chainID
	w.mu.Unlock()
	w.Emit(wallet.Event{Kind: wallet.ChainChanged, ChainID: chainID})
}

// SetAccounts changes the exposed accounts and notifies subscribers.
func (w *Wallet) SetAccounts(accounts ...common.Address) {
	w.mu.Lock()
	w.Accounts = accounts
	w.mu.Unlock()
	w.Emit(wallet.Event{Kind: wallet.AccountsChanged, Accounts: accounts})
}

func (w *Wallet) Call(_ context.Context, function string, args wallet.Args) ([]wallet.Output, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Calls = append(w.Calls, Call{Function: function, Args: args})
	if w.CallErr != nil {
		return nil, w.CallErr
	}
	return w.Outputs[function], nil
}

func (w *Wallet) Balance(_ context.Context, account common.Address) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.Balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (w *Wallet) Transact(_ context.Context, from common.Address, function string, args wallet.Args, value *big.Int) (wallet.PendingTx, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Transactions = append(w.Transactions, Call{Function: function, Args: args, From: from, Value: value})
	if w.TransactErr != nil {
		return nil, w.TransactErr
	}
	return &pending{w: w, hash: w.TxHash}, nil
}

// TransactionCount returns the number of Transact calls so far.
func (w *Wallet) TransactionCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Transactions)
}

type pending struct {
	w    *Wallet
	hash common.Hash
}

func (p *pending) Hash() common.Hash { return p.hash }

func (p *pending) Wait(ctx context.Context) (*wallet.Receipt, error) {
	if p.w.Gate != nil {
		select {
		case <-p.w.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	if p.w.WaitErr != nil {
		return nil, p.w.WaitErr
	}
	return &wallet.Receipt{BlockNumber: p.w.BlockNumber, Hash: p.hash, Success: !p.w.Reverted}, nil
}
