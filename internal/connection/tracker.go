// Package connection mirrors the external wallet's account and chain into the
// panel and decides whether writes may be sent.
package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"contract-admin/internal/wallet"
	"contract-admin/log"

	"go.uber.org/zap"
)

// ResyncTimeout bounds a resynchronization triggered by a wallet event.
const ResyncTimeout = 30 * time.Second

// Tracker owns the connection state. Wallet change events are handled by a
// full resynchronization instead of patching the state.
type Tracker struct {
	provider wallet.Provider
	required wallet.ChainParams

	mu        sync.RWMutex
	state     State
	listeners []func(State)

	subMu       sync.Mutex
	unsubscribe func()
}

// NewTracker returns a disconnected tracker for the required network.
func NewTracker(provider wallet.Provider, required wallet.ChainParams) *Tracker {
	return &Tracker{
		provider: provider,
		required: required,
		state: State{
			Status:  StatusDisconnected,
			Message: "Wallet not connected.",
			Action:  ActionConnect,
		},
	}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Required returns the network writes must be sent on.
func (t *Tracker) Required() wallet.ChainParams {
	return t.required
}

// OnChange registers fn to receive every new state.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tracker) set(s State) {
	t.mu.Lock()
	t.state = s
	listeners := append([]func(State){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Connect requests account access, reads the active chain and compares it with
// the required one. Calling it again reconciles the state; wallet events are
// subscribed to only once.
func (t *Tracker) Connect(ctx context.Context) error {
	prev := t.State()
	t.set(State{
		Account: prev.Account,
		ChainID: prev.ChainID,
		Status:  StatusConnecting,
		Message: "Connecting...",
		Action:  ActionReconnect,
	})

	accounts, err := t.provider.RequestAccounts(ctx)
	if err != nil {
		t.fail(err)
		return err
	}
	t.subscribeOnce()

	if len(accounts) == 0 {
		t.disconnected()
		return nil
	}
	account := accounts[0]

	chainID, err := t.provider.ChainID(ctx)
	if err != nil {
		t.fail(err)
		return err
	}

	s := State{Account: &account, ChainID: &chainID}
	if chainID != t.required.ChainID {
		s.Status = StatusWrongNetwork
		s.Message = wrongNetworkMessage(chainID, t.required.Name, t.required.ChainID)
		s.Action = ActionSwitch
	} else {
		s.OnRequiredNetwork = true
		s.Status = StatusConnected
		s.Message = "Connected: " + ShortAddress(account)
	}
	t.set(s)

	log.Logger.Info("wallet connected",
		zap.String("account", account.Hex()),
		zap.Uint64("chain_id", chainID),
		zap.Bool("required_network", s.OnRequiredNetwork))
	return nil
}

func (t *Tracker) fail(err error) {
	s := State{Status: StatusFailed, Message: "Connection failed.", Action: ActionReconnect}
	if errors.Is(err, wallet.ErrNoWallet) {
		s = State{Status: StatusNoWallet, Message: "Wallet not detected.", Action: ActionConnect}
	}
	t.set(s)
	log.Logger.Error("wallet connect failed", zap.Error(err))
}

func (t *Tracker) disconnected() {
	t.set(State{Status: StatusDisconnected, Message: "Wallet disconnected.", Action: ActionConnect})
}

func (t *Tracker) subscribeOnce() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	if t.unsubscribe != nil {
		return
	}
	t.unsubscribe = t.provider.Subscribe(t.handle)
}

// handle reacts to a wallet notification.
func (t *Tracker) handle(ev wallet.Event) {
	log.Logger.Info("wallet event", zap.Stringer("kind", ev.Kind))
	if ev.Kind == wallet.AccountsChanged && len(ev.Accounts) == 0 {
		t.disconnected()
		return
	}
	if err := t.Resync(); err != nil {
		log.Logger.Error("wallet resync failed", zap.Error(err))
	}
}

// Resync rebuilds the state from scratch.
func (t *Tracker) Resync() error {
	ctx, cancel := context.WithTimeout(context.Background(), ResyncTimeout)
	defer cancel()
	return t.Connect(ctx)
}

// SwitchNetwork asks the wallet to switch to the required chain. A wallet that
// does not know the chain is first asked to register it, then the switch is retried.
func (t *Tracker) SwitchNetwork(ctx context.Context) error {
	err := t.provider.SwitchChain(ctx, t.required.ChainID)
	if errors.Is(err, wallet.ErrChainUnknown) {
		log.Logger.Info("chain unknown to wallet, adding it", zap.Uint64("chain_id", t.required.ChainID))
		if err := t.provider.AddChain(ctx, t.required); err != nil {
			return err
		}
		err = t.provider.SwitchChain(ctx, t.required.ChainID)
	}
	if err != nil {
		log.Logger.Error("switch network failed", zap.Error(err))
		return err
	}
	return t.Connect(ctx)
}

// Close drops the wallet subscription.
func (t *Tracker) Close() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}
