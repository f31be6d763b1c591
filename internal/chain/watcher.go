package chain

import (
	"sync"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// watcher remembers the last observed accounts and chain and fans change
// events out to subscribers.
type watcher struct {
	mu       sync.Mutex
	subs     map[int]func(wallet.Event)
	next     int
	seen     bool
	accounts []common.Address
	chainID  uint64
}

func (w *watcher) Subscribe(fn func(wallet.Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.subs == nil {
		w.subs = map[int]func(wallet.Event){}
	}
	id := w.next
	w.next++
	w.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs, id)
		})
	}
}

// observe records a new observation and returns the events it implies. The
// first observation only sets the baseline.
func (w *watcher) observe(accounts []common.Address, chainID uint64) []wallet.Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []wallet.Event
	if w.seen {
		if !sameAccounts(w.accounts, accounts) {
			events = append(events, wallet.Event{Kind: wallet.AccountsChanged, Accounts: accounts})
		}
		if w.chainID != chainID {
			events = append(events, wallet.Event{Kind: wallet.ChainChanged, ChainID: chainID})
		}
	}
	w.seen = true
	w.accounts = accounts
	w.chainID = chainID
	return events
}

// emit delivers events without holding the lock, so subscribers may call back
// into the wallet.
func (w *watcher) emit(events []wallet.Event) {
	if len(events) == 0 {
		return
	}
	w.mu.Lock()
	fns := make([]func(wallet.Event), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
