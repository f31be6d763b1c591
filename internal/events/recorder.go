// Package events keeps the log of events emitted by the administered contract
// and serves the latest of them to the panel.
package events

import (
	"context"
	"sync"
	"time"

	"contract-admin/internal/chain"
	"contract-admin/log"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Store persists decoded events. Save reports false for an event already
// stored under the same transaction hash and log index.
type Store interface {
	Save(ctx context.Context, ev chain.Event) (bool, error)
	Recent(ctx context.Context, limit int) ([]chain.Event, error)
	LastBlock(ctx context.Context) (uint64, error)
}

// Options tell Run where to start and how often to poll nodes without
// subscriptions.
type Options struct {
	StartBlock   uint64 // used when the store is empty, 0 means Lookback blocks before the head
	Lookback     uint64
	PollInterval time.Duration
}

// Recorder decodes contract logs, stores the new ones and tells listeners.
type Recorder struct {
	abi   abi.ABI
	store Store

	mu        sync.RWMutex
	listeners []func(chain.Event)
}

func NewRecorder(a abi.ABI, store Store) *Recorder {
	return &Recorder{abi: a, store: store}
}

// OnEvent registers fn to receive every newly stored event.
func (r *Recorder) OnEvent(fn func(chain.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Recent returns the latest stored events, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]chain.Event, error) {
	return r.store.Recent(ctx, limit)
}

// Handle decodes and stores l. Logs of events missing from the ABI are
// skipped; repeated logs are stored once and announced once.
func (r *Recorder) Handle(ctx context.Context, l types.Log) {
	if l.Removed {
		return
	}
	ev, err := chain.DecodeLog(r.abi, l)
	if err != nil {
		log.Logger.Debug("skip log", zap.String("tx", l.TxHash.Hex()), zap.Uint("index", l.Index), zap.Error(err))
		return
	}
	added, err := r.store.Save(ctx, ev)
	if err != nil {
		log.Logger.Error("save event failed", zap.String("event", ev.Name), zap.String("tx", ev.TxHash.Hex()), zap.Error(err))
		return
	}
	if !added {
		return
	}
	log.Logger.Info("contract event",
		zap.String("event", ev.Name),
		zap.Uint64("block", ev.BlockNumber),
		zap.String("tx", ev.TxHash.Hex()))

	r.mu.RLock()
	listeners := append([]func(chain.Event){}, r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// From picks the first block to read: the last stored block (read again, the
// store drops repeats), else StartBlock, else Lookback blocks before head.
func (r *Recorder) From(ctx context.Context, head uint64, opts Options) (uint64, error) {
	last, err := r.store.LastBlock(ctx)
	if err != nil {
		return 0, err
	}
	switch {
	case last > 0:
		return last, nil
	case opts.StartBlock > 0:
		return opts.StartBlock, nil
	case head > opts.Lookback:
		return head - opts.Lookback, nil
	}
	return 0, nil
}

// Run records the logs of addr until ctx ends. History is scanned first,
// then new logs follow through a subscription or polling.
func (r *Recorder) Run(ctx context.Context, src chain.LogSource, addr common.Address, opts Options) error {
	head, err := src.BlockNumber(ctx)
	if err != nil {
		return err
	}
	from, err := r.From(ctx, head, opts)
	if err != nil {
		return err
	}
	log.Logger.Info("event log started", zap.String("contract", addr.Hex()), zap.Uint64("from", from), zap.Uint64("head", head))

	logs := make(chan types.Log, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for l := range logs {
			r.Handle(context.WithoutCancel(ctx), l)
		}
	}()

	err = chain.WatchLogs(ctx, src, addr, from, opts.PollInterval, logs)
	close(logs)
	<-done
	return err
}
