package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"contract-admin/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// ScanBatch is how many blocks one FilterLogs request covers.
var ScanBatch uint64 = 2000

var (
	ErrUnknownEvent       = errors.New("chain: log matches no ABI event")
	ErrSubscriptionClosed = errors.New("chain: log subscription closed")
)

// LogSource is the part of a node client the event log reads from.
// *ethclient.Client implements it.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Event is a decoded contract log. Args hold display values: numbers as
// decimal strings, addresses, hashes and bytes as hex.
type Event struct {
	Name        string         `json:"name"`
	Args        map[string]any `json:"args"`
	Address     common.Address `json:"address"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
	BlockNumber uint64         `json:"blockNumber"`
}

// DecodeLog matches l to an event of a by its first topic and unpacks both
// the indexed and the data arguments.
func DecodeLog(a abi.ABI, l types.Log) (Event, error) {
	if len(l.Topics) == 0 {
		return Event{}, ErrUnknownEvent
	}
	ev, err := a.EventByID(l.Topics[0])
	if err != nil {
		return Event{}, fmt.Errorf("%w: topic %s", ErrUnknownEvent, l.Topics[0].Hex())
	}

	args := map[string]any{}
	if err := ev.Inputs.UnpackIntoMap(args, l.Data); err != nil {
		return Event{}, fmt.Errorf("decode %s data: %w", ev.Name, err)
	}
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
		return Event{}, fmt.Errorf("decode %s topics: %w", ev.Name, err)
	}
	for k, v := range args {
		args[k] = displayValue(v)
	}

	return Event{
		Name:        ev.Name,
		Args:        args,
		Address:     l.Address,
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
		BlockNumber: l.BlockNumber,
	}, nil
}

func displayValue(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case [32]byte:
		return hexutil.Encode(x[:])
	case []common.Address:
		out := make([]string, len(x))
		for i, a := range x {
			out[i] = a.Hex()
		}
		return out
	case []*big.Int:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = n.String()
		}
		return out
	}
	return v
}

func logFilter(addr common.Address, from, to *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{FromBlock: from, ToBlock: to, Addresses: []common.Address{addr}}
}

// ScanHistory sends the logs of addr in [from, to] to out, ScanBatch blocks
// per request.
func ScanHistory(ctx context.Context, src LogSource, addr common.Address, from, to uint64, out chan<- types.Log) error {
	for start := from; start <= to; start += ScanBatch {
		end := min(start+ScanBatch-1, to)
		logs, err := src.FilterLogs(ctx, logFilter(addr, new(big.Int).SetUint64(start), new(big.Int).SetUint64(end)))
		if err != nil {
			return fmt.Errorf("filter logs %d-%d: %w", start, end, err)
		}
		for _, l := range logs {
			if !deliver(ctx, out, l) {
				return ctx.Err()
			}
		}
		if end == to {
			break
		}
	}
	return nil
}

// WatchLogs sends the logs of addr from block from onward to out until ctx
// ends. It subscribes when the node supports it and polls every interval
// otherwise. A dropped subscription is renewed and the blocks it may have
// missed are scanned again, so out can see a log twice.
func WatchLogs(ctx context.Context, src LogSource, addr common.Address, from uint64, interval time.Duration, out chan<- types.Log) error {
	next := from
	for {
		var err error
		next, err = watchOnce(ctx, src, addr, next, out)
		if errors.Is(err, rpc.ErrNotificationsUnsupported) {
			log.Logger.Info("node has no log subscriptions, polling", zap.Duration("interval", interval))
			return PollLogs(ctx, src, addr, next, interval, out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Logger.Warn("log subscription retry", zap.Uint64("next_block", next), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}

// watchOnce runs one subscription and returns the first block that may not
// have been delivered completely.
func watchOnce(ctx context.Context, src LogSource, addr common.Address, next uint64, out chan<- types.Log) (uint64, error) {
	ch := make(chan types.Log, 128)
	sub, err := src.SubscribeFilterLogs(ctx, logFilter(addr, nil, nil), ch)
	if err != nil {
		return next, err
	}
	defer sub.Unsubscribe()

	head, err := src.BlockNumber(ctx)
	if err != nil {
		return next, err
	}
	if head >= next {
		if err := ScanHistory(ctx, src, addr, next, head, out); err != nil {
			return next, err
		}
		next = head + 1
	}

	for {
		select {
		case <-ctx.Done():
			return next, ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				err = ErrSubscriptionClosed
			}
			return next, err
		case l := <-ch:
			if l.Removed {
				continue
			}
			if !deliver(ctx, out, l) {
				return next, ctx.Err()
			}
			if l.BlockNumber > next {
				next = l.BlockNumber
			}
		}
	}
}

// PollLogs scans the new blocks every interval until ctx ends.
func PollLogs(ctx context.Context, src LogSource, addr common.Address, from uint64, interval time.Duration, out chan<- types.Log) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := from
	for {
		head, err := src.BlockNumber(ctx)
		if err == nil && head >= next {
			err = ScanHistory(ctx, src, addr, next, head, out)
			if err == nil {
				next = head + 1
			}
		}
		if err != nil && ctx.Err() == nil {
			log.Logger.Warn("poll logs", zap.Uint64("next_block", next), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func deliver(ctx context.Context, out chan<- types.Log, l types.Log) bool {
	select {
	case out <- l:
		return true
	case <-ctx.Done():
		return false
	}
}
