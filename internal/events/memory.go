package events

import (
	"context"
	"sort"
	"sync"

	"contract-admin/internal/chain"

	"github.com/ethereum/go-ethereum/common"
)

type logKey struct {
	tx    common.Hash
	index uint
}

// MemoryStore keeps the newest events of a process without mysql.
type MemoryStore struct {
	mu     sync.Mutex
	keep   int
	events []chain.Event // oldest first
	seen   map[logKey]struct{}
}

// NewMemoryStore keeps at most keep events.
func NewMemoryStore(keep int) *MemoryStore {
	if keep <= 0 {
		keep = 200
	}
	return &MemoryStore{keep: keep, seen: map[logKey]struct{}{}}
}

func (s *MemoryStore) Save(_ context.Context, ev chain.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := logKey{ev.TxHash, ev.LogIndex}
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	s.events = append(s.events, ev)
	sort.SliceStable(s.events, func(i, j int) bool { return before(s.events[i], s.events[j]) })
	for len(s.events) > s.keep {
		delete(s.seen, logKey{s.events[0].TxHash, s.events[0].LogIndex})
		s.events = s.events[1:]
	}
	return true, nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]chain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := max(min(limit, len(s.events)), 0)
	out := make([]chain.Event, 0, n)
	for i := len(s.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *MemoryStore) LastBlock(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return 0, nil
	}
	return s.events[len(s.events)-1].BlockNumber, nil
}

func before(a, b chain.Event) bool {
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}
	return a.LogIndex < b.LogIndex
}
