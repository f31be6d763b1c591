package dispatch

import (
	"context"
	"sync"

	"contract-admin/internal/forms"
)

// PanelStore keeps the latest result panel of every function.
type PanelStore interface {
	Put(ctx context.Context, function string, p forms.Panel) error
	All(ctx context.Context, functions []string) (map[string]forms.Panel, error)
}

// MemoryPanels is a process local PanelStore.
type MemoryPanels struct {
	mu     sync.RWMutex
	panels map[string]forms.Panel
}

func NewMemoryPanels() *MemoryPanels {
	return &MemoryPanels{panels: map[string]forms.Panel{}}
}

func (m *MemoryPanels) Put(_ context.Context, function string, p forms.Panel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels[function] = p
	return nil
}

func (m *MemoryPanels) All(_ context.Context, functions []string) (map[string]forms.Panel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]forms.Panel, len(functions))
	for _, fn := range functions {
		if p, ok := m.panels[fn]; ok {
			out[fn] = p
		}
	}
	return out, nil
}
