package db

import (
	"context"
	"encoding/json"

	"contract-admin/internal/forms"
	"contract-admin/log"

	"go.uber.org/zap"
)

const panelKeyPrefix = "panel:"

// PanelKey is the redis key of a function's result panel.
func PanelKey(function string) string {
	return panelKeyPrefix + function
}

// RedisPanels keeps result panels in redis so they survive restarts and are
// shared between panel instances.
type RedisPanels struct {
	pool Pool
	ttl  int
}

func NewRedisPanels(pool Pool, ttlSeconds int) *RedisPanels {
	return &RedisPanels{pool: pool, ttl: ttlSeconds}
}

func (r *RedisPanels) Put(_ context.Context, function string, p forms.Panel) error {
	return RedisSet(r.pool, PanelKey(function), p, r.ttl)
}

func (r *RedisPanels) All(_ context.Context, functions []string) (map[string]forms.Panel, error) {
	keys := make([]string, len(functions))
	for i, fn := range functions {
		keys[i] = PanelKey(fn)
	}
	values, err := RedisMGet(r.pool, keys...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]forms.Panel, len(functions))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		var p forms.Panel
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Logger.Warn("drop unreadable panel", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out[functions[i]] = p
	}
	return out, nil
}
