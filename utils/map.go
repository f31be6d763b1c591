package utils

import "sync"

// Map is a mutex guarded map, lazily allocated on first write.
type Map[K comparable, V any] struct {
	sync.RWMutex
	m map[K]V
}

func (m *Map[K, V]) init() {
	if m.m == nil {
		m.m = make(map[K]V)
	}
}

func (m *Map[K, V]) UnsafeGet(key K) (V, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.RLock()
	defer m.RUnlock()
	return m.UnsafeGet(key)
}

func (m *Map[K, V]) UnsafeSet(key K, value V) {
	m.init()
	m.m[key] = value
}

func (m *Map[K, V]) Set(key K, value V) {
	m.Lock()
	defer m.Unlock()
	m.UnsafeSet(key, value)
}

// TestAndSet stores value when key is absent and reports true. When key is
// present the stored value is returned with false and nothing changes.
func (m *Map[K, V]) TestAndSet(key K, value V) (V, bool) {
	m.Lock()
	defer m.Unlock()

	m.init()
	if v, ok := m.m[key]; ok {
		return v, false
	}
	m.m[key] = value
	return value, true
}

func (m *Map[K, V]) Del(key K) {
	m.Lock()
	defer m.Unlock()
	delete(m.m, key)
}

// DelIf removes key only while it still holds value.
func DelIf[K, V comparable](m *Map[K, V], key K, value V) bool {
	m.Lock()
	defer m.Unlock()
	if v, ok := m.m[key]; ok && v == value {
		delete(m.m, key)
		return true
	}
	return false
}

func (m *Map[K, V]) Len() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.m)
}

// RLockRange iterates under the read lock.
func (m *Map[K, V]) RLockRange(f func(K, V)) {
	m.RLock()
	defer m.RUnlock()
	for k, v := range m.m {
		f(k, v)
	}
}
