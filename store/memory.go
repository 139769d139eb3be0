// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	items  map[string]string
	failMu    sync.Mutex
	fail      map[string]error
	failReads map[string]error
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := m.failure(key); err != nil {
		return "", false, err
	}
	if err := m.readFailure(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	if err := m.failure(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	if err := m.failure(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FailKey makes every operation on key return err until cleared with a nil
// err. Tests use it to exercise the ledger's swallow-and-log paths.
func (m *Memory) FailKey(key string, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.fail == nil {
		m.fail = make(map[string]error)
	}
	if err == nil {
		delete(m.fail, key)
		return
	}
	m.fail[key] = err
}

// FailReads makes only GetItem on key return err until cleared with a nil
// err; writes keep succeeding. Exercises the read-refusal path in append.
func (m *Memory) FailReads(key string, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	if m.failReads == nil {
		m.failReads = make(map[string]error)
	}
	if err == nil {
		delete(m.failReads, key)
		return
	}
	m.failReads[key] = err
}

func (m *Memory) failure(key string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.fail[key]
}

func (m *Memory) readFailure(key string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.failReads[key]
}
