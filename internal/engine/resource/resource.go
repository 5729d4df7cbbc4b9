// Package resource retrieves raw asset bytes by name.
package resource

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/Faultbox/iris/internal/engine/fault"
)

// Loader returns the bytes of a named resource.
type Loader interface {
	Load(name string) ([]byte, error)
}

// Memory is a Loader backed by a map, for embedded assets and tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	loads map[string]int
}

// NewMemory creates an empty in-memory loader.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
		loads: make(map[string]int),
	}
}

// Set stores data under name, replacing any previous value.
func (m *Memory) Set(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
}

// Load returns the data stored under name.
func (m *Memory) Load(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads[name]++
	data, ok := m.files[name]
	if !ok {
		return nil, &fault.ResourceError{Op: "load", Resource: name, Err: fs.ErrNotExist}
	}
	return data, nil
}

// Loads returns how many times name has been requested.
func (m *Memory) Loads(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads[name]
}

func (m *Memory) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("memory(%d files)", len(m.files))
}
