package imagestore

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Memory is a map backed Store for tests and local runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject), now: time.Now}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: cp, contentType: contentType, modTime: m.now()}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Object, 0, len(m.objects))
	for k, o := range m.objects {
		out = append(out, Object{Key: k, ModTime: o.modTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get returns a stored object.
func (m *Memory) Get(key string) (data []byte, contentType string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return o.data, o.contentType, true
}

func (m *Memory) Has(key string) bool {
	_, _, ok := m.Get(key)
	return ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Backdate shifts an object's modification time, for sweep tests.
func (m *Memory) Backdate(key string, age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.objects[key]; ok {
		o.modTime = o.modTime.Add(-age)
		m.objects[key] = o
	}
}
