package store

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/s1natex/task-manager-api/internal/tasks"
)

const defaultShards = 32

type shard struct {
	mu    sync.RWMutex
	tasks map[string]tasks.Task
}

// Memory is an in-process tasks.Store. Records are spread over shards by a
// hash of their id; every operation takes exactly one shard lock, so
// operations on the same id are linearizable and ids in different shards
// never contend.
type Memory struct {
	shards []*shard
}

var _ tasks.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return NewMemoryWithShards(defaultShards)
}

// NewMemoryWithShards is NewMemory with an explicit shard count; n < 1 is
// treated as 1.
func NewMemoryWithShards(n int) *Memory {
	if n < 1 {
		n = 1
	}
	m := &Memory{shards: make([]*shard, n)}
	for i := range m.shards {
		m.shards[i] = &shard{tasks: make(map[string]tasks.Task)}
	}
	return m
}

func (m *Memory) shardFor(id string) *shard {
	return m.shards[xxhash.Sum64String(id)%uint64(len(m.shards))]
}

// List copies shard by shard. Each record is read whole, but the snapshot is
// not a single point in time across shards.
func (m *Memory) List(_ context.Context) ([]tasks.Task, error) {
	out := make([]tasks.Task, 0, m.Len())
	for _, s := range m.shards {
		s.mu.RLock()
		for _, t := range s.tasks {
			out = append(out, t)
		}
		s.mu.RUnlock()
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (tasks.Task, bool, error) {
	s := m.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	return t, ok, nil
}

func (m *Memory) Insert(_ context.Context, t tasks.Task) (tasks.Task, error) {
	s := m.shardFor(t.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[t.ID] = t
	return t, nil
}

func (m *Memory) Update(_ context.Context, t tasks.Task) (tasks.Task, bool, error) {
	s := m.shardFor(t.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		return tasks.Task{}, false, nil
	}
	s.tasks[t.ID] = t
	return t, true, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	s := m.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// Len returns the number of stored tasks.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.tasks)
		s.mu.RUnlock()
	}
	return n
}
