package tasks

import (
	"context"
	"errors"
	"sync"
)

type fakeStore struct {
	mu    sync.Mutex
	tasks map[string]Task
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]Task)}
}

func (s *fakeStore) List(_ context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Task{}, false, s.err
	}
	t, ok := s.tasks[id]
	return t, ok, nil
}

func (s *fakeStore) Insert(_ context.Context, t Task) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Task{}, s.err
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *fakeStore) Update(_ context.Context, t Task) (Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Task{}, false, s.err
	}
	if _, ok := s.tasks[t.ID]; !ok {
		return Task{}, false, nil
	}
	s.tasks[t.ID] = t
	return t, true, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

var errBackend = errors.New("disk on fire")

// vanishingRepository simulates a task deleted between the handler's lookup
// and its write: the lookup succeeds, the update finds nothing.
type vanishingRepository struct {
	Repository
	updateCalls int
}

func (r *vanishingRepository) UpdateTask(ctx context.Context, t Task) (Task, bool, error) {
	r.updateCalls++
	return Task{}, false, nil
}
