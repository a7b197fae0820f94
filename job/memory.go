package job

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local
// development. Transition holds a single lock, which mirrors the per-row
// serialization the PostgreSQL repository gets from FOR UPDATE.
type MemoryRepository struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jobs: make(map[string]Job)}
}

func (m *MemoryRepository) Create(ctx context.Context, j Job) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	m.jobs[j.ID] = j
	return j, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (m *MemoryRepository) List(ctx context.Context, f Filters) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && j.CustomerID != f.CustomerID {
			continue
		}
		if f.GigWorkerID != "" && (j.GigWorkerID == nil || *j.GigWorkerID != f.GigWorkerID) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) ListAvailable(ctx context.Context) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if j.Status == StatusOpen && j.Paid {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Amount.GreaterThan(out[b].Amount) })
	return out, nil
}

func (m *MemoryRepository) ListForActor(ctx context.Context, actor Actor) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if actor.IsCustomer(j) || actor.IsAssignedWorker(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) RatedRatings(ctx context.Context, gigWorkerID string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ratings := make([]int, 0, 8)
	for _, j := range m.jobs {
		if j.GigWorkerID != nil && *j.GigWorkerID == gigWorkerID && j.GigWorkerRating != nil {
			ratings = append(ratings, *j.GigWorkerRating)
		}
	}
	return ratings, nil
}

func (m *MemoryRepository) Transition(ctx context.Context, id string, apply func(*Job) error) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	if err := apply(&j); err != nil {
		return Job{}, err
	}
	j.UpdatedAt = time.Now().UTC()
	m.jobs[id] = j
	return j, nil
}
