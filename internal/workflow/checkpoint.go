package workflow

import (
	"context"
	"fmt"
	"sort"
	"sync"

	workflowerrors "go-leaveflow/internal/workflow/errors"
)

// CheckpointStore persists the latest State per thread with optimistic
// versioning. Save with expectedVersion 0 creates the checkpoint; any other
// value must equal the stored version or ErrVersionConflict is returned.
type CheckpointStore interface {
	Load(ctx context.Context, threadID string) (*State, int64, error)
	Save(ctx context.Context, s *State, expectedVersion int64) (int64, error)
	// List returns the employee's runs, newest first. openOnly keeps runs
	// suspended at a decision point.
	List(ctx context.Context, companyID, employeeID string, openOnly bool) ([]*State, error)
}

type memoryEntry struct {
	state   *State
	version int64
}

// MemoryCheckpointStore keeps checkpoints in process. States are copied on
// the way in and out so callers never share memory with the store.
type MemoryCheckpointStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCheckpointStore) Load(ctx context.Context, threadID string) (*State, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[threadID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: thread %s", workflowerrors.ErrWorkflowNotFound, threadID)
	}
	return e.state.Clone(), e.version, nil
}

func (m *MemoryCheckpointStore) Save(ctx context.Context, s *State, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.entries[s.ThreadID]
	switch {
	case expectedVersion == 0 && exists:
		return 0, fmt.Errorf("%w: thread %s already exists", workflowerrors.ErrVersionConflict, s.ThreadID)
	case expectedVersion != 0 && !exists:
		return 0, fmt.Errorf("%w: thread %s", workflowerrors.ErrWorkflowNotFound, s.ThreadID)
	case exists && current.version != expectedVersion:
		return 0, fmt.Errorf("%w: thread %s at version %d, expected %d",
			workflowerrors.ErrVersionConflict, s.ThreadID, current.version, expectedVersion)
	}

	next := expectedVersion + 1
	m.entries[s.ThreadID] = memoryEntry{state: s.Clone(), version: next}
	return next, nil
}

func (m *MemoryCheckpointStore) List(ctx context.Context, companyID, employeeID string, openOnly bool) ([]*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*State, 0)
	for _, e := range m.entries {
		s := e.state
		if s.CompanyID != companyID || s.EmployeeID != employeeID {
			continue
		}
		if openOnly && !s.Node.IsSuspended() {
			continue
		}
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CheckpointSnapshot is an opaque copy of a MemoryCheckpointStore.
type CheckpointSnapshot struct {
	entries map[string]memoryEntry
}

// Snapshot and Restore copy the whole store so a caller can roll back a
// failed unit of work.
func (m *MemoryCheckpointStore) Snapshot() CheckpointSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]memoryEntry, len(m.entries))
	for k, v := range m.entries {
		out[k] = memoryEntry{state: v.state.Clone(), version: v.version}
	}
	return CheckpointSnapshot{entries: out}
}

func (m *MemoryCheckpointStore) Restore(snapshot CheckpointSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = snapshot.entries
	if m.entries == nil {
		m.entries = make(map[string]memoryEntry)
	}
}
