package memory

import (
	"errors"
	"sync"

	"github.com/nao1215/philowalk/internal/model"
)

// ErrEmptyPath is returned when a run with no nodes is recorded.
var ErrEmptyPath = errors.New("memory: empty path")

// PathMemory maps a node to the continuation of the first run that visited it.
// It is not safe for concurrent use on its own; Memory guards it.
type PathMemory struct {
	entries map[model.Node]model.PathEntry
}

// NewPathMemory creates an empty Path Memory.
func NewPathMemory() *PathMemory {
	return &PathMemory{entries: make(map[model.Node]model.PathEntry)}
}

// Insert stores entry under node unless node is already present.
// It reports whether the entry was stored.
func (m *PathMemory) Insert(node model.Node, entry model.PathEntry) bool {
	if _, ok := m.entries[node]; ok {
		return false
	}
	m.entries[node] = entry.Clone()
	return true
}

// Lookup returns a copy of the entry stored under node.
func (m *PathMemory) Lookup(node model.Node) (model.PathEntry, bool) {
	entry, ok := m.entries[node]
	if !ok {
		return model.PathEntry{}, false
	}
	return entry.Clone(), true
}

// Len returns the number of stored nodes.
func (m *PathMemory) Len() int {
	return len(m.entries)
}

// WorkflowMemory maps a seed to the terminal outcome of its counted run.
// It is not safe for concurrent use on its own; Memory guards it.
type WorkflowMemory struct {
	entries map[model.Node]model.WorkflowEntry
}

// NewWorkflowMemory creates an empty Workflow Memory.
func NewWorkflowMemory() *WorkflowMemory {
	return &WorkflowMemory{entries: make(map[model.Node]model.WorkflowEntry)}
}

// Insert stores entry under seed unless seed is already present.
// It reports whether the entry was stored.
func (m *WorkflowMemory) Insert(seed model.Node, entry model.WorkflowEntry) bool {
	if _, ok := m.entries[seed]; ok {
		return false
	}
	m.entries[seed] = entry.Clone()
	return true
}

// Lookup returns a copy of the entry stored under seed.
func (m *WorkflowMemory) Lookup(seed model.Node) (model.WorkflowEntry, bool) {
	entry, ok := m.entries[seed]
	if !ok {
		return model.WorkflowEntry{}, false
	}
	return entry.Clone(), true
}

// Len returns the number of recorded seeds.
func (m *WorkflowMemory) Len() int {
	return len(m.entries)
}

// Entries returns a copy of every recorded entry keyed by seed.
func (m *WorkflowMemory) Entries() map[model.Node]model.WorkflowEntry {
	out := make(map[model.Node]model.WorkflowEntry, len(m.entries))
	for seed, entry := range m.entries {
		out[seed] = entry.Clone()
	}
	return out
}

// Memory bundles Path Memory and Workflow Memory behind one lock.
//
// Design decision: One RWMutex covers both maps rather than one per map
// because a run must be folded into both atomically. A reader must never
// see a workflow entry whose path entries are still missing.
type Memory struct {
	mu       sync.RWMutex
	paths    *PathMemory
	workflow *WorkflowMemory
}

// New creates an empty Memory.
func New() *Memory {
	return &Memory{
		paths:    NewPathMemory(),
		workflow: NewWorkflowMemory(),
	}
}

// Path returns a copy of the Path Memory entry for node.
func (m *Memory) Path(node model.Node) (model.PathEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths.Lookup(node)
}

// Workflow returns a copy of the Workflow Memory entry for seed.
func (m *Memory) Workflow(seed model.Node) (model.WorkflowEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workflow.Lookup(seed)
}

// HasSeed reports whether seed already has a counted run.
func (m *Memory) HasSeed(seed model.Node) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.workflow.entries[seed]
	return ok
}

// Record folds a finished run into both maps.
//
// The workflow entry for path[0] is inserted first. If the seed is already
// present, Record returns false and leaves both maps untouched. Otherwise
// every position i of path gets a Path Memory entry with length len(path)-i,
// unless its node is already stored.
func (m *Memory) Record(outcome model.Outcome, path []model.Node) (bool, error) {
	if len(path) == 0 {
		return false, ErrEmptyPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.workflow.Insert(path[0], model.NewWorkflowEntry(outcome, path)) {
		return false, nil
	}
	for i, node := range path {
		if _, ok := m.paths.entries[node]; ok {
			continue
		}
		m.paths.entries[node] = model.NewPathEntry(outcome, path, i)
	}
	return true, nil
}

// WorkflowEntries returns a snapshot of Workflow Memory.
func (m *Memory) WorkflowEntries() map[model.Node]model.WorkflowEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workflow.Entries()
}

// Sizes returns the number of entries in Path Memory and Workflow Memory.
func (m *Memory) Sizes() (paths, seeds int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths.Len(), m.workflow.Len()
}

// Reset empties both maps.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = NewPathMemory()
	m.workflow = NewWorkflowMemory()
}
