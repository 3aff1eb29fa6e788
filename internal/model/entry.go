package model

// PathEntry is the memoized continuation from a node to the end of the run
// that first discovered it.
//
// Invariants: Length == len(Continuation) and Continuation[0] is the node the
// entry is stored under. Entries are never overwritten once stored.
type PathEntry struct {
	Outcome      Outcome `json:"outcome"`
	Length       int     `json:"length"`
	Continuation []Node  `json:"continuation"`
}

// NewPathEntry builds the entry for position i of a finished path.
// The continuation is copied so later changes to path do not leak in.
func NewPathEntry(outcome Outcome, path []Node, i int) PathEntry {
	continuation := make([]Node, len(path)-i)
	copy(continuation, path[i:])
	return PathEntry{
		Outcome:      outcome,
		Length:       len(continuation),
		Continuation: continuation,
	}
}

// Clone returns a deep copy of the entry.
func (e PathEntry) Clone() PathEntry {
	e.Continuation = cloneNodes(e.Continuation)
	return e
}

// WorkflowEntry is the terminal outcome of one counted run, keyed by its seed.
type WorkflowEntry struct {
	Outcome Outcome `json:"outcome"`
	Length  int     `json:"length"`
	Path    []Node  `json:"path"`
}

// NewWorkflowEntry builds the workflow entry of a finished path.
func NewWorkflowEntry(outcome Outcome, path []Node) WorkflowEntry {
	return WorkflowEntry{
		Outcome: outcome,
		Length:  len(path),
		Path:    cloneNodes(path),
	}
}

// Clone returns a deep copy of the entry.
func (e WorkflowEntry) Clone() WorkflowEntry {
	e.Path = cloneNodes(e.Path)
	return e
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
