package kernel

import "sync"

// Index identifies a function registered in a Table.
type Index uint32

// Bootstrap is the signature of a function that can serve as a unit's entry
// point.
//
// It receives the capability set of the newly spawned unit and the index of
// a second registered function that parameterizes its behavior, typically a
// request handler.
type Bootstrap func(self Self, handler Index)

// Table is a process-wide registry of functions that may be named across an
// isolation boundary.
//
// A spawn call transfers only two scalar indices into this table, never a
// function value, mirroring a host whose spawn primitive accepts nothing
// richer than integers. Closures therefore never cross the boundary; any
// captured state travels separately, as a serialized message.
type Table struct {
	m   sync.RWMutex
	fns []any
}

// DefaultTable is the table used by the spawn machinery.
var DefaultTable = &Table{}

// Register adds fn to the table and returns its index.
//
// It always allocates a new index. Entries are intentionally never
// deduplicated: two function values may share a code pointer yet differ in
// meaning, so identity of an entry is the registration itself.
func (t *Table) Register(fn any) Index {
	t.m.Lock()
	defer t.m.Unlock()

	t.fns = append(t.fns, fn)

	return Index(len(t.fns) - 1)
}

// Resolve returns the function registered at index i.
func (t *Table) Resolve(i Index) (any, bool) {
	t.m.RLock()
	defer t.m.RUnlock()

	if int(i) >= len(t.fns) {
		return nil, false
	}

	return t.fns[i], true
}
