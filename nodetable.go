package anchorage

import (
	"sync"

	"github.com/Deivu/Anchorage/node"
)

// nodeTable is the fleet's concurrent map of node name to handle. It uses
// the same RWMutex-guarded-map shape as the rest of this module's shared
// maps (model.SubscriptionMap): writes are rare (start/teardown), reads
// (lookups, ideal-node scans) are frequent and concurrent.
type nodeTable struct {
	mu sync.RWMutex
	m  map[string]node.Handle
}

func newNodeTable() *nodeTable {
	return &nodeTable{m: make(map[string]node.Handle)}
}

func (t *nodeTable) Store(name string, handle node.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[name] = handle
}

func (t *nodeTable) Load(name string) (node.Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.m[name]
	return h, ok
}

func (t *nodeTable) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, name)
}

// Snapshot returns a point-in-time copy of the handles currently in the
// table, safe to range over without holding the lock.
func (t *nodeTable) Snapshot() []node.Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	handles := make([]node.Handle, 0, len(t.m))
	for _, h := range t.m {
		handles = append(handles, h)
	}
	return handles
}

// Range calls fn for each (name, handle) pair until fn returns false or
// every entry has been visited.
func (t *nodeTable) Range(fn func(name string, handle node.Handle) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for name, h := range t.m {
		if !fn(name, h) {
			return
		}
	}
}
