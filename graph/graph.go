// ABOUTME: Graph interface and in-memory implementation
// ABOUTME: Provides methods for storing and querying heap object graphs

package graph

import "sync"

// Graph represents one captured heap snapshot. A graph is mutable while it
// is being populated and becomes immutable once Freeze is called; frozen
// graphs are safe for concurrent readers without locking.
type Graph interface {
	// AddObject adds an object to the graph
	AddObject(obj *Object)

	// AddClass adds a class record to the graph
	AddClass(c *Class)

	// GetObject retrieves an object by ID
	GetObject(id ObjID) *Object

	// GetClass retrieves a class record by ID
	GetClass(id ClassID) *Class

	// NumObjects returns the total number of objects
	NumObjects() int

	// NumReachable returns the number of objects reachable from the roots.
	// Only valid after Freeze.
	NumReachable() int

	// IsReachable reports whether the object is reachable from any root.
	// Only valid after Freeze.
	IsReachable(id ObjID) bool

	// TotalShallowSize returns the sum of shallow sizes over all objects,
	// reachable or not
	TotalShallowSize() uint64

	// ForEachObject iterates over all objects
	ForEachObject(fn func(*Object))

	// ForEachClass iterates over all class records
	ForEachClass(fn func(*Class))

	// SetRoots sets the GC roots
	SetRoots(roots Roots)

	// GetRoots returns the GC roots
	GetRoots() Roots

	// Freeze seals the graph, computes reachability from the roots, and
	// makes it safe for concurrent reads. Adding to a frozen graph panics.
	Freeze()
}

// MemGraph is an in-memory implementation of Graph
type MemGraph struct {
	mu        sync.RWMutex
	objects   map[ObjID]*Object
	classes   map[ClassID]*Class
	roots     Roots
	frozen    bool
	reachable map[ObjID]bool
	shallow   uint64
}

// NewMemGraph creates a new in-memory graph
func NewMemGraph() *MemGraph {
	return &MemGraph{
		objects: make(map[ObjID]*Object),
		classes: make(map[ClassID]*Class),
	}
}

// AddObject adds an object to the graph
func (g *MemGraph) AddObject(obj *Object) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		panic("graph: AddObject on frozen graph")
	}
	g.objects[obj.ID] = obj
}

// AddClass adds a class record to the graph
func (g *MemGraph) AddClass(c *Class) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		panic("graph: AddClass on frozen graph")
	}
	g.classes[c.ID] = c
}

// GetObject retrieves an object by ID
func (g *MemGraph) GetObject(id ObjID) *Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.objects[id]
}

// GetClass retrieves a class record by ID
func (g *MemGraph) GetClass(id ClassID) *Class {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.classes[id]
}

// NumObjects returns the total number of objects
func (g *MemGraph) NumObjects() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// NumReachable returns the number of objects reachable from the roots
func (g *MemGraph) NumReachable() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.reachable)
}

// IsReachable reports whether the object is reachable from any root
func (g *MemGraph) IsReachable(id ObjID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reachable[id]
}

// TotalShallowSize returns the sum of shallow sizes over all objects
func (g *MemGraph) TotalShallowSize() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.shallow
}

// ForEachObject iterates over all objects
func (g *MemGraph) ForEachObject(fn func(*Object)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, obj := range g.objects {
		fn(obj)
	}
}

// ForEachClass iterates over all class records
func (g *MemGraph) ForEachClass(fn func(*Class)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.classes {
		fn(c)
	}
}

// SetRoots sets the GC roots
func (g *MemGraph) SetRoots(roots Roots) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		panic("graph: SetRoots on frozen graph")
	}
	g.roots = roots
}

// GetRoots returns the GC roots
func (g *MemGraph) GetRoots() Roots {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots
}

// Freeze seals the graph and computes the reachable set with an iterative
// BFS from the roots. Freezing twice is a no-op.
func (g *MemGraph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		return
	}
	g.frozen = true

	g.shallow = 0
	for _, obj := range g.objects {
		g.shallow += obj.Size
	}

	g.reachable = make(map[ObjID]bool)
	queue := make([]ObjID, 0, len(g.roots.IDs))
	for _, id := range g.roots.IDs {
		if _, ok := g.objects[id]; ok && !g.reachable[id] {
			g.reachable[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, ref := range g.objects[id].Refs {
			if _, ok := g.objects[ref]; ok && !g.reachable[ref] {
				g.reachable[ref] = true
				queue = append(queue, ref)
			}
		}
	}
}
