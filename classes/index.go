// ABOUTME: Groups a graph's reachable objects by class into ObjectSets
// ABOUTME: Computes cached instance-count, shallow, and retained aggregates

package classes

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/prateek/heapdiff/graph"
)

// UnresolvedClassError reports an object whose class reference has no class
// record in the capture. It is a data-integrity fault: aggregating past it
// would corrupt per-class totals, so index construction aborts.
type UnresolvedClassError struct {
	Object graph.ObjID
	Class  graph.ClassID
}

func (e *UnresolvedClassError) Error() string {
	return fmt.Sprintf("object %d references unresolved class %d", e.Object, e.Class)
}

// ObjectSet is the subset of one graph's reachable objects belonging to one
// class, plus cached aggregates. Built once per (snapshot, class) pair and
// never mutated after.
type ObjectSet struct {
	Class         *graph.Class
	Objects       []*graph.Object
	Count         int
	ShallowBytes  uint64
	RetainedBytes uint64
}

// Index partitions a frozen graph's reachable objects by class identity.
type Index struct {
	graph    graph.Graph
	byClass  map[graph.ClassID]*ObjectSet
	retained map[graph.ObjID]uint64
}

// BuildIndex groups the graph's reachable objects into per-class ObjectSets.
// Retained sizes are computed concurrently with the grouping pass. Fails with
// *UnresolvedClassError if any reachable object's class cannot be resolved.
func BuildIndex(g graph.Graph) (*Index, error) {
	var retained map[graph.ObjID]uint64
	var eg errgroup.Group
	eg.Go(func() error {
		retained = graph.RetainedSize(g)
		return nil
	})

	byClass := make(map[graph.ClassID]*ObjectSet)
	var unresolved *UnresolvedClassError
	g.ForEachObject(func(obj *graph.Object) {
		if unresolved != nil || !g.IsReachable(obj.ID) {
			return
		}
		set, ok := byClass[obj.Class]
		if !ok {
			c := g.GetClass(obj.Class)
			if c == nil {
				unresolved = &UnresolvedClassError{Object: obj.ID, Class: obj.Class}
				return
			}
			set = &ObjectSet{Class: c}
			byClass[obj.Class] = set
		}
		set.Objects = append(set.Objects, obj)
		set.Count++
		set.ShallowBytes += obj.Size
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if unresolved != nil {
		return nil, unresolved
	}

	for _, set := range byClass {
		// Deterministic member order regardless of map iteration.
		sort.Slice(set.Objects, func(i, j int) bool {
			return set.Objects[i].ID < set.Objects[j].ID
		})
		for _, obj := range set.Objects {
			set.RetainedBytes += retained[obj.ID]
		}
	}

	return &Index{graph: g, byClass: byClass, retained: retained}, nil
}

// Graph returns the frozen graph this index was built from.
func (idx *Index) Graph() graph.Graph {
	return idx.graph
}

// Retained returns the retained size of one object, 0 for unreachable or
// unknown objects.
func (idx *Index) Retained(id graph.ObjID) uint64 {
	return idx.retained[id]
}

// Get returns the ObjectSet for a class, or nil if the class has no
// reachable instances.
func (idx *Index) Get(id graph.ClassID) *ObjectSet {
	return idx.byClass[id]
}

// NumClasses returns the number of classes with at least one reachable
// instance.
func (idx *Index) NumClasses() int {
	return len(idx.byClass)
}

// ForEach iterates over all ObjectSets.
func (idx *Index) ForEach(fn func(*ObjectSet)) {
	for _, set := range idx.byClass {
		fn(set)
	}
}

// ByName returns the ObjectSet for a fully qualified class name, or nil.
func (idx *Index) ByName(name string) *ObjectSet {
	for _, set := range idx.byClass {
		if set.Class.Name == name {
			return set
		}
	}
	return nil
}
