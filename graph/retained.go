// ABOUTME: Calculates retained memory sizes using dominator tree analysis
// ABOUTME: Provides efficient computation of memory retained by each object
package graph

// RetainedSize computes the retained size for each reachable object in the graph.
// The retained size of an object is its own shallow size plus the shallow size of
// every object it dominates, i.e. everything that would become unreachable if the
// object were removed. Dominator subtrees are disjoint, so the retained sizes of
// the super-root's direct children sum to the total reachable shallow size.
// Returns a map from object ID to its retained size in bytes. Unreachable objects
// are absent from the result.
func RetainedSize(g Graph) map[ObjID]uint64 {
	return retainedFromTree(g, DominatorTree(Dominators(g)))
}

// RetainedFromDominators computes retained sizes from an already-computed
// immediate-dominator map, avoiding a second Lengauer-Tarjan pass when the
// caller needs both.
func RetainedFromDominators(g Graph, idom map[ObjID]ObjID) map[ObjID]uint64 {
	return retainedFromTree(g, DominatorTree(idom))
}

func retainedFromTree(g Graph, tree map[ObjID][]ObjID) map[ObjID]uint64 {
	retained := make(map[ObjID]uint64, len(tree))

	// Iterative post-order over the dominator tree: fold each subtree sum
	// into the parent as the node is popped.
	type frame struct {
		id       ObjID
		parent   ObjID
		expanded bool
	}
	stack := []frame{{id: SuperRoot, parent: SuperRoot}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if !f.expanded {
			stack[len(stack)-1].expanded = true
			if obj := g.GetObject(f.id); obj != nil {
				retained[f.id] = obj.Size
			}
			for _, child := range tree[f.id] {
				stack = append(stack, frame{id: child, parent: f.id})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		if f.id != SuperRoot {
			retained[f.parent] += retained[f.id]
		}
	}

	// The super-root has no object of its own; drop it from the result.
	delete(retained, SuperRoot)
	return retained
}
