// ABOUTME: Implements Lengauer-Tarjan algorithm for computing dominators in directed graphs
// ABOUTME: Provides O(E α(E,V)) time complexity for finding immediate dominators
package graph

// Dominators computes the immediate dominator for each reachable object in the graph.
// Uses the Lengauer-Tarjan algorithm with path compression. The graph is treated as
// a directed graph rooted at a synthetic super-root (ID 0) that points at every GC
// root; cycles and self-loops are handled by construction. Objects unreachable from
// the roots do not appear in the result.
// Returns a map from object ID to its immediate dominator ID. GC roots map to the
// super-root, which itself has no dominator.
func Dominators(g Graph) map[ObjID]ObjID {
	// Successor lists, dangling references dropped. Heap captures routinely
	// contain references to objects the introspection facility did not record.
	succ := make(map[ObjID][]ObjID, g.NumObjects()+1)
	g.ForEachObject(func(obj *Object) {
		refs := make([]ObjID, 0, len(obj.Refs))
		for _, ref := range obj.Refs {
			if g.GetObject(ref) != nil {
				refs = append(refs, ref)
			}
		}
		succ[obj.ID] = refs
	})
	for _, id := range g.GetRoots().IDs {
		if g.GetObject(id) != nil {
			succ[SuperRoot] = append(succ[SuperRoot], id)
		}
	}

	// Iterative DFS from the super-root. Node state is kept in slices indexed
	// by DFS number; heap graphs are deep enough that a recursive DFS would
	// overflow the goroutine stack.
	dfnum := make(map[ObjID]int, len(succ))
	vertex := []ObjID{SuperRoot} // DFS number -> vertex ID
	parent := []int{-1}          // DFS number -> DFS number of spanning-tree parent
	dfnum[SuperRoot] = 0

	type frame struct {
		v   ObjID
		idx int
	}
	stack := []frame{{v: SuperRoot}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.idx == len(succ[f.v]) {
			stack = stack[:len(stack)-1]
			continue
		}
		w := succ[f.v][f.idx]
		f.idx++
		if _, seen := dfnum[w]; seen {
			continue
		}
		dfnum[w] = len(vertex)
		parent = append(parent, dfnum[f.v])
		vertex = append(vertex, w)
		stack = append(stack, frame{v: w})
	}
	n := len(vertex)

	// Predecessor lists over reachable nodes only, in DFS numbering.
	pred := make([][]int, n)
	for vNum, v := range vertex {
		for _, w := range succ[v] {
			wNum := dfnum[w]
			pred[wNum] = append(pred[wNum], vNum)
		}
	}

	semi := make([]int, n)
	ancestor := make([]int, n)
	best := make([]int, n)
	idom := make([]int, n)
	samedom := make([]int, n)
	bucket := make([][]int, n)
	for i := 0; i < n; i++ {
		semi[i] = i
		ancestor[i] = -1
		best[i] = i
		idom[i] = -1
		samedom[i] = -1
	}

	// Link-eval with iterative path compression.
	eval := func(v int) int {
		if ancestor[v] == -1 {
			return v
		}
		// Collect the ancestor chain, then fold it back down.
		var chain []int
		for u := v; ancestor[ancestor[u]] != -1; u = ancestor[u] {
			chain = append(chain, u)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			u := chain[i]
			anc := ancestor[u]
			if semi[best[anc]] < semi[best[u]] {
				best[u] = best[anc]
			}
			ancestor[u] = ancestor[anc]
		}
		return best[v]
	}

	// Process vertices in reverse DFS order.
	for w := n - 1; w >= 1; w-- {
		p := parent[w]

		// Step 2: compute semidominator of w.
		for _, v := range pred[w] {
			var s int
			if v <= w {
				s = v
			} else {
				s = semi[eval(v)]
			}
			if s < semi[w] {
				semi[w] = s
			}
		}
		bucket[semi[w]] = append(bucket[semi[w]], w)
		ancestor[w] = p

		// Step 3: implicitly compute immediate dominators for p's bucket.
		for _, v := range bucket[p] {
			u := eval(v)
			if semi[u] == semi[v] {
				idom[v] = p
			} else {
				samedom[v] = u
			}
		}
		bucket[p] = nil
	}

	// Step 4: fill in dominators deferred to a same-semidominator vertex.
	result := make(map[ObjID]ObjID, n-1)
	for w := 1; w < n; w++ {
		if samedom[w] != -1 {
			idom[w] = idom[samedom[w]]
		}
		result[vertex[w]] = vertex[idom[w]]
	}

	return result
}

// DominatorTree builds a tree structure from immediate dominators.
// Returns a map from each node to its list of immediately dominated nodes.
// The super-root (ID 0) is the tree root; its children are the GC roots.
func DominatorTree(idom map[ObjID]ObjID) map[ObjID][]ObjID {
	tree := make(map[ObjID][]ObjID, len(idom)+1)
	tree[SuperRoot] = []ObjID{}
	for node := range idom {
		if _, ok := tree[node]; !ok {
			tree[node] = []ObjID{}
		}
	}
	for node, dom := range idom {
		tree[dom] = append(tree[dom], node)
	}
	return tree
}
