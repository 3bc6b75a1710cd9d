// ABOUTME: BFS algorithm for finding reference paths from objects to GC roots
// ABOUTME: Used for "who retains this object" diagnostics

package graph

// Path represents a reference path from an object to a root
type Path struct {
	IDs []ObjID // Sequence of object IDs from target to root
}

// PathsToRoots finds up to maxPaths reference paths from an object back to
// the GC roots using BFS over reverse edges. Cycles are broken per-path.
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}

	reverse := BuildReverseEdges(g)

	rootSet := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs {
		rootSet[id] = true
	}

	if rootSet[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	type searchNode struct {
		id   ObjID
		path []ObjID
	}

	var result []Path
	queue := []searchNode{{id: from, path: []ObjID{from}}}

	for len(queue) > 0 && len(result) < maxPaths {
		node := queue[0]
		queue = queue[1:]

		for _, referrerID := range reverse[node.id] {
			// Skip referrers already on this path to avoid cycling.
			inPath := false
			for _, id := range node.path {
				if id == referrerID {
					inPath = true
					break
				}
			}
			if inPath {
				continue
			}

			newPath := make([]ObjID, len(node.path)+1)
			copy(newPath, node.path)
			newPath[len(node.path)] = referrerID

			if rootSet[referrerID] {
				result = append(result, Path{IDs: newPath})
				if len(result) >= maxPaths {
					break
				}
			} else {
				queue = append(queue, searchNode{id: referrerID, path: newPath})
			}
		}
	}

	return result
}
