// ABOUTME: Utility functions for working with dominator trees
// ABOUTME: Provides tree traversal and analysis capabilities
package graph

// DominatorPath returns the chain of dominators from a node up to the
// super-root, starting with the node itself.
func DominatorPath(idom map[ObjID]ObjID, node ObjID) []ObjID {
	var path []ObjID
	current := node
	for {
		path = append(path, current)
		dom, exists := idom[current]
		if !exists || dom == SuperRoot {
			if current != SuperRoot {
				path = append(path, SuperRoot)
			}
			break
		}
		current = dom
	}
	return path
}

// IsDominated returns true if node is dominated by dominator.
// A node dominates itself.
func IsDominated(idom map[ObjID]ObjID, node, dominator ObjID) bool {
	if node == dominator {
		return true
	}
	current := node
	for {
		dom, exists := idom[current]
		if !exists {
			return false
		}
		if dom == dominator {
			return true
		}
		if dom == SuperRoot {
			return dominator == SuperRoot
		}
		current = dom
	}
}
