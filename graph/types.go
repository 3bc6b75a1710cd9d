// ABOUTME: Core data types for the heap object graph
// ABOUTME: Defines Object, Class, ObjID, Token, and Roots structures

package graph

// ObjID is a unique identifier for a heap object within one snapshot.
// ID 0 is reserved for the synthetic super-root used by dominator analysis.
type ObjID uint64

// SuperRoot is the synthetic node that points at every GC root.
const SuperRoot ObjID = 0

// ClassID identifies a class record within one snapshot.
type ClassID uint64

// Token is a best-effort correlation token supplied by the runtime
// (an identity hash). It is not guaranteed unique and may be reused
// across garbage collections. Zero means no token was recorded.
type Token uint64

// ClassKind classifies a class as user code or runtime/library code.
type ClassKind uint8

const (
	// ClassUser marks classes from user code.
	ClassUser ClassKind = iota
	// ClassLibrary marks classes from the runtime or libraries.
	// Live evaluation against library classes is disallowed.
	ClassLibrary
)

func (k ClassKind) String() string {
	if k == ClassLibrary {
		return "library"
	}
	return "user"
}

// Object represents a single heap object
type Object struct {
	ID    ObjID   // Unique identifier within the snapshot
	Class ClassID // Owning class
	Size  uint64  // Shallow size in bytes
	Refs  []ObjID // Ordered outgoing references
	Token Token   // Correlation token, 0 if absent
}

// Class represents one class record in a snapshot.
type Class struct {
	ID   ClassID
	Name string // Fully qualified (library/package-qualified) name
	Kind ClassKind
}

// Roots represents the set of GC root objects
type Roots struct {
	IDs []ObjID // Object IDs that are roots
}
