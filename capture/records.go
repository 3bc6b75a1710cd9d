// ABOUTME: Raw capture record types shared by all capture decoders
// ABOUTME: Validates records and assembles them into a frozen graph

package capture

import (
	"fmt"

	"github.com/prateek/heapdiff/graph"
)

// ObjectRecord is one object as recorded by the heap-introspection facility.
type ObjectRecord struct {
	ID    graph.ObjID   `json:"id" msgpack:"id"`
	Class graph.ClassID `json:"class" msgpack:"class"`
	Size  uint64        `json:"size" msgpack:"size"`
	Refs  []graph.ObjID `json:"refs,omitempty" msgpack:"refs,omitempty"`
	Token graph.Token   `json:"token,omitempty" msgpack:"token,omitempty"`
}

// ClassRecord is one class as recorded by the heap-introspection facility.
// Kind is "user" or "library"; unknown tags decode as user code.
type ClassRecord struct {
	ID   graph.ClassID `json:"id" msgpack:"id"`
	Name string        `json:"name" msgpack:"name"`
	Kind string        `json:"kind,omitempty" msgpack:"kind,omitempty"`
}

// Dump is the decoded form of a raw capture, common to every wire format.
type Dump struct {
	Objects []ObjectRecord `json:"objects" msgpack:"objects"`
	Classes []ClassRecord  `json:"classes,omitempty" msgpack:"classes,omitempty"`
	Roots   []graph.ObjID  `json:"roots,omitempty" msgpack:"roots,omitempty"`
}

// Build validates the records and assembles a frozen graph.
func (d *Dump) Build() (graph.Graph, error) {
	seen := make(map[graph.ObjID]bool, len(d.Objects))
	for i, rec := range d.Objects {
		if rec.ID == graph.SuperRoot {
			return nil, fmt.Errorf("object at index %d has reserved ID 0", i)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("duplicate object ID %d", rec.ID)
		}
		seen[rec.ID] = true
	}
	for _, id := range d.Roots {
		if !seen[id] {
			return nil, fmt.Errorf("root %d not present in capture", id)
		}
	}

	g := graph.NewMemGraph()
	for _, rec := range d.Classes {
		kind := graph.ClassUser
		if rec.Kind == "library" {
			kind = graph.ClassLibrary
		}
		g.AddClass(&graph.Class{ID: rec.ID, Name: rec.Name, Kind: kind})
	}
	for _, rec := range d.Objects {
		refs := rec.Refs
		if refs == nil {
			refs = []graph.ObjID{}
		}
		g.AddObject(&graph.Object{
			ID:    rec.ID,
			Class: rec.Class,
			Size:  rec.Size,
			Refs:  refs,
			Token: rec.Token,
		})
	}
	roots := graph.Roots{IDs: d.Roots}
	if roots.IDs == nil {
		roots.IDs = []graph.ObjID{}
	}
	g.SetRoots(roots)
	g.Freeze()
	return g, nil
}
