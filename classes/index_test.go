// ABOUTME: Tests for per-class object grouping and aggregate caching
// ABOUTME: Covers unresolved classes, empty graphs, and count round-trips

package classes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/heapdiff/graph"
)

func buildGraph(t *testing.T) graph.Graph {
	t.Helper()
	g := graph.NewMemGraph()
	g.AddClass(&graph.Class{ID: 1, Name: "app.Session", Kind: graph.ClassUser})
	g.AddClass(&graph.Class{ID: 2, Name: "core.Buffer", Kind: graph.ClassLibrary})

	// Two sessions, each exclusively retaining one buffer; a third buffer
	// shared by both sessions; one unreachable session.
	g.AddObject(&graph.Object{ID: 1, Class: 1, Size: 100, Refs: []graph.ObjID{3, 5}})
	g.AddObject(&graph.Object{ID: 2, Class: 1, Size: 100, Refs: []graph.ObjID{4, 5}})
	g.AddObject(&graph.Object{ID: 3, Class: 2, Size: 40})
	g.AddObject(&graph.Object{ID: 4, Class: 2, Size: 40})
	g.AddObject(&graph.Object{ID: 5, Class: 2, Size: 40})
	g.AddObject(&graph.Object{ID: 6, Class: 1, Size: 100}) // unreachable
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{1, 2}})
	g.Freeze()
	return g
}

func TestBuildIndex(t *testing.T) {
	g := buildGraph(t)
	idx, err := BuildIndex(g)
	require.NoError(t, err)

	require.Equal(t, 2, idx.NumClasses())

	sessions := idx.Get(1)
	require.NotNil(t, sessions)
	assert.Equal(t, 2, sessions.Count) // unreachable session excluded
	assert.Equal(t, uint64(200), sessions.ShallowBytes)
	// Each session retains itself plus its private buffer; the shared
	// buffer is dominated by the super-root.
	assert.Equal(t, uint64(280), sessions.RetainedBytes)

	buffers := idx.Get(2)
	require.NotNil(t, buffers)
	assert.Equal(t, 3, buffers.Count)
	assert.Equal(t, uint64(120), buffers.ShallowBytes)
	// Leaves retain only themselves.
	assert.Equal(t, uint64(120), buffers.RetainedBytes)

	// Member order is deterministic.
	require.Len(t, sessions.Objects, 2)
	assert.Equal(t, graph.ObjID(1), sessions.Objects[0].ID)
	assert.Equal(t, graph.ObjID(2), sessions.Objects[1].ID)
}

func TestIndexCountRoundTrip(t *testing.T) {
	g := buildGraph(t)
	idx, err := BuildIndex(g)
	require.NoError(t, err)

	total := 0
	idx.ForEach(func(set *ObjectSet) {
		total += set.Count
	})
	assert.Equal(t, g.NumReachable(), total)
}

func TestIndexByName(t *testing.T) {
	g := buildGraph(t)
	idx, err := BuildIndex(g)
	require.NoError(t, err)

	set := idx.ByName("core.Buffer")
	require.NotNil(t, set)
	assert.Equal(t, graph.ClassID(2), set.Class.ID)

	assert.Nil(t, idx.ByName("no.Such"))
}

func TestUnresolvedClass(t *testing.T) {
	g := graph.NewMemGraph()
	g.AddClass(&graph.Class{ID: 1, Name: "app.Known"})
	g.AddObject(&graph.Object{ID: 1, Class: 1, Size: 10, Refs: []graph.ObjID{2}})
	g.AddObject(&graph.Object{ID: 2, Class: 99, Size: 10}) // class 99 missing
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{1}})
	g.Freeze()

	idx, err := BuildIndex(g)
	assert.Nil(t, idx)

	var unresolved *UnresolvedClassError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, graph.ObjID(2), unresolved.Object)
	assert.Equal(t, graph.ClassID(99), unresolved.Class)
}

func TestUnresolvedClassUnreachableIgnored(t *testing.T) {
	// Unreachable objects never enter the index, so a bad class
	// reference on one is not a fault.
	g := graph.NewMemGraph()
	g.AddClass(&graph.Class{ID: 1, Name: "app.Known"})
	g.AddObject(&graph.Object{ID: 1, Class: 1, Size: 10})
	g.AddObject(&graph.Object{ID: 2, Class: 99, Size: 10}) // unreachable
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{1}})
	g.Freeze()

	idx, err := BuildIndex(g)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.NumClasses())
}

func TestEmptyGraphIndex(t *testing.T) {
	g := graph.NewMemGraph()
	g.SetRoots(graph.Roots{})
	g.Freeze()

	idx, err := BuildIndex(g)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.NumClasses())
}
