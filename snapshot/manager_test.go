// ABOUTME: Tests for the snapshot list manager
// ABOUTME: Covers single-flight capture, lifecycle, rename/delete/select, and diffs

package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/heapdiff/graph"
)

// fakeSource produces a tiny fixed graph; Capture blocks until release is
// closed when set.
type fakeSource struct {
	release chan struct{}
	fail    error
	badData bool
}

func (s *fakeSource) Capture(ctx context.Context) (graph.Graph, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail != nil {
		return nil, s.fail
	}
	g := graph.NewMemGraph()
	g.AddClass(&graph.Class{ID: 1, Name: "app.Foo", Kind: graph.ClassUser})
	obj := &graph.Object{ID: 1, Class: 1, Size: 16, Token: 1}
	if s.badData {
		obj.Class = 99 // no class record
	}
	g.AddObject(obj)
	g.SetRoots(graph.Roots{IDs: []graph.ObjID{1}})
	g.Freeze()
	return g, nil
}

func waitDone(t *testing.T, it *Item) {
	t.Helper()
	select {
	case <-it.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not finish")
	}
}

func TestPlaceholderSeed(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, KindPlaceholder, items[0].Kind)
	assert.Equal(t, StateReady, items[0].State())
	assert.Same(t, items[0], m.Selected())
}

func TestTakeSnapshotLifecycle(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	m := NewManager(src, nil)

	item, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)

	// Appears immediately, processing, selected, placeholder gone.
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, KindSnapshot, item.Kind)
	assert.Equal(t, StateProcessing, item.State())
	assert.Equal(t, "Snapshot 1", item.Name())
	assert.Nil(t, item.Graph())
	assert.True(t, m.Capturing())

	close(src.release)
	waitDone(t, item)

	assert.Equal(t, StateReady, item.State())
	require.NotNil(t, item.Index())
	assert.Equal(t, 1, item.Graph().NumObjects())
	assert.False(t, m.Capturing())
	assert.NoError(t, item.Err())
}

func TestSingleFlightCapture(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	m := NewManager(src, nil)

	first, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)

	_, err = m.TakeSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrCaptureInFlight)

	close(src.release)
	waitDone(t, first)

	// Once the first finishes a new capture is accepted.
	second, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, second)
	assert.Equal(t, "Snapshot 2", second.Name())
}

func TestCaptureFailureRemovesItem(t *testing.T) {
	src := &fakeSource{fail: errors.New("process went away")}
	m := NewManager(src, nil)

	item, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, item)

	var failure *CaptureFailure
	require.ErrorAs(t, item.Err(), &failure)

	// The failed item is gone and the placeholder is back.
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, KindPlaceholder, items[0].Kind)
	assert.False(t, m.Capturing())
}

func TestIndexFaultRemovesItem(t *testing.T) {
	src := &fakeSource{badData: true}
	m := NewManager(src, nil)

	item, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, item)

	var failure *CaptureFailure
	require.ErrorAs(t, item.Err(), &failure)
	assert.Equal(t, "class index", failure.Detail)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, KindPlaceholder, items[0].Kind)
}

func TestCancelledCaptureIsDiscarded(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	m := NewManager(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	item, err := m.TakeSnapshot(ctx)
	require.NoError(t, err)

	cancel()
	waitDone(t, item)

	require.Len(t, m.Items(), 1)
	assert.Equal(t, KindPlaceholder, m.Items()[0].Kind)
	assert.False(t, m.Capturing())
}

func TestRename(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)

	item, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, item)

	require.NoError(t, m.Rename(item.ID, "before gc"))
	assert.Equal(t, "before gc", item.Name())

	placeholder := NewManager(&fakeSource{}, nil).Items()[0]
	assert.ErrorIs(t, m.Rename(placeholder.ID, "x"), ErrUnknownItem)
}

func TestRenamePlaceholderRejected(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)
	ph := m.Items()[0]
	assert.ErrorIs(t, m.Rename(ph.ID, "x"), ErrNotSnapshot)
}

func TestDeleteAndSelection(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)

	var items []*Item
	for i := 0; i < 3; i++ {
		it, err := m.TakeSnapshot(context.Background())
		require.NoError(t, err)
		waitDone(t, it)
		items = append(items, it)
	}
	require.Len(t, m.Items(), 3)
	assert.Same(t, items[2], m.Selected())

	// Deleting the selected item moves selection to the previous one.
	require.NoError(t, m.Delete(items[2].ID))
	assert.Same(t, items[1], m.Selected())

	assert.ErrorIs(t, m.Delete(items[2].ID), ErrUnknownItem)

	require.NoError(t, m.Delete(items[0].ID))
	require.NoError(t, m.Delete(items[1].ID))

	// Placeholder is reinstated when the list empties.
	final := m.Items()
	require.Len(t, final, 1)
	assert.Equal(t, KindPlaceholder, final[0].Kind)
	assert.Same(t, final[0], m.Selected())
}

func TestDeleteWhileProcessingDiscardsResult(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	m := NewManager(src, nil)

	item, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Delete(item.ID))
	close(src.release)
	waitDone(t, item)

	// The completed capture was not resurrected into the list.
	require.Len(t, m.Items(), 1)
	assert.Equal(t, KindPlaceholder, m.Items()[0].Kind)
	assert.False(t, m.Capturing())
}

func TestSelect(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)

	first, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, first)
	second, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, second)

	require.NoError(t, m.Select(0))
	assert.Same(t, first, m.Selected())

	assert.ErrorIs(t, m.Select(5), ErrUnknownItem)
	assert.ErrorIs(t, m.Select(-1), ErrUnknownItem)
}

func TestManagerDiff(t *testing.T) {
	m := NewManager(&fakeSource{}, nil)

	before, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, before)
	after, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	waitDone(t, after)

	stats, err := m.Diff(before.ID, after.ID, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	// Identical fixture graphs diff to zero churn.
	assert.Equal(t, "app.Foo", stats[0].ClassName)
	assert.Equal(t, 0, stats[0].Created.Count)
	assert.Equal(t, 0, stats[0].Deleted.Count)
	assert.Equal(t, 1, stats[0].Persisted)

	// Deleting a snapshot invalidates diffs referencing it.
	require.NoError(t, m.Delete(after.ID))
	_, err = m.Diff(before.ID, after.ID, nil)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestDiffProcessingRejected(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	m := NewManager(src, nil)

	done, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)
	close(src.release)
	waitDone(t, done)

	src.release = make(chan struct{})
	pending, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)

	_, err = m.Diff(done.ID, pending.ID, nil)
	assert.ErrorIs(t, err, ErrNotReady)

	close(src.release)
	waitDone(t, pending)
}
