// ABOUTME: Ordered snapshot list with single-flight capture and diff actions
// ABOUTME: Serializes capture-completion, rename, delete, and selection

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/prateek/heapdiff/classes"
	"github.com/prateek/heapdiff/diff"
	"github.com/prateek/heapdiff/graph"
)

var (
	// ErrCaptureInFlight is returned when a capture is requested while
	// another is pending. Requests are rejected, not queued.
	ErrCaptureInFlight = errors.New("a capture is already in flight")

	// ErrUnknownItem is returned for item ids not (or no longer) in the
	// list.
	ErrUnknownItem = errors.New("unknown snapshot item")

	// ErrNotReady is returned when an operation needs a completed capture.
	ErrNotReady = errors.New("snapshot is still processing")

	// ErrNotSnapshot is returned when an operation targets the
	// placeholder.
	ErrNotSnapshot = errors.New("item is not a snapshot")
)

// CaptureFailure wraps whatever prevented a capture from becoming a usable
// snapshot, including index-construction faults. The triggering item is
// removed from the list rather than left permanently processing.
type CaptureFailure struct {
	Detail string
	Err    error
}

func (f *CaptureFailure) Error() string {
	return fmt.Sprintf("capture failed: %s: %v", f.Detail, f.Err)
}

func (f *CaptureFailure) Unwrap() error {
	return f.Err
}

// Source is the external heap-introspection facility. Capture must return a
// frozen graph.
type Source interface {
	Capture(ctx context.Context) (graph.Graph, error)
}

// Manager owns the ordered snapshot list. All structural mutation
// (capture-completion, rename, delete, selection) is serialized on one
// mutex; snapshot payloads are immutable so reads need no coordination.
type Manager struct {
	source Source
	log    *slog.Logger

	mu        sync.Mutex
	items     []*Item
	selected  int
	capturing bool
	seq       int
}

// NewManager creates a manager seeded with the placeholder item. A nil
// logger discards logs.
func NewManager(source Source, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Manager{source: source, log: log}
	m.items = []*Item{newPlaceholder(&m.mu)}
	return m
}

// Items returns the current snapshot list in order.
func (m *Manager) Items() []*Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Item, len(m.items))
	copy(out, m.items)
	return out
}

// Selected returns the currently selected item.
func (m *Manager) Selected() *Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[m.selected]
}

// Capturing reports whether a capture is in flight.
func (m *Manager) Capturing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.capturing
}

// TakeSnapshot starts an asynchronous capture. The new item appears in the
// list immediately in the processing state and transitions to ready (or is
// removed) when the capture finishes; wait on Item.Done for completion.
// At most one capture may be in flight: concurrent requests fail with
// ErrCaptureInFlight.
func (m *Manager) TakeSnapshot(ctx context.Context) (*Item, error) {
	m.mu.Lock()
	if m.capturing {
		m.mu.Unlock()
		return nil, ErrCaptureInFlight
	}
	m.capturing = true
	m.seq++
	item := &Item{
		ID:   uuid.New(),
		Kind: KindSnapshot,
		mu:   &m.mu,
		name: fmt.Sprintf("Snapshot %d", m.seq),
		done: make(chan struct{}),
	}
	// The placeholder leaves the list as soon as a real snapshot exists.
	if len(m.items) == 1 && m.items[0].Kind == KindPlaceholder {
		m.items = m.items[:0]
	}
	m.items = append(m.items, item)
	m.selected = len(m.items) - 1
	m.mu.Unlock()

	m.log.Info("capture started", "item", item.ID)
	go m.complete(ctx, item)
	return item, nil
}

// complete runs the capture and index construction, then publishes the
// result. A failed capture removes its item; a partially-built graph is
// never exposed.
func (m *Manager) complete(ctx context.Context, item *Item) {
	g, err := m.source.Capture(ctx)
	var idx *classes.Index
	if err != nil {
		err = &CaptureFailure{Detail: "raw capture", Err: err}
	} else {
		idx, err = classes.BuildIndex(g)
		if err != nil {
			err = &CaptureFailure{Detail: "class index", Err: err}
		}
	}

	m.mu.Lock()
	m.capturing = false
	if err != nil {
		m.log.Error("capture failed", "item", item.ID, "err", err)
		item.err = err
		m.removeLocked(item.ID)
	} else if m.indexOf(item.ID) < 0 {
		// Deleted while processing; discard the result.
		m.log.Info("capture discarded", "item", item.ID)
	} else {
		item.state = StateReady
		item.index = idx
		m.log.Info("capture ready", "item", item.ID,
			"objects", g.NumObjects(), "classes", idx.NumClasses())
	}
	m.mu.Unlock()
	close(item.done)
}

// Rename changes an item's user-visible name. The placeholder cannot be
// renamed.
func (m *Manager) Rename(id uuid.UUID, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrUnknownItem
	}
	if m.items[i].Kind != KindSnapshot {
		return ErrNotSnapshot
	}
	m.items[i].name = newName
	return nil
}

// Delete removes an item from the list. Deleting the selected item moves
// selection to the previous one; deleting the last snapshot reinstates the
// placeholder. Any diff referencing the item becomes invalid.
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrUnknownItem
	}
	if m.items[i].Kind != KindSnapshot {
		return ErrNotSnapshot
	}
	m.removeLocked(id)
	return nil
}

// Select sets the selected item by list position.
func (m *Manager) Select(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.items) {
		return ErrUnknownItem
	}
	m.selected = i
	return nil
}

// Diff computes per-class statistics between two ready snapshots. A nil
// matcher uses the default token strategy.
func (m *Manager) Diff(beforeID, afterID uuid.UUID, matcher diff.Matcher) ([]diff.ClassStats, error) {
	m.mu.Lock()
	var beforeIdx, afterIdx *classes.Index
	for _, want := range []struct {
		id  uuid.UUID
		dst **classes.Index
	}{{beforeID, &beforeIdx}, {afterID, &afterIdx}} {
		i := m.indexOf(want.id)
		if i < 0 {
			m.mu.Unlock()
			return nil, ErrUnknownItem
		}
		item := m.items[i]
		if item.Kind != KindSnapshot {
			m.mu.Unlock()
			return nil, ErrNotSnapshot
		}
		if item.state != StateReady {
			m.mu.Unlock()
			return nil, ErrNotReady
		}
		*want.dst = item.index
	}
	m.mu.Unlock()

	// Indexes are immutable; the diff runs without holding the lock so a
	// concurrent capture is not blocked.
	return diff.Compute(beforeIdx, afterIdx, matcher), nil
}

func (m *Manager) indexOf(id uuid.UUID) int {
	for i, item := range m.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) removeLocked(id uuid.UUID) {
	i := m.indexOf(id)
	if i < 0 {
		return
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	if len(m.items) == 0 {
		m.items = []*Item{newPlaceholder(&m.mu)}
		m.selected = 0
		return
	}
	if m.selected >= i && m.selected > 0 {
		m.selected--
	}
}
