// ABOUTME: SnapshotItem variants: placeholder and real snapshots with lifecycle state
// ABOUTME: Items transition from processing to ready once graph and index exist

package snapshot

import (
	"sync"

	"github.com/google/uuid"

	"github.com/prateek/heapdiff/classes"
	"github.com/prateek/heapdiff/graph"
)

// Kind discriminates the item variants.
type Kind int

const (
	// KindPlaceholder is the "no snapshots yet" entry shown before any
	// capture exists. It carries no graph.
	KindPlaceholder Kind = iota
	// KindSnapshot is a real capture.
	KindSnapshot
)

// State is the lifecycle state of a snapshot item.
type State int

const (
	// StateProcessing: the capture is in flight; no graph is available.
	StateProcessing State = iota
	// StateReady: graph and class index are built.
	StateReady
)

// Item is one entry in the snapshot list. Fields are guarded by the owning
// Manager's mutex; once Done is closed the result fields are immutable.
type Item struct {
	ID   uuid.UUID
	Kind Kind

	mu    *sync.Mutex // the owning Manager's mutex
	name  string
	state State
	index *classes.Index
	err   error
	done  chan struct{}
}

func newPlaceholder(mu *sync.Mutex) *Item {
	done := make(chan struct{})
	close(done)
	return &Item{
		ID:   uuid.New(),
		Kind: KindPlaceholder,
		mu:   mu,
		name: "No snapshots",
		done: done,
	}
}

// Name returns the user-visible name.
func (it *Item) Name() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.name
}

// State returns the lifecycle state. Placeholders are always ready.
func (it *Item) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.Kind == KindPlaceholder {
		return StateReady
	}
	return it.state
}

// Done is closed once the capture completed or failed.
func (it *Item) Done() <-chan struct{} {
	return it.done
}

// Err returns the capture failure, if any. Only meaningful after Done.
func (it *Item) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}

// Index returns the class index, or nil while processing or for
// placeholders.
func (it *Item) Index() *classes.Index {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.index
}

// Graph returns the frozen heap graph, or nil while processing or for
// placeholders.
func (it *Item) Graph() graph.Graph {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.index == nil {
		return nil
	}
	return it.index.Graph()
}
