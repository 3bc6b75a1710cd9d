// ABOUTME: Correlates snapshot objects with instances alive in the running process
// ABOUTME: Typed not-found outcomes distinguish collected from limit-truncated

package live

import (
	"context"
	"errors"

	"github.com/prateek/heapdiff/classes"
	"github.com/prateek/heapdiff/graph"
)

var (
	// ErrEvalDisabled is returned for classes classified as runtime/library
	// code; the lookup is rejected before any process query is issued.
	ErrEvalDisabled = errors.New("live evaluation disabled for library classes")

	// ErrClassGone is returned when the class no longer exists in the
	// running process.
	ErrClassGone = errors.New("class not found in running process")
)

// ClassHandle identifies a class inside the running process.
type ClassHandle interface {
	Name() string
}

// Instance is a handle to one live object. It carries the same best-effort
// correlation token the capture records.
type Instance interface {
	Token() graph.Token
}

// Process is the live-process query interface. Implementations issue
// requests against the running process; Instances must return at most limit
// handles.
type Process interface {
	FindClass(ctx context.Context, name string) (ClassHandle, error)
	Instances(ctx context.Context, class ClassHandle, limit int) ([]Instance, error)
}

// NotFoundReason says why a lookup produced no match.
type NotFoundReason int

const (
	// Collected: no live instance carries a matching token. The object was
	// garbage collected, or its token was recycled onto an object that was.
	Collected NotFoundReason = iota
	// LimitTruncated: the instance list was cut off at the reference limit
	// before a match could be found. Retrying with a higher limit may
	// succeed.
	LimitTruncated
)

func (r NotFoundReason) String() string {
	if r == LimitTruncated {
		return "limit-truncated"
	}
	return "collected"
}

// Resolution is the outcome of a single-instance lookup. Not finding a match
// is an ordinary result, not an error.
type Resolution struct {
	Found    bool
	Live     Instance      // set when Found
	Object   *graph.Object // the matching snapshot object, set when Found
	NotFound NotFoundReason
}

// DefaultRefLimit bounds how many live instances one query may return.
const DefaultRefLimit = 100

// Resolver maps objects recorded in a historical snapshot onto instances
// currently alive in the process. It never mutates the snapshot.
type Resolver struct {
	proc  Process
	limit int
}

// NewResolver creates a resolver over the given process connection. A
// non-positive limit falls back to DefaultRefLimit.
func NewResolver(proc Process, limit int) *Resolver {
	if limit <= 0 {
		limit = DefaultRefLimit
	}
	return &Resolver{proc: proc, limit: limit}
}

// RefLimit returns the configured reference-count limit.
func (r *Resolver) RefLimit() int {
	return r.limit
}

// EvalEnabled reports whether live evaluation is permitted for the class.
// Library and runtime classes are off limits.
func (r *Resolver) EvalEnabled(c *graph.Class) bool {
	return c != nil && c.Kind == graph.ClassUser
}

// ResolveOne finds the first live instance whose token matches an object in
// the set. A truncated result means the process returned exactly the limit
// and the match may lie beyond it; callers should surface that as "raise the
// limit and retry".
func (r *Resolver) ResolveOne(ctx context.Context, set *classes.ObjectSet) (Resolution, error) {
	instances, err := r.fetch(ctx, set)
	if err != nil {
		return Resolution{}, err
	}

	byToken := make(map[graph.Token]*graph.Object, set.Count)
	for _, obj := range set.Objects {
		if obj.Token == 0 {
			continue
		}
		if _, dup := byToken[obj.Token]; !dup {
			byToken[obj.Token] = obj
		}
	}

	for _, inst := range instances {
		if obj, ok := byToken[inst.Token()]; ok {
			return Resolution{Found: true, Live: inst, Object: obj}, nil
		}
	}

	reason := Collected
	if len(instances) >= r.limit {
		reason = LimitTruncated
	}
	return Resolution{NotFound: reason}, nil
}

// ResolveAll returns the bounded set of live instances of the class without
// per-object correlation, for bulk inspection.
func (r *Resolver) ResolveAll(ctx context.Context, set *classes.ObjectSet) ([]Instance, error) {
	return r.fetch(ctx, set)
}

func (r *Resolver) fetch(ctx context.Context, set *classes.ObjectSet) ([]Instance, error) {
	if !r.EvalEnabled(set.Class) {
		return nil, ErrEvalDisabled
	}
	handle, err := r.proc.FindClass(ctx, set.Class.Name)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, ErrClassGone
	}
	return r.proc.Instances(ctx, handle, r.limit)
}
