// ABOUTME: Tests for live-instance resolution against a fake process
// ABOUTME: Covers found, collected, limit-truncated, and eval-disabled outcomes

package live

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/heapdiff/classes"
	"github.com/prateek/heapdiff/graph"
)

type fakeHandle struct{ name string }

func (h *fakeHandle) Name() string { return h.name }

type fakeInstance struct{ token graph.Token }

func (i *fakeInstance) Token() graph.Token { return i.token }

// fakeProcess serves a fixed list of live tokens per class name and counts
// queries.
type fakeProcess struct {
	tokens  map[string][]graph.Token
	queries int
}

func (p *fakeProcess) FindClass(ctx context.Context, name string) (ClassHandle, error) {
	p.queries++
	if _, ok := p.tokens[name]; !ok {
		return nil, nil
	}
	return &fakeHandle{name: name}, nil
}

func (p *fakeProcess) Instances(ctx context.Context, class ClassHandle, limit int) ([]Instance, error) {
	p.queries++
	all := p.tokens[class.Name()]
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]Instance, len(all))
	for i, tok := range all {
		out[i] = &fakeInstance{token: tok}
	}
	return out, nil
}

func userSet(name string, tokens ...graph.Token) *classes.ObjectSet {
	set := &classes.ObjectSet{
		Class: &graph.Class{ID: 1, Name: name, Kind: graph.ClassUser},
	}
	for i, tok := range tokens {
		set.Objects = append(set.Objects, &graph.Object{
			ID: graph.ObjID(i + 1), Class: 1, Size: 16, Token: tok,
		})
		set.Count++
	}
	return set
}

func TestResolveOneFound(t *testing.T) {
	proc := &fakeProcess{tokens: map[string][]graph.Token{
		"app.Session": {10, 20, 30},
	}}
	r := NewResolver(proc, 100)

	res, err := r.ResolveOne(context.Background(), userSet("app.Session", 20, 99))
	require.NoError(t, err)

	require.True(t, res.Found)
	assert.Equal(t, graph.Token(20), res.Live.Token())
	assert.Equal(t, graph.Token(20), res.Object.Token)
}

func TestResolveOneCollected(t *testing.T) {
	proc := &fakeProcess{tokens: map[string][]graph.Token{
		"app.Session": {1, 2, 3},
	}}
	r := NewResolver(proc, 100)

	res, err := r.ResolveOne(context.Background(), userSet("app.Session", 99))
	require.NoError(t, err)

	require.False(t, res.Found)
	assert.Equal(t, Collected, res.NotFound)
}

// The target's token would be the 150th live instance; with limit=100 the
// search is cut off and the outcome says so.
func TestResolveOneLimitTruncated(t *testing.T) {
	liveTokens := make([]graph.Token, 200)
	for i := range liveTokens {
		liveTokens[i] = graph.Token(i + 1)
	}
	proc := &fakeProcess{tokens: map[string][]graph.Token{
		"app.Session": liveTokens,
	}}
	r := NewResolver(proc, 100)

	res, err := r.ResolveOne(context.Background(), userSet("app.Session", 150))
	require.NoError(t, err)

	require.False(t, res.Found)
	assert.Equal(t, LimitTruncated, res.NotFound)
	assert.Equal(t, "limit-truncated", res.NotFound.String())
}

func TestEvalDisabledForLibraryClasses(t *testing.T) {
	proc := &fakeProcess{tokens: map[string][]graph.Token{}}
	r := NewResolver(proc, 100)

	set := &classes.ObjectSet{
		Class: &graph.Class{ID: 1, Name: "core.Internal", Kind: graph.ClassLibrary},
	}

	assert.False(t, r.EvalEnabled(set.Class))

	_, err := r.ResolveOne(context.Background(), set)
	assert.ErrorIs(t, err, ErrEvalDisabled)

	_, err = r.ResolveAll(context.Background(), set)
	assert.ErrorIs(t, err, ErrEvalDisabled)

	// Rejected before any process query was issued.
	assert.Equal(t, 0, proc.queries)
}

func TestResolveClassGone(t *testing.T) {
	proc := &fakeProcess{tokens: map[string][]graph.Token{}}
	r := NewResolver(proc, 100)

	_, err := r.ResolveOne(context.Background(), userSet("app.Unloaded", 1))
	assert.ErrorIs(t, err, ErrClassGone)
}

func TestResolveAll(t *testing.T) {
	proc := &fakeProcess{tokens: map[string][]graph.Token{
		"app.Session": {1, 2, 3, 4, 5},
	}}
	r := NewResolver(proc, 3)

	instances, err := r.ResolveAll(context.Background(), userSet("app.Session", 1))
	require.NoError(t, err)
	assert.Len(t, instances, 3) // bounded by the configured limit
}

func TestNewResolverDefaultLimit(t *testing.T) {
	r := NewResolver(&fakeProcess{}, 0)
	assert.Equal(t, DefaultRefLimit, r.RefLimit())
}
