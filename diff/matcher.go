// ABOUTME: Cross-snapshot object matching strategies
// ABOUTME: Default strategy pairs objects by the runtime correlation token

package diff

import "github.com/prateek/heapdiff/graph"

// Matcher decides which objects in two independently captured snapshots
// represent the same underlying allocation. Matching is a strategy because no
// stable cross-snapshot identity exists: the default token-based strategy is
// best effort and its failure modes are reported, not corrected.
type Matcher interface {
	// Key returns the correlation key for an object, or ok=false when the
	// object cannot participate in matching and must be treated as
	// created/deleted.
	Key(obj *graph.Object) (graph.Token, bool)
}

// TokenMatcher pairs objects of the same class whose correlation tokens are
// equal, with multiset semantics: a token held by m before-objects and n
// after-objects pairs min(m, n) of them.
//
// The token is a runtime identity hash, reused and recyclable, so this can
// under-match (a persisted object whose token was never recorded counts as
// deleted+created) and over-match (two distinct objects sharing a recycled
// token count as one persisted object). Callers see the extent of the first
// case in ClassStats.UnmatchedBefore/UnmatchedAfter.
type TokenMatcher struct{}

// Key returns the object's token; objects without one never match.
func (TokenMatcher) Key(obj *graph.Object) (graph.Token, bool) {
	return obj.Token, obj.Token != 0
}
