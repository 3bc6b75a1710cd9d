// ABOUTME: Computes per-class created/deleted/delta statistics between two snapshots
// ABOUTME: Partitions each class's population via a pluggable matching strategy

package diff

import (
	"sort"

	"github.com/prateek/heapdiff/classes"
	"github.com/prateek/heapdiff/graph"
)

// Compute diffs two class indexes and returns one ClassStats per class
// present in either snapshot, sorted by class name. Classes are identified by
// their fully qualified name; numeric class ids are snapshot-local and never
// compared. A class present on only one side is diffed against an empty set.
//
// Given the same two indexes the per-class values are deterministic; use
// SortStats to reorder the result by any numeric column.
func Compute(before, after *classes.Index, m Matcher) []ClassStats {
	if m == nil {
		m = TokenMatcher{}
	}

	beforeByName := setsByName(before)
	afterByName := setsByName(after)

	names := make([]string, 0, len(beforeByName)+len(afterByName))
	for name := range beforeByName {
		names = append(names, name)
	}
	for name := range afterByName {
		if _, ok := beforeByName[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	stats := make([]ClassStats, 0, len(names))
	for _, name := range names {
		bSet := beforeByName[name]
		aSet := afterByName[name]
		stats = append(stats, diffClass(name, bSet, aSet, before, after, m))
	}
	return stats
}

func setsByName(idx *classes.Index) map[string]*classes.ObjectSet {
	byName := make(map[string]*classes.ObjectSet, idx.NumClasses())
	idx.ForEach(func(set *classes.ObjectSet) {
		byName[set.Class.Name] = set
	})
	return byName
}

func diffClass(name string, bSet, aSet *classes.ObjectSet, before, after *classes.Index, m Matcher) ClassStats {
	s := ClassStats{ClassName: name}
	if aSet != nil {
		s.Kind = aSet.Class.Kind.String()
	} else {
		s.Kind = bSet.Class.Kind.String()
	}

	// Multiset of correlation keys on the before side.
	keys := make(map[graph.Token]int)
	if bSet != nil {
		for _, obj := range bSet.Objects {
			if key, ok := m.Key(obj); ok {
				keys[key]++
			} else {
				s.UnmatchedBefore++
			}
		}
	}

	// Consume before keys from the after side; leftovers are created.
	consumed := make(map[graph.Token]int)
	var aTally Tally
	if aSet != nil {
		for _, obj := range aSet.Objects {
			aTally.Count++
			aTally.ShallowBytes += obj.Size
			aTally.RetainedBytes += after.Retained(obj.ID)

			key, ok := m.Key(obj)
			if !ok {
				s.UnmatchedAfter++
			} else if consumed[key] < keys[key] {
				consumed[key]++
				s.Persisted++
				continue
			}
			s.Created.Count++
			s.Created.ShallowBytes += obj.Size
			s.Created.RetainedBytes += after.Retained(obj.ID)
		}
	}

	// Before objects whose key was never consumed are deleted. Objects
	// sharing a key are consumed in member order, which is deterministic.
	remaining := make(map[graph.Token]int)
	var bTally Tally
	if bSet != nil {
		for _, obj := range bSet.Objects {
			bTally.Count++
			bTally.ShallowBytes += obj.Size
			bTally.RetainedBytes += before.Retained(obj.ID)

			if key, ok := m.Key(obj); ok {
				remaining[key]++
				if remaining[key] <= consumed[key] {
					continue // matched with an after object
				}
			}
			s.Deleted.Count++
			s.Deleted.ShallowBytes += obj.Size
			s.Deleted.RetainedBytes += before.Retained(obj.ID)
		}
	}

	// Delta spans the whole population, so retained drift on persisted
	// objects is included.
	s.Delta = Delta{
		Count:         int64(aTally.Count) - int64(bTally.Count),
		ShallowBytes:  int64(aTally.ShallowBytes) - int64(bTally.ShallowBytes),
		RetainedBytes: int64(aTally.RetainedBytes) - int64(bTally.RetainedBytes),
	}
	return s
}
