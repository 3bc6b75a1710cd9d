// ABOUTME: Per-class diff statistics between two heap snapshots
// ABOUTME: Defines Tally, Delta, ClassStats, and sortable numeric fields

package diff

import "sort"

// Tally aggregates one object population: instance count plus shallow and
// retained byte totals.
type Tally struct {
	Count         int
	ShallowBytes  uint64
	RetainedBytes uint64
}

// Delta is the signed difference between the after and before totals of one
// class, persisted objects included. Retained drift on persisted objects
// therefore shows up here even when Count is zero.
type Delta struct {
	Count         int64
	ShallowBytes  int64
	RetainedBytes int64
}

// ClassStats is the diff record for one class present in either snapshot.
// Invariant: Delta.Count == int64(Created.Count) - int64(Deleted.Count).
type ClassStats struct {
	ClassName string
	Kind      string

	Created   Tally // present in after, absent in before
	Deleted   Tally // present in before, absent in after
	Persisted int   // matched in both snapshots

	Delta Delta

	// UnmatchedBefore/UnmatchedAfter count objects carrying no correlation
	// token. They are reported as deleted/created respectively, which may
	// overstate churn; see the Matcher docs.
	UnmatchedBefore int
	UnmatchedAfter  int
}

// SortField selects one of the numeric ClassStats columns.
type SortField int

const (
	ByCreatedCount SortField = iota
	ByCreatedShallow
	ByCreatedRetained
	ByDeletedCount
	ByDeletedShallow
	ByDeletedRetained
	ByDeltaCount
	ByDeltaShallow
	ByDeltaRetained
	ByPersisted
)

var sortFieldNames = map[string]SortField{
	"created-count":    ByCreatedCount,
	"created-shallow":  ByCreatedShallow,
	"created-retained": ByCreatedRetained,
	"deleted-count":    ByDeletedCount,
	"deleted-shallow":  ByDeletedShallow,
	"deleted-retained": ByDeletedRetained,
	"delta-count":      ByDeltaCount,
	"delta-shallow":    ByDeltaShallow,
	"delta-retained":   ByDeltaRetained,
	"persisted":        ByPersisted,
}

// ParseSortField maps a column name like "delta-retained" to its SortField.
func ParseSortField(name string) (SortField, bool) {
	f, ok := sortFieldNames[name]
	return f, ok
}

func (f SortField) value(s *ClassStats) int64 {
	switch f {
	case ByCreatedCount:
		return int64(s.Created.Count)
	case ByCreatedShallow:
		return int64(s.Created.ShallowBytes)
	case ByCreatedRetained:
		return int64(s.Created.RetainedBytes)
	case ByDeletedCount:
		return int64(s.Deleted.Count)
	case ByDeletedShallow:
		return int64(s.Deleted.ShallowBytes)
	case ByDeletedRetained:
		return int64(s.Deleted.RetainedBytes)
	case ByDeltaCount:
		return s.Delta.Count
	case ByDeltaShallow:
		return s.Delta.ShallowBytes
	case ByDeltaRetained:
		return s.Delta.RetainedBytes
	case ByPersisted:
		return int64(s.Persisted)
	}
	return 0
}

// SortStats orders stats by the given field, descending by absolute value so
// the biggest movers in either direction come first. Ties break by class name
// to keep the output stable.
func SortStats(stats []ClassStats, field SortField) {
	abs := func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	}
	sort.SliceStable(stats, func(i, j int) bool {
		vi, vj := abs(field.value(&stats[i])), abs(field.value(&stats[j]))
		if vi != vj {
			return vi > vj
		}
		return stats[i].ClassName < stats[j].ClassName
	})
}
