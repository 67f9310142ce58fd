package resolve

import (
	"github.com/poiesic/dualstore/core"
)

// DecisionKind says how an incoming table relates to the known tables.
type DecisionKind int

const (
	// DecisionCreate materializes a brand new table.
	DecisionCreate DecisionKind = iota + 1
	// DecisionExtend appends rows to an existing table of the same name,
	// taking the union of the column sets.
	DecisionExtend
	// DecisionMergeCandidate flags heavy column overlap with a
	// differently named table. Never auto-merged: an operator must
	// resolve it, since a wrong merge silently corrupts both tables.
	DecisionMergeCandidate
)

// String returns the serialized name of the decision kind.
func (k DecisionKind) String() string {
	switch k {
	case DecisionCreate:
		return "create"
	case DecisionExtend:
		return "extend"
	case DecisionMergeCandidate:
		return "merge_candidate"
	default:
		return "unknown"
	}
}

// Decision is the outcome of comparing an incoming table against state.
type Decision struct {
	Kind DecisionKind
	// Target is the existing table to extend, or the merge candidate.
	Target string
	// Overlap is the column-name overlap with Target, for audit logs.
	Overlap float64
}

// DecideTable classifies an incoming table as extend, merge candidate,
// or create. An exact name match always extends; otherwise the column
// sets of every known table are compared and the strongest overlap above
// the threshold flags a merge candidate.
func (r *Resolver) DecideTable(name string, columns []string, state *core.IngestionState) Decision {
	if existing := state.Table(name); existing != nil {
		return Decision{Kind: DecisionExtend, Target: name, Overlap: columnOverlap(columns, existing.ColumnNames())}
	}

	best := Decision{Kind: DecisionCreate}
	for tableName, spec := range state.Tables {
		overlap := columnOverlap(columns, spec.ColumnNames())
		if overlap > r.config.MergeOverlapThreshold && overlap > best.Overlap {
			best = Decision{Kind: DecisionMergeCandidate, Target: tableName, Overlap: overlap}
		}
	}

	if best.Kind == DecisionMergeCandidate {
		r.logger.Warn("table flagged as merge candidate",
			"table", name, "candidate", best.Target, "overlap", best.Overlap)
	}
	return best
}

// columnOverlap computes the Jaccard overlap of two column-name sets.
func columnOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, col := range a {
		set[col] = struct{}{}
	}

	intersection := 0
	union := len(set)
	for _, col := range b {
		if _, ok := set[col]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
