package resolve

import (
	"strings"
)

// pkCandidates returns the conventional primary-key column names for a
// table, tried in order before falling back to a full column scan.
func pkCandidates(tableName string) []string {
	return []string{"id", Singularize(tableName) + "_id", "key", "code"}
}

// DetectPrimaryKey infers a primary key for a table over its full
// materialized row set. Conventional key names are tried first; if none
// qualifies, the first unique non-null column in declaration order wins.
// Returns nil when no column qualifies: the table still materializes but
// is not eligible as a foreign-key target.
func DetectPrimaryKey(tableName string, columns []string, rows [][]string) *string {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}

	for _, candidate := range pkCandidates(tableName) {
		col, ok := index[candidate]
		if !ok {
			continue
		}
		if uniqueNonNull(columnValues(rows, col)) {
			name := columns[col]
			return &name
		}
	}

	for col, name := range columns {
		if uniqueNonNull(columnValues(rows, col)) {
			name := name
			return &name
		}
	}

	return nil
}

// uniqueNonNull reports whether every value is present and distinct.
// An empty row set does not qualify: uniqueness over nothing proves
// nothing about the source.
func uniqueNonNull(values []string) bool {
	if len(values) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

func columnValues(rows [][]string, col int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}

// Singularize reduces a plural English table name to its singular stem.
// It handles the regular forms only; irregular plurals stay as-is, which
// the fuzzy stem matching absorbs.
func Singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "sses") || strings.HasSuffix(name, "xes") || strings.HasSuffix(name, "ches") || strings.HasSuffix(name, "shes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}

// fkStem extracts the referenced-table stem from a foreign-key-shaped
// column name: "customer_id" yields "customer". Returns "" when the
// column does not look like a foreign key.
func fkStem(column string) string {
	for _, suffix := range []string{"_id", "_key", "_code"} {
		if strings.HasSuffix(column, suffix) && len(column) > len(suffix) {
			return strings.TrimSuffix(column, suffix)
		}
	}
	return ""
}
