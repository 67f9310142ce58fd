package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/dualstore/core"
)

// NormalizeColumnName rewrites an original column name for storage:
// lower-case, whitespace replaced with underscores, every remaining
// non-alphanumeric-non-underscore character stripped.
func NormalizeColumnName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NormalizeColumns normalizes a header row and verifies the result is
// collision-free. Two distinct originals normalizing identically is a
// classification error that must be surfaced, not silently merged.
func NormalizeColumns(header []string) ([]string, error) {
	normalized := make([]string, len(header))
	seen := make(map[string]string, len(header))
	for i, original := range header {
		name := NormalizeColumnName(original)
		if prev, ok := seen[name]; ok && prev != original {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q",
				ErrSchemaConflict, prev, original, name)
		}
		seen[name] = original
		normalized[i] = name
	}
	return normalized, nil
}

// InferColumnType infers the storage type of a column from its values.
// Empty cells are ignored; a column with no values at all is text.
func InferColumnType(values []string) core.ColumnType {
	seen := false
	integer, real, boolean, timestamp := true, true, true, true

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true

		if integer {
			if _, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64); err != nil {
				integer = false
			}
		}
		if real {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err != nil {
				real = false
			}
		}
		if boolean && !isBool(v) {
			boolean = false
		}
		if timestamp && !isTimestamp(v) {
			timestamp = false
		}
	}

	switch {
	case !seen:
		return core.ColumnTypeText
	case boolean:
		return core.ColumnTypeBool
	case integer:
		return core.ColumnTypeInteger
	case real:
		return core.ColumnTypeReal
	case timestamp:
		return core.ColumnTypeTimestamp
	default:
		return core.ColumnTypeText
	}
}

// InferColumns builds the column-type map for a normalized header.
func InferColumns(columns []string, rows [][]string) map[string]core.ColumnType {
	types := make(map[string]core.ColumnType, len(columns))
	for i, col := range columns {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		types[col] = InferColumnType(values)
	}
	return types
}

func isBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no":
		return true
	default:
		return false
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

func isTimestamp(v string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
