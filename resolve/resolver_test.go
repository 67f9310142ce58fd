package resolve

import (
	"context"
	"testing"

	"github.com/poiesic/dualstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDomain implements ValueDomain over in-memory tables.
type testDomain struct {
	values map[string]map[string][]string // table -> column -> values
}

func (d *testDomain) ColumnValues(ctx context.Context, table, column string) ([]string, error) {
	return d.values[table][column], nil
}

func newTestResolver(t *testing.T, domain ValueDomain, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(domain, opts...)
	require.NoError(t, err)
	return r
}

func strPtr(s string) *string { return &s }

func TestDetectPrimaryKey(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []string
		rows    [][]string
		want    *string
	}{
		{
			name:    "id column wins",
			table:   "customers",
			columns: []string{"id", "name"},
			rows:    [][]string{{"1", "Alice"}, {"2", "Bob"}},
			want:    strPtr("id"),
		},
		{
			name:    "singular table id",
			table:   "customers",
			columns: []string{"customer_id", "name"},
			rows:    [][]string{{"101", "Alice"}, {"102", "Bob"}},
			want:    strPtr("customer_id"),
		},
		{
			name:    "code column",
			table:   "regions",
			columns: []string{"code", "label"},
			rows:    [][]string{{"NO", "Norway"}, {"SE", "Sweden"}},
			want:    strPtr("code"),
		},
		{
			name:    "duplicate id falls through to scan",
			table:   "events",
			columns: []string{"id", "slug"},
			rows:    [][]string{{"1", "launch"}, {"1", "retro"}},
			want:    strPtr("slug"),
		},
		{
			name:    "null in candidate disqualifies",
			table:   "items",
			columns: []string{"id", "sku"},
			rows:    [][]string{{"1", "A-1"}, {"", "A-2"}},
			want:    strPtr("sku"),
		},
		{
			name:    "no qualifying column",
			table:   "logs",
			columns: []string{"level", "message"},
			rows:    [][]string{{"info", "started"}, {"info", "started"}},
			want:    nil,
		},
		{
			name:    "empty rows never qualify",
			table:   "empty",
			columns: []string{"id"},
			rows:    nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPrimaryKey(tt.table, tt.columns, tt.rows)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"customers", "customer"},
		{"categories", "category"},
		{"boxes", "box"},
		{"addresses", "address"},
		{"status", "statu"}, // regular heuristic only; fuzzy match absorbs it
		{"class", "class"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Singularize(tt.in), "Singularize(%q)", tt.in)
	}
}

func TestDetectRelationshipsResolved(t *testing.T) {
	state := core.NewIngestionState()
	state.MergeNewTable(&core.TableSpec{
		Name:       "customers",
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger, "name": core.ColumnTypeText},
		PrimaryKey: strPtr("id"),
	})

	domain := &testDomain{values: map[string]map[string][]string{
		"customers": {"id": {"101", "102"}},
	}}
	r := newTestResolver(t, domain)

	resolved, pending, err := r.DetectRelationships(context.Background(),
		"orders",
		[]string{"id", "customer_id", "total"},
		[][]string{{"1", "101", "10"}, {"2", "102", "20"}},
		state)
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Equal(t, core.Relationship{
		FromTable: "orders", FromColumn: "customer_id",
		ToTable: "customers", ToColumn: "id",
	}, resolved[0])
	assert.Empty(t, pending)
}

func TestDetectRelationshipsValueMismatchStaysPending(t *testing.T) {
	state := core.NewIngestionState()
	state.MergeNewTable(&core.TableSpec{
		Name:       "customers",
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger},
		PrimaryKey: strPtr("id"),
	})

	// 999 is not a known customer id, so naming alone must not resolve.
	domain := &testDomain{values: map[string]map[string][]string{
		"customers": {"id": {"101"}},
	}}
	r := newTestResolver(t, domain)

	resolved, pending, err := r.DetectRelationships(context.Background(),
		"orders",
		[]string{"id", "customer_id"},
		[][]string{{"1", "999"}},
		state)
	require.NoError(t, err)

	assert.Empty(t, resolved)
	require.Len(t, pending, 1)
	assert.Equal(t, "customer", pending[0].AwaitedTableHint)
}

func TestDetectRelationshipsUnknownTargetPending(t *testing.T) {
	r := newTestResolver(t, &testDomain{values: map[string]map[string][]string{}})

	resolved, pending, err := r.DetectRelationships(context.Background(),
		"orders",
		[]string{"id", "customer_id", "region_code"},
		[][]string{{"1", "101", "NO"}},
		core.NewIngestionState())
	require.NoError(t, err)

	assert.Empty(t, resolved)
	require.Len(t, pending, 2)
	assert.Equal(t, "customer", pending[0].AwaitedTableHint)
	assert.Equal(t, "region", pending[1].AwaitedTableHint)
}

func TestDetectRelationshipsSkipsOwnKey(t *testing.T) {
	r := newTestResolver(t, &testDomain{values: map[string]map[string][]string{}})

	resolved, pending, err := r.DetectRelationships(context.Background(),
		"customers",
		[]string{"customer_id", "name"},
		[][]string{{"101", "Alice"}},
		core.NewIngestionState())
	require.NoError(t, err)

	assert.Empty(t, resolved)
	assert.Empty(t, pending)
}

func TestSweepPendingPromotes(t *testing.T) {
	state := core.NewIngestionState()
	state.AddPending(core.PendingRelationship{
		Table: "orders", Column: "customer_id", AwaitedTableHint: "customer",
	})

	domain := &testDomain{values: map[string]map[string][]string{
		"orders":    {"customer_id": {"101", "102"}},
		"customers": {"id": {"101", "102", "103"}},
	}}
	r := newTestResolver(t, domain)

	customers := &core.TableSpec{
		Name:       "customers",
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger},
		PrimaryKey: strPtr("id"),
	}
	state.MergeNewTable(customers)

	promoted, err := r.SweepPending(context.Background(), customers, state)
	require.NoError(t, err)

	require.Len(t, promoted, 1)
	assert.Equal(t, core.Relationship{
		FromTable: "orders", FromColumn: "customer_id",
		ToTable: "customers", ToColumn: "id",
	}, promoted[0])
	assert.Empty(t, state.Pending)
	assert.Contains(t, state.Relationships, promoted[0])
}

func TestSweepPendingValueMismatchStays(t *testing.T) {
	state := core.NewIngestionState()
	state.AddPending(core.PendingRelationship{
		Table: "orders", Column: "customer_id", AwaitedTableHint: "customer",
	})

	domain := &testDomain{values: map[string]map[string][]string{
		"orders":    {"customer_id": {"999"}},
		"customers": {"id": {"101"}},
	}}
	r := newTestResolver(t, domain)

	customers := &core.TableSpec{
		Name:       "customers",
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger},
		PrimaryKey: strPtr("id"),
	}

	promoted, err := r.SweepPending(context.Background(), customers, state)
	require.NoError(t, err)

	assert.Empty(t, promoted)
	assert.Len(t, state.Pending, 1)
}

func TestSweepPendingIgnoresUnrelatedTables(t *testing.T) {
	state := core.NewIngestionState()
	state.AddPending(core.PendingRelationship{
		Table: "orders", Column: "customer_id", AwaitedTableHint: "customer",
	})

	r := newTestResolver(t, &testDomain{values: map[string]map[string][]string{}})

	products := &core.TableSpec{
		Name:       "products",
		Columns:    map[string]core.ColumnType{"id": core.ColumnTypeInteger},
		PrimaryKey: strPtr("id"),
	}

	promoted, err := r.SweepPending(context.Background(), products, state)
	require.NoError(t, err)
	assert.Empty(t, promoted)
	assert.Len(t, state.Pending, 1)
}

func TestDecideTable(t *testing.T) {
	state := core.NewIngestionState()
	state.MergeNewTable(&core.TableSpec{
		Name: "customers",
		Columns: map[string]core.ColumnType{
			"id": core.ColumnTypeInteger, "name": core.ColumnTypeText,
			"country": core.ColumnTypeText, "segment": core.ColumnTypeText,
		},
	})

	r := newTestResolver(t, &testDomain{values: map[string]map[string][]string{}})

	t.Run("same name extends", func(t *testing.T) {
		d := r.DecideTable("customers", []string{"id", "name", "country", "tier"}, state)
		assert.Equal(t, DecisionExtend, d.Kind)
		assert.Equal(t, "customers", d.Target)
	})

	t.Run("heavy overlap flags merge candidate", func(t *testing.T) {
		d := r.DecideTable("clients", []string{"id", "name", "country", "segment"}, state)
		assert.Equal(t, DecisionMergeCandidate, d.Kind)
		assert.Equal(t, "customers", d.Target)
		assert.Greater(t, d.Overlap, 0.70)
	})

	t.Run("distinct columns create", func(t *testing.T) {
		d := r.DecideTable("invoices", []string{"invoice_no", "amount", "due"}, state)
		assert.Equal(t, DecisionCreate, d.Kind)
	})
}

func TestColumnOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, columnOverlap([]string{"a", "b"}, []string{"b", "a"}), 0.001)
	assert.InDelta(t, 0.5, columnOverlap([]string{"a", "b", "c"}, []string{"a", "b", "d"}), 0.001)
	assert.Zero(t, columnOverlap(nil, nil))
}
