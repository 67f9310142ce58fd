package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "plain text", content: "quarterly totals"},
		{name: "empty string", content: ""},
		{name: "long content", content: "A long narrative paragraph describing the customer onboarding process in detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := IDFromContent(tt.content)
			second := IDFromContent(tt.content)
			if first != second {
				t.Errorf("IDFromContent not deterministic: %d != %d", first, second)
			}
		})
	}

	if IDFromContent("alpha") == IDFromContent("beta") {
		t.Error("distinct content produced identical IDs")
	}
}

func TestFingerprintRows(t *testing.T) {
	columns := []string{"id", "name"}
	rows := [][]string{{"1", "Alice"}, {"2", "Bob"}}

	if FingerprintRows(columns, rows) != FingerprintRows(columns, rows) {
		t.Error("fingerprint not deterministic")
	}

	reordered := [][]string{{"2", "Bob"}, {"1", "Alice"}}
	if FingerprintRows(columns, rows) == FingerprintRows(columns, reordered) {
		t.Error("row order should change the fingerprint")
	}

	// Cell boundaries matter: ("ab","c") must differ from ("a","bc").
	a := FingerprintRows([]string{"x"}, [][]string{{"ab", "c"}})
	b := FingerprintRows([]string{"x"}, [][]string{{"a", "bc"}})
	if a == b {
		t.Error("cell boundaries should change the fingerprint")
	}
}

func TestDestinationString(t *testing.T) {
	tests := []struct {
		dest Destination
		want string
	}{
		{DestinationStructured, "structured"},
		{DestinationUnstructured, "unstructured"},
		{DestinationBoth, "both"},
		{DestinationDiscard, "discard"},
		{Destination(0), "unknown(0)"},
	}

	for _, tt := range tests {
		if got := tt.dest.String(); got != tt.want {
			t.Errorf("Destination(%d).String() = %q, want %q", tt.dest, got, tt.want)
		}
	}
}

func TestTableSpecSources(t *testing.T) {
	spec := &TableSpec{Name: "customers"}
	if spec.HasSource("a.xlsx") {
		t.Error("fresh spec reported a source")
	}

	spec.RecordSource("a.xlsx", 11)
	spec.RecordSource("b.xlsx", 22)

	if !spec.HasSource("a.xlsx") || !spec.HasSource("b.xlsx") {
		t.Error("recorded sources not reported")
	}
	if !spec.UnchangedFrom("a.xlsx", 11) {
		t.Error("matching fingerprint not recognized")
	}
	if spec.UnchangedFrom("a.xlsx", 12) {
		t.Error("changed fingerprint reported as unchanged")
	}
	if spec.UnchangedFrom("c.xlsx", 11) {
		t.Error("unknown source reported as unchanged")
	}

	spec.RecordSource("a.xlsx", 33)
	if spec.UnchangedFrom("a.xlsx", 11) {
		t.Error("stale fingerprint survived re-recording")
	}
}

func TestTableSpecHasPrimaryKey(t *testing.T) {
	spec := &TableSpec{Name: "customers"}
	if spec.HasPrimaryKey() {
		t.Error("spec without primary key reported one")
	}

	pk := "id"
	spec.PrimaryKey = &pk
	if !spec.HasPrimaryKey() {
		t.Error("spec with primary key reported none")
	}

	empty := ""
	spec.PrimaryKey = &empty
	if spec.HasPrimaryKey() {
		t.Error("empty primary key should not count")
	}
}

func TestEntityKey(t *testing.T) {
	if got := EntityKey("customers", "101"); got != "customers.101" {
		t.Errorf("EntityKey = %q, want %q", got, "customers.101")
	}
}

func TestStateRecordChunkIndexing(t *testing.T) {
	state := NewIngestionState()

	chunk := &Chunk{
		Id:          IDFromContent("c1"),
		SourceFile:  "report.docx",
		Content:     "Customer 101 renewed early.",
		LinkedTable: "customers",
		LinkedIDs:   []string{"101"},
		LinkType:    LinkTypeDescribes,
	}
	state.RecordChunk(chunk)

	ids := state.ChunksForEntity("customers", "101")
	if len(ids) != 1 || ids[0] != chunk.Id {
		t.Fatalf("reverse index = %v, want [%d]", ids, chunk.Id)
	}

	// Re-recording with a revised link moves the index entry.
	revised := *chunk
	revised.LinkedIDs = []string{"102"}
	state.RecordChunk(&revised)

	if got := state.ChunksForEntity("customers", "101"); len(got) != 0 {
		t.Errorf("stale index entry survived re-record: %v", got)
	}
	if got := state.ChunksForEntity("customers", "102"); len(got) != 1 {
		t.Errorf("new index entry missing: %v", got)
	}

	state.DropChunk(chunk.Id)
	if got := state.ChunksForEntity("customers", "102"); len(got) != 0 {
		t.Errorf("index entry survived drop: %v", got)
	}
}

func TestStatePendingHelpers(t *testing.T) {
	state := NewIngestionState()

	p := PendingRelationship{Table: "orders", Column: "customer_id", AwaitedTableHint: "customer"}
	state.AddPending(p)
	state.AddPending(p) // duplicate ignored

	if len(state.Pending) != 1 {
		t.Fatalf("pending length = %d, want 1", len(state.Pending))
	}
	if !state.HasPending("orders", "customer_id") {
		t.Error("HasPending missed the entry")
	}

	state.RemovePending("orders", "customer_id")
	if state.HasPending("orders", "customer_id") {
		t.Error("RemovePending left the entry behind")
	}
}

func TestStateSourceChunkIDs(t *testing.T) {
	state := NewIngestionState()
	state.RecordChunk(&Chunk{Id: 1, SourceFile: "a.xlsx", Content: "x"})
	state.RecordChunk(&Chunk{Id: 2, SourceFile: "b.xlsx", Content: "y"})
	state.RecordChunk(&Chunk{Id: 3, SourceFile: "a.xlsx", Content: "z"})

	ids := state.SourceChunkIDs("a.xlsx")
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("SourceChunkIDs = %v, want [1 3]", ids)
	}
}
