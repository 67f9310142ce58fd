package ai

// EntityCandidate is one structured row offered to the similarity linker.
// Display carries the human-readable text the row is best known by, typically
// the value of its name-like column joined with the table name.
type EntityCandidate struct {
	Table   string
	RowID   string
	Display string
}

// EntityMatch pairs a candidate with its similarity score against the chunk
// text. Scores are in [0, 1] with higher meaning more similar.
type EntityMatch struct {
	Candidate EntityCandidate
	Score     float32
}
