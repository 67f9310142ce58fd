// Package classify implements the content-block classifier.
//
// The classifier scores each extracted block over explicit numeric
// signals (merged-cell ratio, text lengths, null density) and labels it
// for the structured store, the semantic corpus, or both. Decisions are
// deterministic, threshold-driven, and never fail: malformed blocks are
// discarded with their signals recorded as unknown.
package classify
