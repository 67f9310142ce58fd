package search

import "strings"

// Stop words excluded from the verbatim-match check. Kept deliberately
// short: only words so common that requiring them would make almost any
// chunk a verbatim hit.
var stopWords = func() map[string]struct{} {
	const list = "the a an be is are was to of and in that have it for not on with as you do at this but by from"
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}()

const tokenCutset = ".,!?;:'\"-()[]{}"

// contentWords lowercases text and returns its words with surrounding
// punctuation and stop words removed.
func contentWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := fields[:0]
	for _, f := range fields {
		w := strings.Trim(f, tokenCutset)
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// containsAllQueryWords reports whether every content word of the query
// appears somewhere in the document. Queries reduced to nothing by stop-word
// filtering never count as verbatim hits.
func containsAllQueryWords(document, query string) bool {
	query = strings.TrimSpace(query)
	queryWords := contentWords(query)
	if len(queryWords) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, w := range contentWords(document) {
		present[w] = struct{}{}
	}

	for _, w := range queryWords {
		if _, ok := present[w]; !ok {
			return false
		}
	}
	return true
}
