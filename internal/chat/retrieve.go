package chat

import (
	"sort"
	"strings"
	"unicode"
)

const (
	topK = 3
	// scoreThreshold drops documents that share too little vocabulary with
	// the query to be worth quoting.
	scoreThreshold = 0.2
)

// stopwords are excluded from overlap scoring so that filler words do not
// dominate short queries.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "how": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "what": true, "which": true, "who": true,
	"why": true, "with": true,
}

type scoredDoc struct {
	doc   Document
	score float64
}

// Retrieve ranks documents by keyword overlap with the query and returns the
// top matches above the score threshold.
func Retrieve(query string, docs []Document) []Document {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	scored := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		docTokens := tokenize(doc.Content)
		if s := overlap(queryTokens, docTokens); s > scoreThreshold {
			scored = append(scored, scoredDoc{doc: doc, score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n := len(scored)
	if n > topK {
		n = topK
	}
	result := make([]Document, n)
	for i := 0; i < n; i++ {
		result[i] = scored[i].doc
	}
	return result
}

// overlap is the fraction of query tokens that appear in the document.
func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	var hits int
	for token := range query {
		if doc[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(word) < 2 || stopwords[word] {
			continue
		}
		tokens[word] = true
	}
	return tokens
}
