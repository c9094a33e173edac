package memory

import (
	"math"
	"strings"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

// Weights of the relevance heuristic.
const (
	exactWeight   = 1.0
	partialWeight = 0.5
	contentWeight = 0.3
)

// Score rates a memory record against a query keyword set. The result lies in
// [0,1]; an empty query scores 0.
//
//	exact   = query keywords present verbatim in the record keywords
//	partial = pairs (q, m) where m contains q or q contains m
//	content = query keywords found in the lower-cased record content
//	score   = min((exact + 0.5*partial + 0.3*content) / len(query), 1)
//
// Records without precomputed keywords are re-extracted from their content.
func Score(queryKeywords []string, rec core.MemoryRecord) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}
	memKeywords := rec.Keywords
	if memKeywords == nil {
		memKeywords = ExtractKeywords(rec.Content)
	}
	lowered := strings.ToLower(rec.Content)

	var exact, partial, content int
	for _, q := range queryKeywords {
		for _, m := range memKeywords {
			if m == q {
				exact++
				break
			}
		}
		for _, m := range memKeywords {
			if strings.Contains(m, q) || strings.Contains(q, m) {
				partial++
			}
		}
		if strings.Contains(lowered, q) {
			content++
		}
	}

	raw := float64(exact)*exactWeight + float64(partial)*partialWeight + float64(content)*contentWeight
	return math.Min(raw/float64(len(queryKeywords)), 1.0)
}
