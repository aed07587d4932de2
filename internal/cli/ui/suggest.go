package ui

import (
	"sort"
	"strings"
)

const (
	// MaxSuggestDistance is the largest edit distance still offered as a suggestion
	MaxSuggestDistance = 3
	// MaxSuggestions caps the number of suggestions
	MaxSuggestions = 3
)

// Suggest returns the candidates closest to target, case-insensitively,
// nearest first. Candidates more than MaxSuggestDistance edits away are
// dropped.
//
//	Suggest("factorail", []string{"factorial", "fibonacci", "classify"})
//	// ["factorial"]
func Suggest(target string, candidates []string) []string {
	type scored struct {
		value    string
		distance int
	}

	var matches []scored
	for _, c := range candidates {
		d := EditDistance(strings.ToLower(target), strings.ToLower(c))
		if d <= MaxSuggestDistance {
			matches = append(matches, scored{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, MaxSuggestions)
	for i := 0; i < len(matches) && i < MaxSuggestions; i++ {
		out = append(out, matches[i].value)
	}
	return out
}

// EditDistance returns the Levenshtein distance between a and b in runes
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
