package errors

import (
	"fmt"
	"strings"
)

// maxSuggestionDistance is the largest edit distance still offered as a
// "did you mean".
const maxSuggestionDistance = 3

// ClosestName returns the candidate nearest to unknown by Levenshtein
// distance, or "" when none is within maxSuggestionDistance.
func ClosestName(unknown string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, c := range candidates {
		if d := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(c)); d < bestDistance {
			bestDistance = d
			best = c
		}
	}
	return best
}

// SuggestName suggests a known name when an unknown one is referenced.
func SuggestName(unknown string, candidates []string) string {
	if match := ClosestName(unknown, candidates); match != "" {
		return fmt.Sprintf("Did you mean '%s'?", match)
	}
	return ""
}

// SuggestDataSource suggests a valid $source after a typo like $inptu.
func SuggestDataSource(unknown string, sources []string) string {
	if match := ClosestName(unknown, sources); match != "" {
		return fmt.Sprintf("Did you mean '$%s'?", match)
	}
	return "Valid data sources: $" + strings.Join(sources, ", $")
}

// levenshteinDistance computes the edit distance between two strings,
// counting runes.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	len1, len2 := len(r1), len(r2)

	prev := make([]int, len2+1)
	curr := make([]int, len2+1)
	for j := 0; j <= len2; j++ {
		prev[j] = j
	}

	for i := 1; i <= len1; i++ {
		curr[0] = i
		for j := 1; j <= len2; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // Deletion
				curr[j-1]+1,    // Insertion
				prev[j-1]+cost, // Substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len2]
}
