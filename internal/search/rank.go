package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Score rates how well title matches query. Lower is better.
func Score(query, title string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	title = strings.ToLower(title)

	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case fuzzy.MatchFold(query, title):
		return 75
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}

// RankBy orders items by relevance of query to any of their keys. The sort
// is stable so equally scored items keep the server's order.
func RankBy[T any](query string, items []T, keys func(T) []string) []T {
	type ranked struct {
		item  T
		score int
	}

	out := make([]ranked, len(items))
	for i, item := range items {
		best := -1
		for _, k := range keys(item) {
			if k == "" {
				continue
			}
			if s := Score(query, k); best < 0 || s < best {
				best = s
			}
		}
		if best < 0 {
			best = 1 << 20
		}
		out[i] = ranked{item: item, score: best}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score < out[j].score
	})

	result := make([]T, len(out))
	for i, r := range out {
		result[i] = r.item
	}
	return result
}
