// Package search provides fuzzy filtering over cached lists and relevance
// ranking for server search results.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// titleSource implements sahilm/fuzzy.Source over lowercase titles
type titleSource []string

func (s titleSource) String(i int) string { return s[i] }
func (s titleSource) Len() int            { return len(s) }

// Filter returns the indexes of titles matching query, best match first.
// An empty query matches everything in original order.
func Filter(query string, titles []string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		idx := make([]int, len(titles))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	lower := make(titleSource, len(titles))
	for i, t := range titles {
		lower[i] = strings.ToLower(t)
	}

	matches := fuzzy.FindFrom(query, lower)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	return idx
}

// FilterBy filters items by the fuzzy match of query against title(item)
func FilterBy[T any](query string, items []T, title func(T) string) []T {
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = title(item)
	}
	idx := Filter(query, titles)
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
