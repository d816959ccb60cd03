package catalog

import (
	"slices"
	"sort"
	"strings"
)

const (
	// DefaultThreshold is the minimum similarity for a fuzzy name match.
	DefaultThreshold = 0.6

	containsScore    = 0.8
	containsMinScore = 0.9
)

// Similarity scores two strings in [0,1], ignoring case. Equal strings score
// 1 and a substring relation scores 0.8; otherwise the score is one minus the
// Levenshtein distance over the longer length.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containsScore
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(max(len(ra), len(rb)))
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// SearchByName returns games whose name is similar to query by at least
// threshold, or contains it, best first. A blank query matches everything.
func (c *Catalog) SearchByName(query string, threshold float64) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.all()
	}
	lower := strings.ToLower(query)
	var results []Result
	for _, g := range c.games {
		score := Similarity(query, g.Name)
		contains := strings.Contains(strings.ToLower(g.Name), lower)
		if contains {
			score = max(score, containsMinScore)
		}
		if score >= threshold || contains {
			results = append(results, Result{Game: g, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// SearchByTags returns games carrying any of tags, or all of them when
// matchAll is set. No tags matches everything.
func (c *Catalog) SearchByTags(tags []string, matchAll bool) []Result {
	want := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return c.all()
	}
	var results []Result
	for _, g := range c.games {
		if matchTags(g.Tags, want, matchAll) {
			results = append(results, Result{Game: g, Score: 1})
		}
	}
	return results
}

func matchTags(have, want []string, all bool) bool {
	for _, t := range want {
		found := slices.Contains(have, t)
		if all && !found {
			return false
		}
		if !all && found {
			return true
		}
	}
	return all
}

// SearchOptions tunes Search.
type SearchOptions struct {
	Threshold float64
	MatchAll  bool
}

// Search combines name and tag search. When both a query and tags are
// given, only games matching both are returned, in tag-result order.
func (c *Catalog) Search(query string, tags []string, opts SearchOptions) []Result {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	hasQuery := strings.TrimSpace(query) != ""
	hasTags := len(tags) > 0

	switch {
	case hasQuery && hasTags:
		byName := c.SearchByName(query, opts.Threshold)
		scores := make(map[string]float64, len(byName))
		for _, r := range byName {
			scores[r.ID] = r.Score
		}
		var out []Result
		for _, r := range c.SearchByTags(tags, opts.MatchAll) {
			if score, ok := scores[r.ID]; ok {
				r.Score = score
				out = append(out, r)
			}
		}
		return out
	case hasQuery:
		return c.SearchByName(query, opts.Threshold)
	case hasTags:
		return c.SearchByTags(tags, opts.MatchAll)
	}
	return c.all()
}

// Suggestion is a type-ahead entry: a game name or a tag.
type Suggestion struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Count int    `json:"count,omitempty"`
}

// Suggestions returns up to limit game names and then tags containing query.
// Queries shorter than two characters yield nothing.
func (c *Catalog) Suggestions(query string, limit int) []Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < 2 || limit <= 0 {
		return nil
	}
	var out []Suggestion
	for _, g := range c.games {
		if strings.Contains(strings.ToLower(g.Name), query) {
			out = append(out, Suggestion{Type: "game", Value: g.Name})
		}
	}
	for _, t := range c.Tags() {
		if strings.Contains(t, query) {
			out = append(out, Suggestion{Type: "tag", Value: t, Count: len(c.SearchByTags([]string{t}, false))})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *Catalog) all() []Result {
	out := make([]Result, len(c.games))
	for i, g := range c.games {
		out[i] = Result{Game: g, Score: 1}
	}
	return out
}
