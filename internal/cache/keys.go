// internal/cache/keys.go
package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key separators. Every component is query-escaped, which never emits
// either separator, so a component cannot spill into its neighbour.
const (
	keySep  = "|"
	listSep = ","
)

func escape(component string) string {
	return url.QueryEscape(component)
}

func sortedIDs(ids []string) string {
	sorted := make([]string, len(ids))
	for i, id := range ids {
		sorted[i] = escape(id)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, listSep)
}

func normalizedTags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, escape(t))
	}
	sort.Strings(out)
	return strings.Join(out, listSep)
}

// RecommendationKey identifies a mood and/or tag-set request over a candidate set.
func RecommendationKey(mood string, tags, productIDs []string) string {
	return "mood:" + escape(strings.ToLower(strings.TrimSpace(mood))) +
		keySep + "tags:" + normalizedTags(tags) +
		keySep + sortedIDs(productIDs)
}

// RankingKey identifies a cafe ranking request.
func RankingKey(filterTag string, cafeIDs []string) string {
	return "rank:" + escape(strings.ToLower(strings.TrimSpace(filterTag))) + keySep + sortedIDs(cafeIDs)
}

// ReviewKey identifies a review summary for a subject and its review set.
func ReviewKey(subjectID string, reviewIDs []string) string {
	return ReviewPrefix(subjectID) + sortedIDs(reviewIDs)
}

// ReviewPrefix matches every review summary key of subjectID and nothing else.
func ReviewPrefix(subjectID string) string {
	return escape(subjectID) + keySep
}
