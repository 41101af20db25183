// internal/flavor/match.go
package flavor

import (
	"fmt"
	"strings"
)

// Tagged is anything that carries flavor tags.
type Tagged interface {
	TagSet() []string
}

func tagSet(item Tagged) map[string]struct{} {
	tags := item.TagSet()
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[normalize(t)] = struct{}{}
	}
	return set
}

// FilterByTags keeps items that carry any of tags.
func FilterByTags[T Tagged](items []T, tags []string) []T {
	out := make([]T, 0, len(items))
	if len(tags) == 0 {
		return out
	}
	for _, item := range items {
		set := tagSet(item)
		for _, t := range tags {
			if _, ok := set[normalize(t)]; ok {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// PerfectMatches keeps items that carry all of tags. Fewer than two tags
// yields nothing.
func PerfectMatches[T Tagged](items []T, tags []string) []T {
	out := make([]T, 0)
	if len(tags) < 2 {
		return out
	}
	for _, item := range items {
		set := tagSet(item)
		all := true
		for _, t := range tags {
			if _, ok := set[normalize(t)]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, item)
		}
	}
	return out
}

// NarrativeFor describes a combination of at least two known tags. Unknown
// tags are skipped.
func NarrativeFor(tags []string) string {
	known := make([]Tag, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, id := range tags {
		t, ok := Lookup(id)
		if !ok || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		known = append(known, t)
	}
	if len(known) < 2 {
		return ""
	}

	names := make([]string, len(known))
	descriptors := make([]string, len(known))
	for i, t := range known {
		names[i] = t.Name
		descriptors[i] = t.Descriptor
	}

	return fmt.Sprintf("A %s blend: %s notes in every sip.",
		joinList(names, "and"), joinList(descriptors, "and"))
}

func joinList(parts []string, conj string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " " + conj + " " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " " + conj + " " + parts[len(parts)-1]
	}
}
