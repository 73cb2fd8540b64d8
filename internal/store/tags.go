package store

import (
	"fmt"
	"sort"
	"strings"
)

// TagCount is a tag and how many tasks carry it.
type TagCount struct {
	Name    string
	Tasks   int
	Pending int
}

// NormalizeTags turns user input like " Work, urgent,,work " into the stored
// form "work,urgent": lowercased, trimmed, deduplicated, in input order.
func NormalizeTags(raw string) string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// SplitTags returns the individual tags of a stored tag string.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}

// ListTags returns every tag in use, sorted by name.
func (s *Store) ListTags() ([]TagCount, error) {
	var rows []struct {
		Tags   string `db:"tags"`
		Status string `db:"status"`
	}
	if err := s.db.Select(&rows, `SELECT tags, status FROM tasks WHERE tags != ''`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	counts := make(map[string]*TagCount)
	for _, r := range rows {
		for _, name := range SplitTags(r.Tags) {
			tc, ok := counts[name]
			if !ok {
				tc = &TagCount{Name: name}
				counts[name] = tc
			}
			tc.Tasks++
			if r.Status == StatusPending {
				tc.Pending++
			}
		}
	}

	tags := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		tags = append(tags, *tc)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
