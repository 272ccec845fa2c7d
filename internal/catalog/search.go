package catalog

import (
	"sort"
	"strings"
)

// Hit is a search result.
type Hit struct {
	Kind      Kind
	EntityID  string
	Canonical string
	Matched   string
}

// Search returns entities with a name variant containing query,
// case-insensitively, ordered by canonical name.
func Search(teams []Team, leagues []League, query string) []Hit {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var hits []Hit
	for _, e := range Entities(teams, leagues) {
		if e.Canonical() == "" {
			continue
		}
		for _, v := range e.Variants() {
			if strings.Contains(strings.ToLower(v), needle) {
				hits = append(hits, Hit{Kind: e.Kind(), EntityID: e.ID(), Canonical: e.Canonical(), Matched: v})
				break
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return strings.ToLower(hits[i].Canonical) < strings.ToLower(hits[j].Canonical)
	})
	return hits
}
