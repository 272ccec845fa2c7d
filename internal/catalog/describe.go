package catalog

// Descriptor is the simplified entity shape sent to the AI matcher.
type Descriptor struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	FullName  string `json:"full_name,omitempty"`
	League    string `json:"league,omitempty"`
	ShortName string `json:"short_name,omitempty"`
}

// Describe projects teams then leagues into descriptors, stopping at max.
// Entities without a canonical name are skipped.
func Describe(teams []Team, leagues []League, max int) []Descriptor {
	if max <= 0 {
		return nil
	}
	out := make([]Descriptor, 0, min(max, len(teams)+len(leagues)))
	for _, t := range teams {
		if len(out) >= max {
			return out
		}
		if t.Canonical() == "" {
			continue
		}
		out = append(out, Descriptor{
			Type:     "Team",
			Name:     firstNonEmpty(t.Names.Medium, t.Names.Short, t.Names.Long),
			FullName: t.Names.Long,
			League:   t.LeagueID,
		})
	}
	for _, l := range leagues {
		if len(out) >= max {
			return out
		}
		if l.Canonical() == "" {
			continue
		}
		out = append(out, Descriptor{
			Type:      "League",
			Name:      l.Name,
			ShortName: l.ShortName,
		})
	}
	return out
}
