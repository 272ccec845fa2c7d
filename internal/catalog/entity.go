package catalog

import "strings"

// Kind tags the entity variant.
type Kind string

const (
	KindTeam   Kind = "team"
	KindLeague Kind = "league"
)

// Entity is implemented by Team and League.
type Entity interface {
	Kind() Kind
	ID() string
	// Canonical returns the display name files are renamed to, or "" when
	// the entity carries no usable name.
	Canonical() string
	// Variants returns every name the entity may be known by.
	Variants() []string
}

// TeamNames holds the name variants the catalog publishes for a team.
type TeamNames struct {
	Short    string `json:"short"`
	Medium   string `json:"medium"`
	Long     string `json:"long"`
	Location string `json:"location"`
}

// Team is a catalog team record.
type Team struct {
	TeamID   string    `json:"teamID"`
	LeagueID string    `json:"leagueID"`
	SportID  string    `json:"sportID"`
	Names    TeamNames `json:"names"`
}

// League is a catalog league record.
type League struct {
	LeagueID  string `json:"leagueID"`
	SportID   string `json:"sportID"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

var (
	_ Entity = Team{}
	_ Entity = League{}
)

func (Team) Kind() Kind { return KindTeam }

func (t Team) ID() string { return t.TeamID }

// Canonical prefers the long name, then medium, then short.
func (t Team) Canonical() string {
	return firstNonEmpty(t.Names.Long, t.Names.Medium, t.Names.Short)
}

// Variants lists medium, long, short, and the "location medium" composite.
func (t Team) Variants() []string {
	out := make([]string, 0, 4)
	for _, v := range []string{t.Names.Medium, t.Names.Long, t.Names.Short} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	loc := strings.TrimSpace(t.Names.Location)
	medium := strings.TrimSpace(t.Names.Medium)
	if loc != "" && medium != "" {
		out = append(out, loc+" "+medium)
	}
	return out
}

func (League) Kind() Kind { return KindLeague }

func (l League) ID() string { return l.LeagueID }

func (l League) Canonical() string { return strings.TrimSpace(l.Name) }

// Variants lists the name, short name, and identifier.
func (l League) Variants() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{l.Name, l.ShortName, l.LeagueID} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Entities flattens teams and leagues into one list, teams first.
func Entities(teams []Team, leagues []League) []Entity {
	out := make([]Entity, 0, len(teams)+len(leagues))
	for _, t := range teams {
		out = append(out, t)
	}
	for _, l := range leagues {
		out = append(out, l)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
