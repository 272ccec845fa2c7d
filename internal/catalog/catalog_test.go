package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"logonorm/internal/catalog"
	"logonorm/internal/services"
)

func TestIndexLeagueWinsOverTeamOnSharedKey(t *testing.T) {
	teams := []catalog.Team{{TeamID: "LIONS_T", Names: catalog.TeamNames{Medium: "Lions"}}}
	leagues := []catalog.League{{LeagueID: "LIONS", Name: "Lions International League"}}

	idx := catalog.BuildIndex(teams, leagues)
	got, ok := idx.Lookup("lions")
	if !ok {
		t.Fatal("expected lions key")
	}
	if got != "Lions International League" {
		t.Fatalf("expected league canonical name, got %q", got)
	}
	m, _ := idx.Match("lions")
	if m.Kind != catalog.KindLeague || m.EntityID != "LIONS" {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestIndexPrecedenceIsConfigurable(t *testing.T) {
	entities := []catalog.Entity{
		catalog.Team{TeamID: "T", Names: catalog.TeamNames{Medium: "Lions"}},
		catalog.League{LeagueID: "LIONS", Name: "Lions League"},
	}
	idx := catalog.BuildIndexWithPrecedence(entities, []catalog.Kind{catalog.KindTeam, catalog.KindLeague})
	if got, _ := idx.Lookup("lions"); got != "Lions" {
		t.Fatalf("expected team to win with team-first precedence, got %q", got)
	}
}

func TestIndexLastWriteWinsWithinKind(t *testing.T) {
	teams := []catalog.Team{
		{TeamID: "A", Names: catalog.TeamNames{Medium: "Rangers", Long: "New York Rangers"}},
		{TeamID: "B", Names: catalog.TeamNames{Medium: "Rangers", Long: "Texas Rangers"}},
	}
	idx := catalog.BuildIndex(teams, nil)
	if got, _ := idx.Lookup("rangers"); got != "Texas Rangers" {
		t.Fatalf("expected later team to win, got %q", got)
	}
	if got, _ := idx.Lookup("new york rangers"); got != "New York Rangers" {
		t.Fatalf("expected long-name key to survive, got %q", got)
	}
}

func TestIndexTeamVariants(t *testing.T) {
	teams := []catalog.Team{{
		TeamID: "BOS",
		Names:  catalog.TeamNames{Short: "BOS", Medium: "Celtics", Long: "Boston Celtics", Location: "Boston"},
	}}
	idx := catalog.BuildIndex(teams, nil)
	for _, key := range []string{"bos", "celtics", "boston celtics"} {
		if got, ok := idx.Lookup(key); !ok || got != "Boston Celtics" {
			t.Fatalf("key %q: got %q ok=%v", key, got, ok)
		}
	}
	if idx.Len() != 3 {
		t.Fatalf("expected composite to collapse onto long-name key, got %d keys", idx.Len())
	}
}

func TestIndexSkipsNamelessEntities(t *testing.T) {
	teams := []catalog.Team{{TeamID: "X", Names: catalog.TeamNames{Location: "Nowhere"}}}
	leagues := []catalog.League{{LeagueID: "NOPE", ShortName: "np"}}
	if idx := catalog.BuildIndex(teams, leagues); idx.Len() != 0 {
		t.Fatalf("expected empty index, got %d keys", idx.Len())
	}
}

func TestIndexFallsBackToMediumThenShort(t *testing.T) {
	teams := []catalog.Team{
		{TeamID: "A", Names: catalog.TeamNames{Medium: "Sharks"}},
		{TeamID: "B", Names: catalog.TeamNames{Short: "ZZ"}},
	}
	idx := catalog.BuildIndex(teams, nil)
	if got, _ := idx.Lookup("sharks"); got != "Sharks" {
		t.Fatalf("expected medium canonical, got %q", got)
	}
	if got, _ := idx.Lookup("zz"); got != "ZZ" {
		t.Fatalf("expected short canonical, got %q", got)
	}
}

func TestIndexRegistersSanitizedAlias(t *testing.T) {
	leagues := []catalog.League{{LeagueID: "ACDC", Name: "AC/DC League"}}
	idx := catalog.BuildIndex(nil, leagues)
	if got, ok := idx.Lookup("acdc league"); !ok || got != "AC/DC League" {
		t.Fatalf("expected sanitized alias, got %q ok=%v", got, ok)
	}
}

func TestNBAEndToEndKey(t *testing.T) {
	leagues := []catalog.League{{LeagueID: "NBA", Name: "National Basketball Association"}}
	idx := catalog.BuildIndex(nil, leagues)
	if got, _ := idx.Lookup("nba"); got != "National Basketball Association" {
		t.Fatalf("unexpected canonical %q", got)
	}
}

func TestDescribeCapsAndShapes(t *testing.T) {
	teams := []catalog.Team{
		{TeamID: "A", LeagueID: "NHL", Names: catalog.TeamNames{Medium: "Bruins", Long: "Boston Bruins"}},
		{TeamID: "B", Names: catalog.TeamNames{}},
		{TeamID: "C", LeagueID: "NHL", Names: catalog.TeamNames{Medium: "Kings", Long: "Los Angeles Kings"}},
	}
	leagues := []catalog.League{{LeagueID: "NHL", Name: "National Hockey League", ShortName: "NHL"}}

	all := catalog.Describe(teams, leagues, 10)
	if len(all) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(all))
	}
	if all[0].Type != "Team" || all[0].Name != "Bruins" || all[0].FullName != "Boston Bruins" || all[0].League != "NHL" {
		t.Fatalf("unexpected team descriptor %+v", all[0])
	}
	if all[2].Type != "League" || all[2].ShortName != "NHL" {
		t.Fatalf("unexpected league descriptor %+v", all[2])
	}
	if capped := catalog.Describe(teams, leagues, 1); len(capped) != 1 {
		t.Fatalf("expected cap of 1, got %d", len(capped))
	}
}

func TestSearch(t *testing.T) {
	teams := []catalog.Team{
		{TeamID: "A", Names: catalog.TeamNames{Medium: "Bruins", Long: "Boston Bruins"}},
		{TeamID: "B", Names: catalog.TeamNames{Medium: "Celtics", Long: "Boston Celtics"}},
		{TeamID: "C", Names: catalog.TeamNames{Medium: "Kings", Long: "Los Angeles Kings"}},
	}
	hits := catalog.Search(teams, nil, "BOSTON")
	if len(hits) != 2 || hits[0].Canonical != "Boston Bruins" || hits[1].Canonical != "Boston Celtics" {
		t.Fatalf("unexpected hits %+v", hits)
	}
	if hits := catalog.Search(teams, nil, "  "); hits != nil {
		t.Fatalf("expected no hits for blank query, got %+v", hits)
	}
}

func TestClientPaginatesWithCursor(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("sportID") != "HOCKEY" {
			t.Errorf("unexpected sportID %q", r.URL.Query().Get("sportID"))
		}
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)
		var payload map[string]any
		switch cursor {
		case "":
			payload = map[string]any{"success": true, "data": []any{map[string]any{"teamID": "A", "names": map[string]any{"medium": "Bruins"}}}, "nextCursor": "p2"}
		case "p2":
			payload = map[string]any{"success": true, "data": []any{map[string]any{"teamID": "B", "names": map[string]any{"medium": "Kings"}}}}
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client, err := catalog.New("key", server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	teams, err := client.FetchTeams(context.Background(), "HOCKEY")
	if err != nil {
		t.Fatalf("FetchTeams: %v", err)
	}
	if len(teams) != 2 || teams[1].TeamID != "B" {
		t.Fatalf("unexpected teams %+v", teams)
	}
	if teams[0].SportID != "HOCKEY" {
		t.Fatalf("expected sport id to be filled, got %q", teams[0].SportID)
	}
	if len(cursors) != 2 || cursors[1] != "p2" {
		t.Fatalf("unexpected cursors %v", cursors)
	}
}

func TestClientStopsOnRepeatedCursor(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":       []any{map[string]any{"leagueID": "NHL", "name": "National Hockey League"}},
			"nextCursor": "same",
		})
	}))
	defer server.Close()

	client, _ := catalog.New("key", server.URL)
	leagues, err := client.FetchLeagues(context.Background(), "HOCKEY")
	if err != nil {
		t.Fatalf("FetchLeagues: %v", err)
	}
	if calls != 2 || len(leagues) != 2 {
		t.Fatalf("expected two pages before the repeated cursor stopped paging, calls=%d leagues=%d", calls, len(leagues))
	}
}

func TestClientReturnsPartialPagesOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data":       []any{map[string]any{"teamID": "A", "names": map[string]any{"medium": "Bruins"}}},
				"nextCursor": "p2",
			})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := catalog.New("key", server.URL)
	teams, err := client.FetchTeams(context.Background(), "HOCKEY")
	if services.KindOf(err) != services.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected first page to survive, got %d", len(teams))
	}
}

func TestClientMalformedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, _ := catalog.New("key", server.URL)
	_, err := client.FetchLeagues(context.Background(), "HOCKEY")
	if services.KindOf(err) != services.KindMalformed {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := catalog.New(" ", "https://example.test"); services.KindOf(err) != services.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
