package gamefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListWeekGames_MapsRows(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/seasons/2025/weeks/6/games" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"g1","home_team":"Ironclads","away_team":"Monarchs","spread":-3.5,"home_score":27,"away_score":20,"status":"final"},
			{"id":"","home_team":"ignored","away_team":"ignored","status":"scheduled"},
			{"id":"g2","home_team":"Voyagers","away_team":"Sentinels","status":"scheduled"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "feed-token"})

	updates, err := client.ListWeekGames(context.Background(), 2025, 6)
	if err != nil {
		t.Fatalf("list week games: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}

	first := updates[0]
	if first.GameID != "g1" || first.Season != 2025 || first.Week != 6 {
		t.Fatalf("unexpected first update: %+v", first)
	}
	if first.Spread == nil || *first.Spread != -3.5 {
		t.Fatalf("unexpected spread: %v", first.Spread)
	}
	if first.HomeScore == nil || *first.HomeScore != 27 || first.AwayScore == nil || *first.AwayScore != 20 {
		t.Fatalf("unexpected scores: %+v", first)
	}
	if first.Status != "final" {
		t.Fatalf("unexpected status: %s", first.Status)
	}

	second := updates[1]
	if second.GameID != "g2" || second.Spread != nil || second.HomeScore != nil {
		t.Fatalf("unexpected second update: %+v", second)
	}
}

func TestListWeekGames_NonRetryableStatusFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown week"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, MaxRetries: 3})

	if _, err := client.ListWeekGames(context.Background(), 2025, 99); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}

func TestListWeekGames_RejectsInvalidPeriod(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0"})
	if _, err := client.ListWeekGames(context.Background(), 0, 1); err == nil {
		t.Fatalf("expected error for zero season")
	}
}
