package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"studywai-backend/internal/config"
	"studywai-backend/internal/models"
)

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(func() *config.Config { return cfg })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		StoreDriver:        config.DriverSQLite,
		DataDir:            dir,
		SQLitePath:         filepath.Join(dir, "studywai.db"),
		HistoryMaxFieldLen: 500,
		ExamplesDelimiter:  "|",
	}
}

func TestCards_AddListDelete(t *testing.T) {
	cfg := testConfig(t)

	out, err := run(t, cfg, "cards", "add", "gato", "--language", "spanish")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Flashcard 1 created") || !strings.Contains(out, "defaults") {
		t.Errorf("unexpected add output %q", out)
	}

	out, err = run(t, cfg, "cards", "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(cards) != 1 || cards[0].Word != "gato" || cards[0].Language != "spanish" {
		t.Errorf("unexpected cards %+v", cards)
	}

	if _, err := run(t, cfg, "cards", "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, cfg, "cards", "delete", "1"); err == nil {
		t.Error("expected error deleting a missing card")
	}

	out, _ = run(t, cfg, "cards", "list")
	if !strings.Contains(out, "No flashcards yet") {
		t.Errorf("expected empty listing, got %q", out)
	}
}

func TestCards_AddRequiresWord(t *testing.T) {
	if _, err := run(t, testConfig(t), "cards", "add"); err == nil {
		t.Error("expected argument error")
	}
}

func TestHistory_RejectsNonPositiveLimit(t *testing.T) {
	if _, err := run(t, testConfig(t), "history", "--limit", "0"); err == nil {
		t.Error("expected error for --limit 0")
	}
}

func TestHistory_Empty(t *testing.T) {
	out, err := run(t, testConfig(t), "history", "--feature", "chat")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No history yet") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestStats(t *testing.T) {
	cfg := testConfig(t)
	run(t, cfg, "cards", "add", "uno")

	out, err := run(t, cfg, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats models.StudyStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if stats.TotalCards != 1 || stats.TotalReviews != 0 || stats.Accuracy != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"ñandú ñandú ñandú", 8, "ñandú..."},
	}
	for _, tt := range tests {
		if got := truncateCell(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateCell(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
	}
}
