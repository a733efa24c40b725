package repository

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func newHistoryRepo(t *testing.T, maxLen int) *HistoryRepo {
	t.Helper()
	s := newTestCSVStore(t, WithClock(stepClock()))
	if err := InitCollections(context.Background(), s); err != nil {
		t.Fatalf("InitCollections: %v", err)
	}
	return NewHistoryRepo(s, maxLen)
}

func TestHistoryRepo_AppendTruncates(t *testing.T) {
	repo := newHistoryRepo(t, 500)
	ctx := context.Background()

	entry, err := repo.Append(ctx, "grammar", strings.Repeat("a", 600), "ok")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(entry.Query) != 500 {
		t.Errorf("expected query truncated to 500, got %d", len(entry.Query))
	}
	if entry.ID != 1 || entry.CreatedAt == "" {
		t.Errorf("expected id 1 with timestamp, got %+v", entry)
	}

	stored := repo.Recent(ctx, "", 1)
	if len(stored) != 1 || len(stored[0].Query) != 500 {
		t.Errorf("expected stored query of 500 chars, got %+v", stored)
	}
}

func TestHistoryRepo_TruncateKeepsRunesWhole(t *testing.T) {
	repo := newHistoryRepo(t, 3)
	entry, err := repo.Append(context.Background(), "translate", "héllo", "日本語です")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.Query != "hél" || entry.Response != "日本語" {
		t.Errorf("unexpected truncation: %q / %q", entry.Query, entry.Response)
	}
	if !utf8.ValidString(entry.Response) {
		t.Error("truncation produced invalid UTF-8")
	}
}

func TestHistoryRepo_RejectsEmptyFeature(t *testing.T) {
	repo := newHistoryRepo(t, 0)
	if _, err := repo.Append(context.Background(), "", "q", "r"); err == nil {
		t.Error("expected error for empty feature")
	}
}

func TestHistoryRepo_Recent(t *testing.T) {
	repo := newHistoryRepo(t, 0)
	ctx := context.Background()
	features := []string{"grammar", "translate", "grammar", "chat", "grammar"}
	for _, f := range features {
		if _, err := repo.Append(ctx, f, "q", "r"); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tests := []struct {
		name    string
		feature string
		limit   int
		want    []int64
	}{
		{"all newest first", "", 3, []int64{5, 4, 3}},
		{"filtered", "grammar", 10, []int64{5, 3, 1}},
		{"filtered limit", "grammar", 2, []int64{5, 3}},
		{"default limit", "", 0, []int64{5, 4, 3, 2, 1}},
		{"unknown feature", "summarize", 5, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := repo.Recent(ctx, tc.feature, tc.limit)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d entries, got %d", len(tc.want), len(got))
			}
			for i, e := range got {
				if e.ID != tc.want[i] {
					t.Errorf("entry %d: expected id %d, got %d", i, tc.want[i], e.ID)
				}
			}
		})
	}
}

func TestHistoryRepo_RecentOrdersNumerically(t *testing.T) {
	repo := newHistoryRepo(t, 0)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		repo.Append(ctx, "chat", "q", "r")
	}
	got := repo.Recent(ctx, "", 1)
	if len(got) != 1 || got[0].ID != 12 {
		t.Errorf("expected id 12 first, got %+v", got)
	}
}
