package repository

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"studywai-backend/internal/models"
)

const (
	DefaultHistoryFieldLen = 500
	DefaultHistoryLimit    = 10
)

// HistoryRepo is an append-only log of AI tool invocations.
type HistoryRepo struct {
	store  RecordStore
	maxLen int
}

func NewHistoryRepo(store RecordStore, maxLen int) *HistoryRepo {
	if maxLen <= 0 {
		maxLen = DefaultHistoryFieldLen
	}
	return &HistoryRepo{store: store, maxLen: maxLen}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func (r *HistoryRepo) Append(ctx context.Context, feature, query, response string) (*models.HistoryEntry, error) {
	if feature == "" {
		return nil, errors.New("history: empty feature")
	}
	fields := Record{
		"feature":  feature,
		"query":    truncate(query, r.maxLen),
		"response": truncate(response, r.maxLen),
	}
	id, err := r.store.Upsert(ctx, HistoryCollection, fields, "")
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	if saved, ok := r.store.Get(ctx, HistoryCollection, id); ok {
		fields = saved
	}
	return historyFromRecord(fields), nil
}

// Recent returns up to limit entries, newest first, optionally filtered by feature.
func (r *HistoryRepo) Recent(ctx context.Context, feature string, limit int) []*models.HistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var entries []*models.HistoryEntry
	for _, rec := range r.store.ListAll(ctx, HistoryCollection) {
		if feature != "" && rec["feature"] != feature {
			continue
		}
		entries = append(entries, historyFromRecord(rec))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	return entries
}

func historyFromRecord(rec Record) *models.HistoryEntry {
	id, _ := strconv.ParseInt(rec["id"], 10, 64)
	return &models.HistoryEntry{
		ID:        id,
		Feature:   rec["feature"],
		Query:     rec["query"],
		Response:  rec["response"],
		CreatedAt: rec["created_at"],
	}
}
