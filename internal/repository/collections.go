package repository

import (
	"context"
	"fmt"
)

const (
	FlashcardsCollection   = "flashcards"
	HistoryCollection      = "history"
	StudyRecordsCollection = "study_records"
)

var FlashcardsSchema = Schema{
	Name:          FlashcardsCollection,
	Columns:       []string{"id", "word", "language", "translations", "pronunciation", "examples", "created_at", "updated_at"},
	Keys:          IntKeys,
	CreatedColumn: "created_at",
	UpdatedColumn: "updated_at",
}

var HistorySchema = Schema{
	Name:          HistoryCollection,
	Columns:       []string{"id", "feature", "query", "response", "created_at"},
	Keys:          IntKeys,
	CreatedColumn: "created_at",
}

var StudyRecordsSchema = Schema{
	Name:          StudyRecordsCollection,
	Columns:       []string{"id", "flashcard_id", "was_correct", "studied_at"},
	Keys:          UUIDKeys,
	CreatedColumn: "studied_at",
}

// InitCollections prepares every collection the application uses.
func InitCollections(ctx context.Context, store RecordStore) error {
	for _, schema := range []Schema{FlashcardsSchema, HistorySchema, StudyRecordsSchema} {
		if err := store.Init(ctx, schema); err != nil {
			return fmt.Errorf("init %s: %w", schema.Name, err)
		}
	}
	return nil
}
