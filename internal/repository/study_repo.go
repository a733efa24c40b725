package repository

import (
	"context"
	"strconv"

	"studywai-backend/internal/models"
)

type StudyRepo struct {
	store RecordStore
}

func NewStudyRepo(store RecordStore) *StudyRepo {
	return &StudyRepo{store: store}
}

func (r *StudyRepo) Create(ctx context.Context, flashcardID string, correct bool) (*models.StudyRecord, error) {
	fields := Record{
		"flashcard_id": flashcardID,
		"was_correct":  strconv.FormatBool(correct),
	}
	id, err := r.store.Upsert(ctx, StudyRecordsCollection, fields, "")
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	if saved, ok := r.store.Get(ctx, StudyRecordsCollection, id); ok {
		fields = saved
	}
	return studyRecordFromRecord(fields), nil
}

func (r *StudyRepo) List(ctx context.Context) []*models.StudyRecord {
	recs := r.store.ListAll(ctx, StudyRecordsCollection)
	out := make([]*models.StudyRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, studyRecordFromRecord(rec))
	}
	return out
}

func studyRecordFromRecord(rec Record) *models.StudyRecord {
	correct, _ := strconv.ParseBool(rec["was_correct"])
	return &models.StudyRecord{
		ID:          rec["id"],
		FlashcardID: rec["flashcard_id"],
		WasCorrect:  correct,
		StudiedAt:   rec["studied_at"],
	}
}
