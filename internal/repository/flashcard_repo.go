package repository

import (
	"context"

	"studywai-backend/internal/models"
)

type FlashcardRepo struct {
	store RecordStore
}

func NewFlashcardRepo(store RecordStore) *FlashcardRepo {
	return &FlashcardRepo{store: store}
}

func flashcardFromRecord(rec Record) *models.Flashcard {
	return &models.Flashcard{
		ID:            rec["id"],
		Word:          rec["word"],
		Language:      rec["language"],
		Translations:  rec["translations"],
		Pronunciation: rec["pronunciation"],
		Examples:      rec["examples"],
		CreatedAt:     rec["created_at"],
		UpdatedAt:     rec["updated_at"],
	}
}

func flashcardFields(f *models.Flashcard) Record {
	return Record{
		"word":          f.Word,
		"language":      f.Language,
		"translations":  f.Translations,
		"pronunciation": f.Pronunciation,
		"examples":      f.Examples,
	}
}

func (r *FlashcardRepo) List(ctx context.Context) []*models.Flashcard {
	recs := r.store.ListAll(ctx, FlashcardsCollection)
	cards := make([]*models.Flashcard, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, flashcardFromRecord(rec))
	}
	return cards
}

func (r *FlashcardRepo) GetByID(ctx context.Context, id string) (*models.Flashcard, bool) {
	rec, ok := r.store.Get(ctx, FlashcardsCollection, id)
	if !ok {
		return nil, false
	}
	return flashcardFromRecord(rec), true
}

// Create inserts f and fills in the assigned id and timestamps.
func (r *FlashcardRepo) Create(ctx context.Context, f *models.Flashcard) error {
	id, err := r.store.Upsert(ctx, FlashcardsCollection, flashcardFields(f), "")
	if err != nil {
		return err
	}
	f.ID = id
	if saved, ok := r.GetByID(ctx, id); ok {
		f.CreatedAt, f.UpdatedAt = saved.CreatedAt, saved.UpdatedAt
	}
	return nil
}

// Update rewrites an existing card. It reports false when the id is unknown.
func (r *FlashcardRepo) Update(ctx context.Context, f *models.Flashcard) (bool, error) {
	ok, err := r.store.Replace(ctx, FlashcardsCollection, f.ID, flashcardFields(f))
	if err != nil || !ok {
		return ok, err
	}
	if saved, found := r.GetByID(ctx, f.ID); found {
		*f = *saved
	}
	return true, nil
}

func (r *FlashcardRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, FlashcardsCollection, id)
}
