package services

import (
	"context"
	"math"

	"studywai-backend/internal/metrics"
	"studywai-backend/internal/models"
	"studywai-backend/internal/repository"
)

type StudyService struct {
	cards   *repository.FlashcardRepo
	records *repository.StudyRepo
	metrics *metrics.Metrics
}

func NewStudyService(cards *repository.FlashcardRepo, records *repository.StudyRepo, m *metrics.Metrics) *StudyService {
	return &StudyService{cards: cards, records: records, metrics: m}
}

func (s *StudyService) RecordReview(ctx context.Context, flashcardID string, correct bool) (*models.StudyRecord, error) {
	if _, ok := s.cards.GetByID(ctx, flashcardID); !ok {
		return nil, &NotFoundError{Message: "Flashcard not found"}
	}
	rec, err := s.records.Create(ctx, flashcardID, correct)
	if err != nil {
		return nil, storageError(s.metrics, "review", err)
	}
	return rec, nil
}

// Stats ignores reviews of cards that have since been deleted.
func (s *StudyService) Stats(ctx context.Context) *models.StudyStats {
	cards := s.cards.List(ctx)
	live := make(map[string]bool, len(cards))
	for _, c := range cards {
		live[c.ID] = true
	}

	stats := &models.StudyStats{TotalCards: len(cards)}
	studied := map[string]bool{}
	for _, r := range s.records.List(ctx) {
		if !live[r.FlashcardID] {
			continue
		}
		studied[r.FlashcardID] = true
		stats.TotalReviews++
		if r.WasCorrect {
			stats.CorrectReviews++
		}
	}
	stats.StudiedCards = len(studied)
	if stats.TotalReviews > 0 {
		pct := float64(stats.CorrectReviews) / float64(stats.TotalReviews) * 100
		stats.Accuracy = math.Round(pct*10) / 10
	}
	return stats
}
