package models

type StudyRecord struct {
	ID          string `json:"id"`
	FlashcardID string `json:"flashcard_id"`
	WasCorrect  bool   `json:"was_correct"`
	StudiedAt   string `json:"studied_at"`
}

type ReviewRequest struct {
	Correct bool `json:"correct"`
}

type StudyStats struct {
	TotalCards     int     `json:"total_cards"`
	StudiedCards   int     `json:"studied_cards"`
	TotalReviews   int     `json:"total_reviews"`
	CorrectReviews int     `json:"correct_reviews"`
	Accuracy       float64 `json:"accuracy"` // percent
}
