package models

type Flashcard struct {
	ID            string `json:"id"`
	Word          string `json:"word"`
	Language      string `json:"language"`
	Translations  string `json:"translations"`  // comma-separated
	Pronunciation string `json:"pronunciation"`
	Examples      string `json:"examples"` // delimiter-separated, see EXAMPLES_DELIMITER
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// CreateFlashcardRequest leaves AI-filled fields empty to have them generated.
type CreateFlashcardRequest struct {
	Word          string `json:"word"`
	Language      string `json:"language"`
	Translations  string `json:"translations"`
	Pronunciation string `json:"pronunciation"`
	Examples      string `json:"examples"`
}

type UpdateFlashcardRequest struct {
	Word          string `json:"word"`
	Language      string `json:"language"`
	Translations  string `json:"translations"`
	Pronunciation string `json:"pronunciation"`
	Examples      string `json:"examples"`
}
