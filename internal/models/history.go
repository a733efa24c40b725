package models

const (
	FeatureGrammar   = "grammar"
	FeatureTranslate = "translate"
	FeatureSummarize = "summarize"
	FeatureChat      = "chat"
)

type HistoryEntry struct {
	ID        int64  `json:"id"`
	Feature   string `json:"feature"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}
