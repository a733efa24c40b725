package models

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"` // "" or "auto" detects
	TargetLang string `json:"target_lang"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Degraded       bool   `json:"degraded"`
}

type GrammarRequest struct {
	Text string `json:"text"`
}

type GrammarResponse struct {
	CorrectedText string `json:"corrected_text"`
	Errors        string `json:"errors"`
	Degraded      bool   `json:"degraded"`
}

type SummarizeRequest struct {
	Text   string `json:"text"`
	Length string `json:"length"` // short | medium | long
	Style  string `json:"style"`  // informative | academic | simplified
}

type SummaryResponse struct {
	Summary  string `json:"summary"`
	Length   string `json:"length"`
	Style    string `json:"style"`
	Degraded bool   `json:"degraded"`
}

type ExtractURLRequest struct {
	URL string `json:"url"`
}

type Article struct {
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	SiteName string `json:"site_name"`
	Content  string `json:"content"`
	URL      string `json:"url"`
}
