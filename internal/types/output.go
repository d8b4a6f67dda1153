package types

// GeneratedOutput holds the two drafted artifacts for one decline.
type GeneratedOutput struct {
	InternalRationale string `json:"internal_rationale"`
	ExternalReply     string `json:"external_reply"`
	GenerationTimeMS  int64  `json:"generation_time_ms"`
}

// UploadResult describes an extracted document.
type UploadResult struct {
	ProposalHash     string `json:"proposal_hash"`
	TextContent      string `json:"text_content"`
	Filename         string `json:"filename"`
	Size             int    `json:"size"`
	WordCount        int    `json:"word_count"`
	ExtractionTimeMS int64  `json:"extraction_time_ms"`
	SessionID        string `json:"session_id"`
}

// AnalyzeResult is the response to an analysis request.
type AnalyzeResult struct {
	Summary              ProposalSummary `json:"summary"`
	AnalysisTimeMS       int64           `json:"analysis_time_ms"`
	ExtractedTextPreview string          `json:"extracted_text_preview,omitempty"`
}
