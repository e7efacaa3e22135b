package types

// Segment is one timed piece of a speech-to-text response.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscribeRequest is the body of POST /api/transcribe.
type TranscribeRequest struct {
	URL string `json:"url"`
}

type TranscribeResponse struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// PostRecord is one row of a batch input sheet.
type PostRecord struct {
	Row int    `json:"row"`
	URL string `json:"url"`
}

// PostResult is one row of a batch output sheet.
type PostResult struct {
	PostRecord
	Status     string `json:"status"`
	Transcript string `json:"transcript,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
