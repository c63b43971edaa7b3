package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ProcessRequest is the upload payload for one score.
type ProcessRequest struct {
	ScoreID  string `json:"scoreId"`
	FileData string `json:"fileData"`
	FileType string `json:"fileType"`
	FileName string `json:"fileName,omitempty"`
}

// ScoreMetadata is the transport form of the extracted score attributes.
type ScoreMetadata struct {
	Title         string `json:"title"`
	Composer      string `json:"composer"`
	Instrument    string `json:"instrument"`
	Clef          string `json:"clef"`
	KeySignature  string `json:"keySignature"`
	TimeSignature string `json:"timeSignature"`
	MeasureCount  int    `json:"measureCount"`
	Tempo         int    `json:"tempo,omitempty"`
	Style         string `json:"style,omitempty"`
}

// MeasureGroup pairs one contiguous measure range with its preview image.
type MeasureGroup struct {
	StartMeasure int    `json:"startMeasure"`
	EndMeasure   int    `json:"endMeasure"`
	ImageData    string `json:"imageData"`
}

// ProcessResponse is the successful processing result. Degraded sessions use
// the same shape; the payload never distinguishes placeholder content.
type ProcessResponse struct {
	Success          bool           `json:"success"`
	ScoreID          string         `json:"scoreId"`
	SessionID        string         `json:"sessionId"`
	NotationDocument string         `json:"notationDocument"`
	Metadata         ScoreMetadata  `json:"metadata"`
	MeasureGroups    []MeasureGroup `json:"measureGroups"`
}

// ErrorResponse is the caller-visible failure payload.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ScoreID   string `json:"scoreId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// ServiceAvailability reports which external engines are reachable.
type ServiceAvailability struct {
	OMREngine    bool `json:"omrEngine"`
	RenderEngine bool `json:"renderEngine"`
}

// HealthResponse is the unauthenticated readiness payload.
type HealthResponse struct {
	Status              string              `json:"status"`
	Timestamp           string              `json:"timestamp"`
	ServiceAvailability ServiceAvailability `json:"serviceAvailability"`
}

// SessionSummary describes one ledger row in a transport-friendly format.
type SessionSummary struct {
	ID            string `json:"id"`
	ScoreID       string `json:"scoreId"`
	WorkspacePath string `json:"workspacePath"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	ReleaseAfter  string `json:"releaseAfter,omitempty"`
}

// SessionListResponse wraps a collection of session summaries.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}
