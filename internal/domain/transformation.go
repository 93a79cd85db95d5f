package domain

import "time"

// TransformationStatus enumerates the lifecycle of a transformation request.
type TransformationStatus string

const (
	TransformationPending    TransformationStatus = "pending"
	TransformationProcessing TransformationStatus = "processing"
	TransformationCompleted  TransformationStatus = "completed"
	TransformationFailed     TransformationStatus = "failed"
)

// Transformation records one image + prompt submission to the provider and
// its outputs. Completed records are immutable apart from edit-count
// increments when the user requests follow-up edits of the same original.
type Transformation struct {
	ID                    string
	UserID                int64
	OriginalImagePath     string
	Prompt                string
	Status                TransformationStatus
	TransformedPath       string
	SecondTransformedPath string
	EditCount             int
	ErrorMessage          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
