package domain

import "time"

type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "pending"
	ReviewProcessing ReviewStatus = "processing"
	ReviewCompleted  ReviewStatus = "completed"
	ReviewFailed     ReviewStatus = "failed"
)

// Review is a named batch of compliance questions processed asynchronously.
type Review struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    ReviewStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ReviewQuestion is one question of a review together with its resolved
// evidence, stored at the question's original position in the batch.
type ReviewQuestion struct {
	ReviewID      string      `json:"review_id"`
	Position      int         `json:"position"`
	QuestionID    string      `json:"question_id"`
	QuestionText  string      `json:"question_text"`
	PackedContext string      `json:"packed_context,omitempty"`
	HasEvidence   bool        `json:"has_evidence"`
	Tier          HarvestTier `json:"tier,omitempty"`
}
