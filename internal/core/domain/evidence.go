package domain

// EmbeddingRecord is one precomputed page vector in the embedding index.
type EmbeddingRecord struct {
	DocumentID string    `json:"document_id"`
	Page       int       `json:"page"`
	Vector     []float32 `json:"vector"`
}

// EmbeddingIndex is the immutable, in-memory set of page vectors the
// ranker scans. It is loaded once per process and never mutated.
type EmbeddingIndex struct {
	ModelID   string            `json:"model_id"`
	Dimension int               `json:"dimension"`
	Records   []EmbeddingRecord `json:"records"`
}

// PageRow is the text of one page of one policy document.
type PageRow struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
}

// ScoredPage is a candidate page produced by neighborhood expansion,
// carrying the base score inherited from the originating neighbor hit.
type ScoredPage struct {
	DocumentID string
	Page       int
	BaseScore  float64
}

// EvidenceBlock is a windowed sentence excerpt from one page with a
// combined heuristic + base score.
type EvidenceBlock struct {
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// HarvestTier records which harvesting strategy produced the packed context.
type HarvestTier string

const (
	TierStrict  HarvestTier = "strict"
	TierLenient HarvestTier = "lenient"
	TierPage    HarvestTier = "page"
	TierNone    HarvestTier = "none"
)

type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// EvidenceResult is the per-question output of the retrieval engine:
// the packed, citation-tagged context handed to the decision step.
type EvidenceResult struct {
	QuestionID    string      `json:"question_id"`
	PackedContext string      `json:"packed_context"`
	Chunks        []string    `json:"chunks,omitempty"`
	HasEvidence   bool        `json:"has_evidence"`
	Tier          HarvestTier `json:"tier"`
}
