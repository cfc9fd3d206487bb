package usecase

// EngineParams are the retrieval tunables. Zero values fall back to the
// defaults below, so a partially filled struct is safe to pass in.
type EngineParams struct {
	TopK             int
	NeighborRadius   int
	BaseScoreFactor  float64
	ContextBudget    int
	MaxBlocks        int
	MinChunks        int
	OverageFactor    float64
	OverageChunkMax  int
	SentWindow       int
	MaxSentChars     int
	PageFallbackMax  int
	Concurrency      int
	DedupPrefixChars int
}

func DefaultEngineParams() EngineParams {
	return EngineParams{
		TopK:             80,
		NeighborRadius:   3,
		BaseScoreFactor:  0.25,
		ContextBudget:    12000,
		MaxBlocks:        40,
		MinChunks:        5,
		OverageFactor:    1.1,
		OverageChunkMax:  10,
		SentWindow:       1,
		MaxSentChars:     600,
		PageFallbackMax:  20,
		Concurrency:      4,
		DedupPrefixChars: 48,
	}
}

func (p EngineParams) normalize() EngineParams {
	out := p
	def := DefaultEngineParams()

	if out.TopK <= 0 {
		out.TopK = def.TopK
	}
	if out.NeighborRadius < 0 {
		out.NeighborRadius = def.NeighborRadius
	}
	if out.BaseScoreFactor <= 0 {
		out.BaseScoreFactor = def.BaseScoreFactor
	}
	if out.ContextBudget <= 0 {
		out.ContextBudget = def.ContextBudget
	}
	if out.MaxBlocks <= 0 {
		out.MaxBlocks = def.MaxBlocks
	}
	if out.MinChunks <= 0 {
		out.MinChunks = def.MinChunks
	}
	if out.OverageFactor < 1 {
		out.OverageFactor = def.OverageFactor
	}
	if out.OverageChunkMax <= 0 {
		out.OverageChunkMax = def.OverageChunkMax
	}
	if out.SentWindow < 0 {
		out.SentWindow = def.SentWindow
	}
	if out.MaxSentChars <= 0 {
		out.MaxSentChars = def.MaxSentChars
	}
	if out.PageFallbackMax <= 0 {
		out.PageFallbackMax = def.PageFallbackMax
	}
	if out.Concurrency <= 0 {
		out.Concurrency = def.Concurrency
	}
	if out.DedupPrefixChars <= 0 {
		out.DedupPrefixChars = def.DedupPrefixChars
	}
	return out
}
