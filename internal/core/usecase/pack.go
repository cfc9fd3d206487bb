package usecase

import (
	"fmt"
	"strings"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// formatChunk renders one citation-tagged chunk for the downstream prompt.
func formatChunk(index int, documentID string, page int, text string) string {
	return fmt.Sprintf("[%d] %s p.%d: %q", index, documentID, page, text)
}

// packBlocks greedily selects ranked blocks into citation-tagged chunks.
// The budget may be exceeded by up to overageFactor while fewer than
// overageChunkMax chunks are packed, so early high-value evidence is not
// starved by budget rounding.
func packBlocks(blocks []domain.EvidenceBlock, p EngineParams) []string {
	if len(blocks) == 0 {
		return nil
	}

	chunks := make([]string, 0, p.MaxBlocks)
	total := 0
	for _, block := range blocks {
		if len(chunks) >= p.MaxBlocks {
			break
		}

		chunk := formatChunk(len(chunks)+1, block.DocumentID, block.Page, block.Text)
		if total+len(chunk) > p.ContextBudget {
			withinOverage := float64(total+len(chunk)) <= float64(p.ContextBudget)*p.OverageFactor
			if !withinOverage || len(chunks) >= p.OverageChunkMax {
				break
			}
		}

		chunks = append(chunks, chunk)
		total += len(chunk)
	}
	return chunks
}

func normalizePageText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// packWholePages is the coarse fallback when sentence-level harvesting finds
// nothing: up to pageFallbackMax candidate pages split the budget evenly,
// so the decision step always receives context when any page has text.
func packWholePages(pages []candidatePage, p EngineParams) []string {
	withText := make([]candidatePage, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			withText = append(withText, page)
		}
	}
	if len(withText) == 0 {
		return nil
	}
	if len(withText) > p.PageFallbackMax {
		withText = withText[:p.PageFallbackMax]
	}

	share := p.ContextBudget / len(withText)
	if share < 1 {
		share = 1
	}

	chunks := make([]string, 0, len(withText))
	for _, page := range withText {
		text := cutAtRuneBoundary(normalizePageText(page.Text), share)
		chunks = append(chunks, formatChunk(len(chunks)+1, page.DocumentID, page.Page, text))
	}
	return chunks
}
