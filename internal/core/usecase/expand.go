package usecase

import (
	"fmt"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// expandNeighborhood turns top-K hits into a deduplicated candidate page set
// by widening each hit to ±radius adjacent pages. Pages below 1 are dropped.
// Each candidate inherits baseScoreFactor × the originating similarity; when
// several expansions reach the same page the first-seen score is kept.
func expandNeighborhood(hits []neighborHit, radius int, baseScoreFactor float64) []domain.ScoredPage {
	if len(hits) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(hits)*(2*radius+1))
	out := make([]domain.ScoredPage, 0, len(hits)*(2*radius+1))

	for _, hit := range hits {
		for offset := -radius; offset <= radius; offset++ {
			page := hit.record.Page + offset
			if page < 1 {
				continue
			}
			key := fmt.Sprintf("%s:%d", hit.record.DocumentID, page)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, domain.ScoredPage{
				DocumentID: hit.record.DocumentID,
				Page:       page,
				BaseScore:  baseScoreFactor * hit.similarity,
			})
		}
	}
	return out
}
