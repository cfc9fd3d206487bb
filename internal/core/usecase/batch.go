package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// RetrieveBatch resolves a batch of questions under a bounded worker pool.
// Workers claim question indices from a shared counter and write results
// into a pre-sized slice at the question's own index, so output order always
// matches input order regardless of completion timing.
func (uc *RetrieveUseCase) RetrieveBatch(ctx context.Context, questions []domain.Question) []domain.EvidenceResult {
	results := make([]domain.EvidenceResult, len(questions))
	if len(questions) == 0 {
		return results
	}

	workers := uc.params.Concurrency
	if workers > len(questions) {
		workers = len(questions)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(questions) {
					return
				}
				if ctx.Err() != nil {
					results[i] = domain.EvidenceResult{
						QuestionID: questions[i].ID,
						Tier:       domain.TierNone,
					}
					continue
				}
				results[i] = uc.Retrieve(ctx, questions[i])
			}
		}()
	}
	wg.Wait()

	return results
}
