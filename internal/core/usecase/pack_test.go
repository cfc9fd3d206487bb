package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

func packTestBlocks(n int, textLen int) []domain.EvidenceBlock {
	blocks := make([]domain.EvidenceBlock, 0, n)
	for i := 0; i < n; i++ {
		blocks = append(blocks, domain.EvidenceBlock{
			DocumentID: "plan.pdf",
			Page:       i + 1,
			Text:       strings.Repeat("x", textLen),
			Score:      float64(n - i),
		})
	}
	return blocks
}

func TestPackBlocksRespectsBudgetWithOverage(t *testing.T) {
	p := DefaultEngineParams()
	p.ContextBudget = 300
	p.MaxBlocks = 40
	p.OverageFactor = 1.1
	p.OverageChunkMax = 10

	chunks := packBlocks(packTestBlocks(50, 60), p)
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if float64(total) > float64(p.ContextBudget)*p.OverageFactor {
		t.Fatalf("packed %d chars, exceeds budget*overage %v", total, float64(p.ContextBudget)*p.OverageFactor)
	}
	if len(chunks) == 0 {
		t.Fatalf("expected at least one packed chunk")
	}
}

func TestPackBlocksOverageOnlyForEarlyChunks(t *testing.T) {
	p := DefaultEngineParams()
	p.ContextBudget = 100
	p.OverageFactor = 1.1
	p.OverageChunkMax = 2

	// Each chunk is ~52 chars; the second fits only via overage, the third
	// would need overage past the budget ceiling.
	chunks := packBlocks(packTestBlocks(5, 30), p)
	if len(chunks) > p.OverageChunkMax {
		t.Fatalf("overage admitted %d chunks, limit is %d", len(chunks), p.OverageChunkMax)
	}
}

func TestPackBlocksHonorsMaxBlocks(t *testing.T) {
	p := DefaultEngineParams()
	p.ContextBudget = 1 << 20
	p.MaxBlocks = 3

	chunks := packBlocks(packTestBlocks(10, 20), p)
	if len(chunks) != 3 {
		t.Fatalf("expected maxBlocks=3 chunks, got %d", len(chunks))
	}
}

func TestPackBlocksChunkFormat(t *testing.T) {
	p := DefaultEngineParams()
	chunks := packBlocks([]domain.EvidenceBlock{
		{DocumentID: "plan.pdf", Page: 12, Text: "The Plan shall pay.", Score: 1},
	}, p)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], `[1] plan.pdf p.12: "The Plan shall pay."`) {
		t.Fatalf("unexpected chunk format: %q", chunks[0])
	}
}

func TestPackWholePagesSplitsBudgetEvenly(t *testing.T) {
	p := DefaultEngineParams()
	p.ContextBudget = 200
	p.PageFallbackMax = 2

	pages := []candidatePage{
		{ScoredPage: domain.ScoredPage{DocumentID: "a.pdf", Page: 1}, Text: strings.Repeat("alpha beta ", 50)},
		{ScoredPage: domain.ScoredPage{DocumentID: "a.pdf", Page: 2}, Text: strings.Repeat("gamma delta ", 50)},
		{ScoredPage: domain.ScoredPage{DocumentID: "a.pdf", Page: 3}, Text: "never reached, beyond the fallback cap"},
	}

	chunks := packWholePages(pages, p)
	if len(chunks) != 2 {
		t.Fatalf("expected fallback cap of 2 pages, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if !strings.Contains(c, "a.pdf") {
			t.Fatalf("missing citation in %q", c)
		}
	}
}

func TestPackWholePagesSkipsBlankPages(t *testing.T) {
	p := DefaultEngineParams()
	pages := []candidatePage{
		{ScoredPage: domain.ScoredPage{DocumentID: "a.pdf", Page: 1}, Text: "   "},
	}
	if chunks := packWholePages(pages, p); chunks != nil {
		t.Fatalf("expected nil for blank-only pages, got %v", chunks)
	}
}

func TestPackWholePagesKeepsValidUTF8(t *testing.T) {
	p := DefaultEngineParams()
	p.PageFallbackMax = 1

	page := candidatePage{
		ScoredPage: domain.ScoredPage{DocumentID: "plan.pdf", Page: 1},
		Text:       strings.Repeat("coverage — ", 40),
	}

	// Sweep budgets so the per-page share lands on every byte offset of the
	// three-byte dash at least once. A split rune would surface as a \x
	// escape once the quoted citation is rendered.
	for budget := 40; budget <= 60; budget++ {
		p.ContextBudget = budget
		chunks := packWholePages([]candidatePage{page}, p)
		if len(chunks) != 1 {
			t.Fatalf("budget %d: expected one chunk, got %d", budget, len(chunks))
		}
		if !utf8.ValidString(chunks[0]) || strings.Contains(chunks[0], `\x`) {
			t.Fatalf("budget %d: page truncation split a rune: %q", budget, chunks[0])
		}
	}
}

func TestNormalizePageTextCollapsesWhitespace(t *testing.T) {
	got := normalizePageText("a \n\n b\t\tc")
	if got != "a b c" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}
