package config

import "testing"

func TestLoadIncludesRetrievalDefaults(t *testing.T) {
	t.Setenv("TOP_K", "")
	t.Setenv("NEIGHBOR_RADIUS", "")
	t.Setenv("CONTEXT_BUDGET", "")
	t.Setenv("MIN_CHUNKS", "")
	t.Setenv("CONCURRENCY", "")

	cfg := Load()
	if cfg.TopK != 80 {
		t.Fatalf("expected default top-k 80, got %d", cfg.TopK)
	}
	if cfg.NeighborRadius != 3 {
		t.Fatalf("expected default neighbor radius 3, got %d", cfg.NeighborRadius)
	}
	if cfg.ContextBudget != 12000 {
		t.Fatalf("expected default context budget 12000, got %d", cfg.ContextBudget)
	}
	if cfg.MinChunks != 5 {
		t.Fatalf("expected default min chunks 5, got %d", cfg.MinChunks)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("expected default concurrency 4, got %d", cfg.Concurrency)
	}
}

func TestLoadParsesRetrievalOverrides(t *testing.T) {
	t.Setenv("TOP_K", "120")
	t.Setenv("BASE_SCORE_FACTOR", "0.5")
	t.Setenv("OVERAGE_FACTOR", "1.2")
	t.Setenv("CONCURRENCY", "8")

	cfg := Load()
	if cfg.TopK != 120 {
		t.Fatalf("expected top-k override, got %d", cfg.TopK)
	}
	if cfg.BaseScoreFactor != 0.5 {
		t.Fatalf("expected base score factor override, got %v", cfg.BaseScoreFactor)
	}
	if cfg.OverageFactor != 1.2 {
		t.Fatalf("expected overage factor override, got %v", cfg.OverageFactor)
	}
	if cfg.Concurrency != 8 {
		t.Fatalf("expected concurrency override, got %d", cfg.Concurrency)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("TOP_K", "not-a-number")
	t.Setenv("BASE_SCORE_FACTOR", "also-not")

	cfg := Load()
	if cfg.TopK != 80 {
		t.Fatalf("expected fallback top-k 80, got %d", cfg.TopK)
	}
	if cfg.BaseScoreFactor != 0.25 {
		t.Fatalf("expected fallback base score factor, got %v", cfg.BaseScoreFactor)
	}
}
