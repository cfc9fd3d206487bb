package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

const validSnapshot = `{
	"model_id": "embed-001",
	"dimension": 2,
	"records": [
		{"document_id": "plan.pdf", "page": 1, "vector": [0.1, 0.2]},
		{"document_id": "plan.pdf", "page": 2, "vector": [0.3, 0.4]}
	]
}`

func TestLoadParsesValidSnapshot(t *testing.T) {
	loader := New(writeSnapshot(t, validSnapshot))
	index, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if index.ModelID != "embed-001" || index.Dimension != 2 || len(index.Records) != 2 {
		t.Fatalf("unexpected index: %+v", index)
	}
}

func TestLoadCachesResult(t *testing.T) {
	path := writeSnapshot(t, validSnapshot)
	loader := New(path)
	first, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Removing the file must not matter: the handle is cached.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove snapshot: %v", err)
	}
	second, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if first != second {
		t.Fatalf("expected cached index handle")
	}
}

func TestLoadConcurrentFirstUseLoadsOnce(t *testing.T) {
	loader := New(writeSnapshot(t, validSnapshot))

	var wg sync.WaitGroup
	results := make([]*domain.EmbeddingIndex, 8)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			index, err := loader.Load(context.Background())
			if err != nil {
				t.Errorf("Load() error = %v", err)
				return
			}
			results[i] = index
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d received a different index handle", i)
		}
	}
}

func TestLoadMissingFileIsIndexLoadError(t *testing.T) {
	loader := New(filepath.Join(t.TempDir(), "absent.json"))
	_, err := loader.Load(context.Background())
	if !domain.IsKind(err, domain.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad, got %v", err)
	}
}

func TestLoadCorruptJSONIsIndexLoadError(t *testing.T) {
	loader := New(writeSnapshot(t, "{not json"))
	_, err := loader.Load(context.Background())
	if !domain.IsKind(err, domain.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad, got %v", err)
	}
}

func TestLoadRejectsDimensionMismatch(t *testing.T) {
	loader := New(writeSnapshot(t, `{
		"model_id": "embed-001",
		"dimension": 3,
		"records": [{"document_id": "plan.pdf", "page": 1, "vector": [0.1, 0.2]}]
	}`))
	_, err := loader.Load(context.Background())
	if !domain.IsKind(err, domain.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad for short vector, got %v", err)
	}
}

func TestLoadRejectsPageBelowOne(t *testing.T) {
	loader := New(writeSnapshot(t, `{
		"model_id": "embed-001",
		"dimension": 1,
		"records": [{"document_id": "plan.pdf", "page": 0, "vector": [0.1]}]
	}`))
	_, err := loader.Load(context.Background())
	if !domain.IsKind(err, domain.ErrIndexLoad) {
		t.Fatalf("expected ErrIndexLoad for page 0, got %v", err)
	}
}
