package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// Loader reads the precomputed embedding index from a JSON snapshot file
// produced by the offline indexer. The snapshot is parsed and validated
// once; every subsequent Load returns the cached handle.
type Loader struct {
	path string

	once  sync.Once
	index *domain.EmbeddingIndex
	err   error
}

func New(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load(_ context.Context) (*domain.EmbeddingIndex, error) {
	l.once.Do(func() {
		l.index, l.err = loadSnapshot(l.path)
	})
	return l.index, l.err
}

func loadSnapshot(path string) (*domain.EmbeddingIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexLoad, "read snapshot", err)
	}

	var index domain.EmbeddingIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, domain.WrapError(domain.ErrIndexLoad, "parse snapshot", err)
	}
	if err := validate(&index); err != nil {
		return nil, domain.WrapError(domain.ErrIndexLoad, "validate snapshot", err)
	}
	return &index, nil
}

func validate(index *domain.EmbeddingIndex) error {
	if index.Dimension <= 0 {
		return fmt.Errorf("dimension %d is not positive", index.Dimension)
	}
	for i, record := range index.Records {
		if record.DocumentID == "" {
			return fmt.Errorf("record %d has empty document id", i)
		}
		if record.Page < 1 {
			return fmt.Errorf("record %d (%s) has page %d below 1", i, record.DocumentID, record.Page)
		}
		if len(record.Vector) != index.Dimension {
			return fmt.Errorf("record %d (%s p.%d) has vector length %d, index dimension is %d",
				i, record.DocumentID, record.Page, len(record.Vector), index.Dimension)
		}
	}
	return nil
}
