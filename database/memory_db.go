package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tieubaoca/docuchat-be/types"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine
// similarity. It backs tests and the "memory" driver for local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records []SegmentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) WriteSegments(ctx context.Context, records []SegmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Vector) == 0 {
			return fmt.Errorf("%w: segment %s/%d has no vector", types.ErrStoreWrite, r.Segment.DocumentID, r.Segment.Index)
		}
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, vector []float32, k int) ([]types.ScoredSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", types.ErrStoreQuery)
	}
	scored := make([]types.ScoredSegment, len(s.records))
	for i, r := range s.records {
		scored[i] = types.ScoredSegment{
			Segment: r.Segment,
			Score:   cosineSimilarity(r.Vector, vector),
		}
	}
	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float32
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
