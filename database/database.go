package database

import (
	"context"

	"github.com/tieubaoca/docuchat-be/types"
)

// SegmentRecord is one (segment, vector) pair bound for the store.
type SegmentRecord struct {
	Segment types.Segment
	Vector  []float32
}

// VectorStore abstracts the similarity store backing a single named
// collection. All ingestion writes and all queries in a deployment go
// through the same collection.
type VectorStore interface {
	// WriteSegments persists all records in one call. Duplicate ingestion
	// of an identical document duplicates entries; de-duplication is the
	// caller's problem and is documented as a known limitation.
	WriteSegments(ctx context.Context, records []SegmentRecord) error

	// Query returns up to k segments ordered by descending similarity to
	// the given vector, ties broken by insertion order.
	Query(ctx context.Context, vector []float32, k int) ([]types.ScoredSegment, error)

	// Reset drops and recreates the collection.
	Reset(ctx context.Context) error
}
