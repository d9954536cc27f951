package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/types"
	"golang.org/x/sync/errgroup"
)

// Extractor turns a document file into plain text.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// IngestService runs the document-to-vector pipeline: extract, chunk, one
// batch embed, one batch store write. Each document is all-or-nothing; on
// success the caller is responsible for archiving the source and removing
// the staging copy.
type IngestService struct {
	extractor Extractor
	chunker   *Chunker
	embedder  Embedder
	store     database.VectorStore
}

func NewIngestService(extractor Extractor, chunker *Chunker, embedder Embedder, store database.VectorStore) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
	}
}

// Ingest processes a single document. A document whose extraction yields no
// text succeeds with zero segments and the result marked degenerate. Any
// step failing aborts the document: an extraction or embedding error means
// nothing was stored, a store write error means some vectors of this
// document may already be committed (the error says which).
func (s *IngestService) Ingest(ctx context.Context, filePath string) (types.IngestResult, error) {
	documentID := filepath.Base(filePath)
	result := types.IngestResult{DocumentID: documentID}

	text, err := s.extractor.ExtractText(filePath)
	if err != nil {
		if errors.Is(err, types.ErrExtraction) {
			return result, err
		}
		return result, fmt.Errorf("%w: %s: %v", types.ErrExtraction, documentID, err)
	}

	segments := s.chunker.Split(documentID, text)
	if len(segments) == 0 {
		result.Degenerate = true
		return result, nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return result, err
	}

	records := make([]database.SegmentRecord, len(segments))
	for i := range segments {
		records[i] = database.SegmentRecord{Segment: segments[i], Vector: vectors[i]}
	}
	if err := s.store.WriteSegments(ctx, records); err != nil {
		return result, err
	}

	result.Segments = len(segments)
	return result, nil
}

// IngestBatch ingests every path as an independent per-document
// transaction, up to parallel documents at a time. One document's failure
// never aborts the others; each outcome is reported through done. A
// cancelled context stops documents that have not started, leaving
// completed documents' stored state untouched.
func (s *IngestService) IngestBatch(ctx context.Context, paths []string, parallel int, done func(path string, result types.IngestResult, err error)) {
	if parallel <= 0 {
		parallel = 1
	}
	var g errgroup.Group
	g.SetLimit(parallel)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				done(path, types.IngestResult{DocumentID: filepath.Base(path)}, err)
				return nil
			}
			result, err := s.Ingest(ctx, path)
			done(path, result, err)
			return nil
		})
	}
	g.Wait()
}
