package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
)

type stubExtractor struct {
	text string
}

func (s *stubExtractor) ExtractText(path string) (string, error) {
	return s.text, nil
}

type stubEmbedder struct{}

func (s *stubEmbedder) Model() string { return "stub-embedder" }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func newTestUploadHandler(t *testing.T) *UploadHandler {
	t.Helper()
	chunker := service.NewChunker(types.DocumentServiceConfig{MaxChunkSize: 40, OverlapSize: 0})
	ingest := service.NewIngestService(&stubExtractor{text: "Some extracted document text."}, chunker, &stubEmbedder{}, database.NewMemoryStore())
	return NewUploadHandler(t.TempDir(), ingest, nil)
}

func TestProcessReturnsAfterClientGone(t *testing.T) {
	h := newTestUploadHandler(t)

	// A cancelled request context stands in for a disconnected client; no
	// reader ever drains the status channel.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	statusChan := make(chan types.ProcessingDocumentStatus)

	var result types.IngestResult
	done := make(chan error, 1)
	go func() {
		done <- h.process(ctx, "staged.pdf", &result, statusChan)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("process blocked on status channel after the client went away")
	}
}

func TestProcessReportsProgressWhileClientConnected(t *testing.T) {
	h := newTestUploadHandler(t)

	statusChan := make(chan types.ProcessingDocumentStatus)
	var result types.IngestResult
	done := make(chan error, 1)
	go func() {
		defer close(statusChan)
		done <- h.process(context.Background(), "staged.pdf", &result, statusChan)
	}()

	var statuses []types.ProcessingDocumentStatus
	for status := range statusChan {
		statuses = append(statuses, status)
	}

	require.NoError(t, <-done)
	require.NotEmpty(t, statuses)
	require.Equal(t, "completed", statuses[len(statuses)-1].Status)
	require.Greater(t, result.Segments, 0)
}
