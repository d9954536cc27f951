package types

import "errors"

// Error kinds surfaced by the pipeline and the query engine. Callers match
// them with errors.Is; the wrapped message carries the detail.
var (
	// ErrExtraction: the document could not be read or parsed. Fatal for
	// that document only.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmbedding: the embedder call failed after bounded retries. Nothing
	// has been written to the store for this document.
	ErrEmbedding = errors.New("embedding failed")
	// ErrStoreWrite: the vector store rejected the write. Some objects of
	// the batch may already be committed.
	ErrStoreWrite = errors.New("vector store write failed")
	ErrStoreQuery = errors.New("vector store query failed")
	// ErrConnection: the backing store is unreachable.
	ErrConnection = errors.New("vector store unreachable")
	// ErrConfiguration: required connection or model parameters are missing.
	// Fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrArchive: post-success archival failed. The ingestion itself stands;
	// the caller may retry archiving independently.
	ErrArchive = errors.New("archive failed")
	// ErrCleanup: removing the local staging copy failed after a successful
	// ingestion and archive.
	ErrCleanup = errors.New("staging cleanup failed")
	// ErrGeneration: the answering model failed. Conversation history is
	// left unmodified so the same question can be retried.
	ErrGeneration = errors.New("answer generation failed")
	// ErrEmbedderMismatch: the collection was built with a different
	// embedding model than the one configured for querying.
	ErrEmbedderMismatch = errors.New("collection embedder mismatch")
)
