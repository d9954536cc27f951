package types

// Segment is a bounded slice of a document's extracted text. It is the unit
// of embedding and retrieval: segments are created by the chunker, embedded
// in one batch and written to the vector store, and come back verbatim as
// provenance for generated answers.
type Segment struct {
	DocumentID string `json:"document_id"` // source document identifier (file name)
	Index      int    `json:"index"`       // sequence position within the document
	Text       string `json:"text"`
	Length     int    `json:"length"` // character length, always <= configured max chunk size
}

// ScoredSegment pairs a retrieved segment with its similarity score.
type ScoredSegment struct {
	Segment Segment `json:"segment"`
	Score   float32 `json:"score"`
}

// DocumentServiceConfig contains configuration options for document processing
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text segments
	OverlapSize  int // Size of overlap between adjacent segments
}

// IngestResult reports the outcome of a single document ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Segments   int    `json:"segments"`
	// Degenerate marks an ingestion whose extraction yielded no text: the
	// pipeline succeeded but zero segments were stored.
	Degenerate bool `json:"degenerate"`
}
