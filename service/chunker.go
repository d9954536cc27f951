package service

import (
	"strings"
	"unicode/utf8"

	"github.com/tieubaoca/docuchat-be/types"
)

// Chunker splits extracted document text into bounded, overlap-controlled
// segments. Splitting is deterministic: the same text and configuration
// always produce the same segment sequence.
type Chunker struct {
	maxChunkSize int // Maximum size of each text segment, in runes
	overlapSize  int // Size of overlap between adjacent segments, in runes
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 500,
	OverlapSize:  0,
}

// NewChunker creates a chunker with configurable segment sizes. Overlap must
// stay below the segment size; out-of-range values fall back to defaults.
func NewChunker(config types.DocumentServiceConfig) *Chunker {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultDocumentServiceConfig.MaxChunkSize
	}
	if config.OverlapSize < 0 || config.OverlapSize >= config.MaxChunkSize {
		config.OverlapSize = DefaultDocumentServiceConfig.OverlapSize
	}
	return &Chunker{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// Split produces the ordered segment sequence for one document. All sizes
// are counted in runes, never bytes, so multi-byte text is never cut in the
// middle of a character and every segment is valid UTF-8. Each segment is
// at most maxChunkSize runes, each non-first segment starts overlapSize
// runes before the previous one ended, and concatenating the segments with
// the overlap removed reconstructs the input exactly. Empty extracted text
// yields an empty sequence, not an error.
func (c *Chunker) Split(documentID, text string) []types.Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var segments []types.Segment
	start := 0
	for start < len(runes) {
		if len(runes)-start <= c.maxChunkSize {
			segments = append(segments, c.segment(documentID, len(segments), string(runes[start:])))
			break
		}
		cut := c.breakPoint(runes, start, start+c.maxChunkSize)
		segments = append(segments, c.segment(documentID, len(segments), string(runes[start:cut])))
		start = cut - c.overlapSize
	}
	return segments
}

func (c *Chunker) segment(documentID string, index int, text string) types.Segment {
	return types.Segment{
		DocumentID: documentID,
		Index:      index,
		Text:       text,
		Length:     utf8.RuneCountInString(text),
	}
}

// breakPoint finds the cut position for a segment spanning [start, end) of
// the rune sequence. It prefers the nearest sentence end, then a word
// boundary, and falls back to a hard cut at end. The cut always lands past
// the overlap region so the next segment makes progress.
func (c *Chunker) breakPoint(runes []rune, start, end int) int {
	min := start + c.overlapSize + 1
	for i := end - 1; i >= min; i-- {
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' || runes[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= min; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return end
}

// Reconstruct is the inverse of Split: it concatenates segments, dropping
// the leading overlapSize runes of every segment after the first.
func Reconstruct(segments []types.Segment, overlapSize int) string {
	var b strings.Builder
	for i, seg := range segments {
		if i == 0 {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(string([]rune(seg.Text)[overlapSize:]))
	}
	return b.String()
}
