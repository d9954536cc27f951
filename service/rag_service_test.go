package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/types"
)

// seededStore loads four segments with hand-picked vectors so retrieval
// order is known in advance for a (0,1) query: s2, s3, then s1 and s4 tied
// at zero similarity.
func seededStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()
	records := []database.SegmentRecord{
		{Segment: types.Segment{DocumentID: "a.pdf", Index: 0, Text: "about cats"}, Vector: []float32{1, 0}},
		{Segment: types.Segment{DocumentID: "a.pdf", Index: 1, Text: "about dogs"}, Vector: []float32{0, 1}},
		{Segment: types.Segment{DocumentID: "b.pdf", Index: 0, Text: "about pets"}, Vector: []float32{1, 1}},
		{Segment: types.Segment{DocumentID: "b.pdf", Index: 1, Text: "about cars"}, Vector: []float32{-1, 0}},
	}
	require.NoError(t, store.WriteSegments(context.Background(), records))
	return store
}

func questionEmbedder() *fakeEmbedder {
	return &fakeEmbedder{EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 1}, nil
	}}
}

func TestAnswerReturnsMostSimilarSegmentsFirst(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "Dogs are covered in a.pdf.", nil
	}}
	rag := NewRAGService(questionEmbedder(), seededStore(t), generator, 3, 3000)
	session := NewChatSession("s1", 10)

	answer, err := rag.Answer(context.Background(), "tell me about dogs", session)

	require.NoError(t, err)
	assert.Equal(t, "Dogs are covered in a.pdf.", answer.Content)
	require.Len(t, answer.Sources, 3)
	assert.Equal(t, "about dogs", answer.Sources[0].Text)
	assert.Equal(t, "about pets", answer.Sources[1].Text)
	assert.Equal(t, "about cats", answer.Sources[2].Text)

	turns := session.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "tell me about dogs", turns[0].Question)
}

func TestAnswerPromptContainsContextAndQuestion(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "ok", nil
	}}
	rag := NewRAGService(questionEmbedder(), seededStore(t), generator, 2, 3000)

	_, err := rag.Answer(context.Background(), "tell me about dogs", NewChatSession("s1", 10))

	require.NoError(t, err)
	require.NotEmpty(t, generator.lastPrompt)
	system := generator.lastPrompt[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "about dogs")
	last := generator.lastPrompt[len(generator.lastPrompt)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "tell me about dogs", last.Content)
}

func TestAnswerEmptyStoreSkipsGenerator(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "should not run", nil
	}}
	rag := NewRAGService(questionEmbedder(), database.NewMemoryStore(), generator, 3, 3000)
	session := NewChatSession("s1", 10)

	answer, err := rag.Answer(context.Background(), "anything at all", session)

	require.NoError(t, err)
	assert.Equal(t, NoRelevantDocumentsAnswer, answer.Content)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, generator.calls)
}

func TestAnswerGenerationErrorLeavesHistoryUntouched(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "", fmt.Errorf("%w: model overloaded", types.ErrGeneration)
	}}
	rag := NewRAGService(questionEmbedder(), seededStore(t), generator, 3, 3000)
	session := NewChatSession("s1", 10)
	session.Append("earlier question", "earlier answer")

	_, err := rag.Answer(context.Background(), "tell me about dogs", session)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrGeneration)
	turns := session.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "earlier question", turns[0].Question)
}

func TestAnswerDropsOldestTurnsWhenOverBudget(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "ok", nil
	}}
	// A budget that fits the context and question but not the history.
	rag := NewRAGService(questionEmbedder(), seededStore(t), generator, 1, 80)
	session := NewChatSession("s1", 10)
	session.Append("oldest question", strings.Repeat("long answer ", 30))
	session.Append("newer question", strings.Repeat("long answer ", 30))

	_, err := rag.Answer(context.Background(), "tell me about dogs", session)

	require.NoError(t, err)
	for _, m := range generator.lastPrompt {
		assert.NotContains(t, m.Content, "oldest question")
	}
	// The question itself is never truncated.
	last := generator.lastPrompt[len(generator.lastPrompt)-1]
	assert.Equal(t, "tell me about dogs", last.Content)
}

func TestRetrieveHonorsK(t *testing.T) {
	rag := NewRAGService(questionEmbedder(), seededStore(t), nil, 4, 3000)

	matches, err := rag.Retrieve(context.Background(), "dogs", 2)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "about dogs", matches[0].Segment.Text)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}
