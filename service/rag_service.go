package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/types"
)

const systemPrompt = "You are a document assistant. Answer the question using only the provided document context. If the context does not contain the answer, say that you do not know."

// NoRelevantDocumentsAnswer is returned when retrieval finds nothing; the
// generative model is not called and no provenance is fabricated.
const NoRelevantDocumentsAnswer = "No relevant documents were found for your question."

// RAGService answers questions by retrieving the most similar stored
// segments and composing them with the question and the session history
// into a prompt for the generative model.
type RAGService struct {
	embedder        Embedder
	store           database.VectorStore
	generator       Generator
	topK            int
	maxPromptTokens int
}

func NewRAGService(embedder Embedder, store database.VectorStore, generator Generator, topK, maxPromptTokens int) *RAGService {
	if topK <= 0 {
		topK = 4
	}
	if maxPromptTokens <= 0 {
		maxPromptTokens = 3000
	}
	return &RAGService{
		embedder:        embedder,
		store:           store,
		generator:       generator,
		topK:            topK,
		maxPromptTokens: maxPromptTokens,
	}
}

// Answer embeds the question with the same embedder used at ingestion,
// retrieves the top-k segments and generates an answer. The session is
// appended only after a successful generation, so a failed call leaves the
// history untouched and the question can be retried.
func (s *RAGService) Answer(ctx context.Context, question string, session *ChatSession) (*types.Answer, error) {
	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Query(ctx, queryVector, s.topK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		answer := &types.Answer{Content: NoRelevantDocumentsAnswer}
		session.Append(question, answer.Content)
		return answer, nil
	}

	messages, kept := s.composeMessages(question, matches, session.Turns())
	content, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	session.Append(question, content)
	sources := make([]types.Segment, len(kept))
	for i, m := range kept {
		sources[i] = m.Segment
	}
	return &types.Answer{Content: content, Sources: sources}, nil
}

// Retrieve exposes raw top-k retrieval without generation.
func (s *RAGService) Retrieve(ctx context.Context, query string, k int) ([]types.ScoredSegment, error) {
	if k <= 0 {
		k = s.topK
	}
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.store.Query(ctx, queryVector, k)
}

// composeMessages builds the model conversation within the token budget.
// When over budget, the oldest turns are dropped first; once no turns
// remain, the lowest-ranked context segments go. The current question is
// never truncated. Returns the messages and the context segments that
// survived, in retrieval order.
func (s *RAGService) composeMessages(question string, matches []types.ScoredSegment, turns []types.Turn) ([]types.Message, []types.ScoredSegment) {
	base := estimateTokens(systemPrompt) + estimateTokens(question)
	for base+contextTokens(matches)+historyTokens(turns) > s.maxPromptTokens {
		if len(turns) > 0 {
			turns = turns[1:]
			continue
		}
		if len(matches) > 1 {
			matches = matches[:len(matches)-1]
			continue
		}
		break
	}

	messages := make([]types.Message, 0, 2*len(turns)+2)
	messages = append(messages, types.Message{
		Role:    "system",
		Content: systemPrompt + "\n\nDocument context:\n" + contextBlock(matches),
	})
	for _, turn := range turns {
		messages = append(messages,
			types.Message{Role: "user", Content: turn.Question},
			types.Message{Role: "assistant", Content: turn.Answer},
		)
	}
	messages = append(messages, types.Message{Role: "user", Content: question})
	return messages, matches
}

func contextBlock(matches []types.ScoredSegment) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] (%s)\n%s\n", i+1, m.Segment.DocumentID, m.Segment.Text)
	}
	return b.String()
}

func contextTokens(matches []types.ScoredSegment) int {
	total := 0
	for _, m := range matches {
		total += estimateTokens(m.Segment.Text)
	}
	return total
}

func historyTokens(turns []types.Turn) int {
	total := 0
	for _, turn := range turns {
		total += estimateTokens(turn.Question) + estimateTokens(turn.Answer)
	}
	return total
}

// estimateTokens over-approximates with the usual four characters per
// token heuristic; the budget only needs a consistent truncation order.
func estimateTokens(s string) int {
	return len(s)/4 + 1
}
