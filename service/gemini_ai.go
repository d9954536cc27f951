package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/docuchat-be/types"
	"google.golang.org/api/option"
)

// GeminiService generates answers through the Gemini API, rotating through
// the configured API keys when a call fails.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	modelName  string
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("%w: no Gemini API keys provided", types.ErrConfiguration)
	}

	service := &GeminiService{
		apiKeys:    apiKeys,
		currentKey: 0,
		modelName:  modelName,
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.initClient()
}

// generativeModel builds a fresh model handle for one call. Handles are
// never shared between callers, so setting the system instruction on one
// cannot race with a concurrent call or a key rotation.
func (s *GeminiService) generativeModel(system string) *genai.GenerativeModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := s.client.GenerativeModel(s.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	return model
}

// Generate maps the composed messages onto a Gemini chat: the system
// message becomes the system instruction, prior turns become history and
// the final user message is sent as the prompt. One key rotation is
// attempted before the failure is surfaced.
func (s *GeminiService) Generate(ctx context.Context, messages []types.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: no messages", types.ErrGeneration)
	}

	var system string
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages[:len(messages)-1] {
		if msg.Role == "system" {
			system = msg.Content
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	prompt := messages[len(messages)-1].Content

	chat := s.generativeModel(system).StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// Try rotating API key if there's an error
		if err := s.rotateAPIKey(); err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
		}
		chat = s.generativeModel(system).StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
		}
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, errors.New("no response generated"))
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	return content, nil
}
