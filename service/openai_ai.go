package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/docuchat-be/types"
)

// OpenAIService generates answers through an OpenAI-compatible chat
// completion endpoint.
type OpenAIService struct {
	client     *openai.Client
	model      string
	maxRetries int
}

func NewOpenAIService(baseURL string, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL // Set this to your local LLM server URL
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:     client,
		model:      model,
		maxRetries: 2,
	}
}

// Generate submits the composed messages and returns the model response
// verbatim. Failures are retried a bounded number of times, then surfaced
// as a generation error.
func (s *OpenAIService) Generate(ctx context.Context, messages []types.Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying chat completion, attempt %d: %v", attempt, err)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", types.ErrGeneration, ctx.Err())
			case <-time.After(retryDelay(attempt)):
			}
		}
		resp, err = s.client.CreateChatCompletion(
			ctx,
			openai.ChatCompletionRequest{
				Messages: openaiMessages,
				Model:    s.model,
			},
		)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", types.ErrGeneration)
	}

	return resp.Choices[0].Message.Content, nil
}

func chatRole(role string) string {
	switch role {
	case "system":
		return openai.ChatMessageRoleSystem
	case "assistant":
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
