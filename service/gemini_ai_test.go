package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docuchat-be/types"
)

func TestGeminiServiceRequiresAPIKeys(t *testing.T) {
	_, err := NewGeminiService(nil, "gemini-2.0-flash")

	assert.ErrorIs(t, err, types.ErrConfiguration)
}

// Concurrent askers share one service; every call fails fast against the
// expired context and rotates keys, which must not corrupt the shared
// client state (run with -race).
func TestGeminiServiceConcurrentGenerate(t *testing.T) {
	svc, err := NewGeminiService([]string{"key-a", "key-b"}, "gemini-2.0-flash")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	messages := []types.Message{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "question"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Generate(ctx, messages)
			assert.Error(t, err)
		}()
	}
	wg.Wait()
}

func TestGeminiServiceGenerateRejectsEmptyMessages(t *testing.T) {
	svc, err := NewGeminiService([]string{"key-a"}, "gemini-2.0-flash")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), nil)

	assert.ErrorIs(t, err, types.ErrGeneration)
}
