package service

import (
	"context"

	"github.com/tieubaoca/docuchat-be/types"
)

// Hand-rolled fakes with overridable function fields.

type fakeExtractor struct {
	ExtractTextFn func(path string) (string, error)
}

func (f *fakeExtractor) ExtractText(path string) (string, error) {
	return f.ExtractTextFn(path)
}

type fakeEmbedder struct {
	ModelFn      func() string
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (f *fakeEmbedder) Model() string {
	if f.ModelFn != nil {
		return f.ModelFn()
	}
	return "fake-embedder"
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.EmbedFn(ctx, text)
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.EmbedBatchFn != nil {
		return f.EmbedBatchFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedFn(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

type fakeGenerator struct {
	calls      int
	lastPrompt []types.Message
	GenerateFn func(ctx context.Context, messages []types.Message) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []types.Message) (string, error) {
	f.calls++
	f.lastPrompt = messages
	return f.GenerateFn(ctx, messages)
}
