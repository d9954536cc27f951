package service

import (
	"context"

	"github.com/tieubaoca/docuchat-be/types"
)

// Generator produces a completion for a composed prompt. Model identity
// and endpoint are configuration, not logic.
type Generator interface {
	Generate(ctx context.Context, messages []types.Message) (string, error)
}
