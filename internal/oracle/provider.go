package oracle

import (
	"context"
	"errors"
)

var ErrProviderDisabled = errors.New("model provider disabled")

// Request is one schema-constrained completion.
type Request struct {
	System string
	User   string
	Schema *Schema
}

// Provider returns the raw text of a structured answer.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (string, error)
}
