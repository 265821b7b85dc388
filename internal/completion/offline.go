package completion

import (
	"context"
	"errors"
)

// ErrNoBackend is returned by OfflineGenerator for every call.
var ErrNoBackend = errors.New("no completion backend configured")

// OfflineGenerator stands in when no API key is configured, so that every
// Client call degrades to the keyword classifier and fallback texts.
type OfflineGenerator struct{}

func (OfflineGenerator) Name() string { return "offline" }

func (OfflineGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrNoBackend
}

func (OfflineGenerator) GenerateWithImage(context.Context, string, string) (string, error) {
	return "", ErrNoBackend
}
