package search

import (
	"context"

	"greptui/internal/domain"
	"greptui/internal/git"
)

// SearchFunc runs one search. It should return promptly once ctx is cancelled.
type SearchFunc func(ctx context.Context, q domain.Query) (git.Result, error)
