package categorizer

import "context"

// AIClient defines the interface for AI-based classification services.
// The abstraction keeps the orchestration logic testable without external
// API calls and leaves room for other providers.
type AIClient interface {
	// ClassifyBatch maps each expense description to a category label.
	// The result slice is positional: result[i] is the label for
	// descriptions[i]. Implementations may return labels outside the
	// known category set; callers are expected to coerce them.
	ClassifyBatch(ctx context.Context, descriptions []string) ([]string, error)
}
