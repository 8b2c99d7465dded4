package assistant

import "context"

// AssistantClient answers a free-form support question. Implementations
// never return an error to the caller; any failure yields a user-facing
// apology string instead.
type AssistantClient interface {
	Ask(ctx context.Context, prompt string) string
}
