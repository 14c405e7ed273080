package interfaces

import (
	"context"
	"encoding/json"
)

// GenerateRequest carries one structured-generation request to the
// generative-text collaborator. Instructions describe the task and required
// output shape; Context is optional supporting prose (recent events, market
// data) and may be empty.
type GenerateRequest struct {
	Instructions string
	Context      string
}

// Generator is the generative-text collaborator. Implementations must return
// a parsed JSON document; malformed provider output is a generation error,
// not a crash. Latency and failure modes are opaque to callers, which bound
// every call with a context deadline.
type Generator interface {
	GenerateJSON(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
}

// ContextProvider is the search/intelligence collaborator. It returns prose
// describing recent real-world events for a free-text query. Its output is
// purely advisory: callers treat errors and timeouts as an empty context.
type ContextProvider interface {
	RecentEvents(ctx context.Context, query string) (string, error)
}
