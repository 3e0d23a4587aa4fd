package port

import "context"

// Searcher issues one query against the semantic search service and returns
// the joined, score-filtered passage text. An empty apiURL or query skips
// the call and returns "" without touching the network.
type Searcher interface {
	Search(ctx context.Context, apiURL, query string, threshold float64, chunks []string) (string, error)
}
