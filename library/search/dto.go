// Package search defines the provider-neutral search contract.
package search

import "context"

// Engine defines a concrete search backend that can process queries and return items.
type Engine interface {
	// Name returns the unique identifier for the engine instance.
	Name() string
	// Search executes the query and returns the organic results in provider order.
	Search(ctx context.Context, query string) ([]SearchResultItem, error)
}

// SearchResultItem captures a single entry returned by a search provider.
type SearchResultItem struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}
