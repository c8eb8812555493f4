package core

import "context"

// Document is one stored knowledge item with its metadata. Score is only
// populated on search results.
type Document struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score,omitempty"`
}

// KnowledgeStore defines persistence and similarity retrieval for one
// agent's private knowledge. Implementations can back Search with
// embeddings, keywords or any heuristic; each agent owns exactly one store
// and no cross-agent access happens except through routed messages.
type KnowledgeStore interface {
	Store(ctx context.Context, content string, metadata map[string]string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]Document, error)
	FetchAll(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, id string) error
}
