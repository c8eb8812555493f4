package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/schedmesh/core"
)

// InMemoryStore is a naive process-local KnowledgeStore. Search is a linear
// scan with case-insensitive word matching, scoring by the fraction of query
// words present in the document. Suitable for tests and demos; swap for the
// chromem-backed store for semantic retrieval.
//
// Concurrency: protected by RWMutex; returned documents are copies.
type InMemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]core.Document
	order []string
}

// NewInMemoryStore creates an empty in-memory knowledge store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]core.Document)}
}

// Store appends a new document and returns its generated id.
func (s *InMemoryStore) Store(_ context.Context, content string, metadata map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := core.NewID()
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	s.docs[id] = core.Document{ID: id, Content: content, Metadata: md}
	s.order = append(s.order, id)
	return id, nil
}

// Search scores every document by the fraction of query words it contains
// and returns up to limit matches, best first. An empty query matches
// everything with score zero.
func (s *InMemoryStore) Search(_ context.Context, query string, limit int) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := strings.Fields(strings.ToLower(query))
	var results []core.Document
	for _, id := range s.order {
		doc, ok := s.docs[id]
		if !ok {
			continue
		}
		score := wordOverlap(strings.ToLower(doc.Content), words)
		if len(words) > 0 && score == 0 {
			continue
		}
		doc.Score = score
		results = append(results, doc)
	}

	// Stable ordering: insertion order for ties keeps results deterministic.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func wordOverlap(content string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if strings.Contains(content, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// FetchAll returns copies of every stored document in insertion order.
func (s *InMemoryStore) FetchAll(_ context.Context) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]core.Document, 0, len(s.order))
	for _, id := range s.order {
		if doc, ok := s.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Delete removes a document by id.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
