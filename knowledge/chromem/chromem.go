// Package chromem provides a core.KnowledgeStore backed by the embedded
// chromem-go vector database, giving each agent semantic similarity search
// over its private schedule documents without an external service.
package chromem

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/schedmesh/core"
	chromemgo "github.com/philippgille/chromem-go"
)

// Options configure the chromem-backed store.
type Options struct {
	// EmbeddingFunc computes document/query embeddings. Defaults to the
	// chromem OpenAI embedding function configured from the environment.
	EmbeddingFunc chromemgo.EmbeddingFunc
}

// Store is a core.KnowledgeStore on top of one chromem collection. chromem
// offers no document enumeration, so the store keeps its own id catalog to
// serve FetchAll; the catalog and collection are kept in sync under a mutex.
type Store struct {
	mu         sync.RWMutex
	collection *chromemgo.Collection
	catalog    map[string]core.Document
	order      []string
}

// NewStore creates (or reopens) the named collection inside db.
func NewStore(db *chromemgo.DB, collectionName string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.EmbeddingFunc == nil {
		opts.EmbeddingFunc = chromemgo.NewEmbeddingFuncDefault()
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, opts.EmbeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", collectionName, err)
	}
	return &Store{collection: col, catalog: make(map[string]core.Document)}, nil
}

// Store embeds and persists a document, returning its generated id.
func (s *Store) Store(ctx context.Context, content string, metadata map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := core.NewID()
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	if err := s.collection.AddDocument(ctx, chromemgo.Document{
		ID:       id,
		Content:  content,
		Metadata: md,
	}); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	s.catalog[id] = core.Document{ID: id, Content: content, Metadata: md}
	s.order = append(s.order, id)
	return id, nil
}

// Search runs a similarity query, best match first. The limit is capped at
// the collection size since chromem rejects oversized result requests.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]core.Document, 0, len(results))
	for _, res := range results {
		docs = append(docs, core.Document{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: res.Metadata,
			Score:    float64(res.Similarity),
		})
	}
	return docs, nil
}

// FetchAll returns every stored document in insertion order.
func (s *Store) FetchAll(_ context.Context) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]core.Document, 0, len(s.order))
	for _, id := range s.order {
		if doc, ok := s.catalog[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Delete removes a document from the collection and the catalog.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	delete(s.catalog, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
