package portfolio

import (
	"context"
	"fmt"
	"log/slog"
)

// Entry is a portfolio row as supplied by callers: a tech-stack descriptor
// and the link that demonstrates it.
type Entry struct {
	Descriptor string `json:"descriptor"`
	Link       string `json:"link"`
}

// Index answers skill-term queries with portfolio links. Descriptors are
// embedded once at load time; queries embed each term and run a similarity
// search per term.
type Index struct {
	embedder *Embedder
	store    VectorStore
}

// NewIndex creates an Index over the given embedder and vector store.
func NewIndex(embedder *Embedder, store VectorStore) *Index {
	return &Index{embedder: embedder, store: store}
}

// Load embeds and stores the given entries. It is idempotent for repeated
// startups: when the store already holds records, loading is skipped so the
// same catalog is not embedded twice.
func (idx *Index) Load(ctx context.Context, entries []Entry) error {
	count, err := idx.store.Count()
	if err != nil {
		return fmt.Errorf("counting records: %w", err)
	}
	if count > 0 {
		slog.Debug("portfolio already loaded, skipping", "count", count)
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Descriptor
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding descriptors: %w", err)
	}

	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{
			Descriptor: e.Descriptor,
			Link:       e.Link,
			Embedding:  vectors[i],
		}
	}

	if err := idx.store.Insert(records); err != nil {
		return fmt.Errorf("inserting records: %w", err)
	}
	slog.Info("portfolio loaded", "entries", len(records))
	return nil
}

// Add embeds and stores a single entry, regardless of what is already loaded.
func (idx *Index) Add(ctx context.Context, entry Entry) error {
	vec, err := idx.embedder.Embed(ctx, entry.Descriptor)
	if err != nil {
		return fmt.Errorf("embedding descriptor: %w", err)
	}
	if err := idx.store.Insert([]Record{{
		Descriptor: entry.Descriptor,
		Link:       entry.Link,
		Embedding:  vec,
	}}); err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Count returns the number of loaded entries.
func (idx *Index) Count() (int, error) {
	return idx.store.Count()
}

// Query embeds each skill term, retrieves the k best-matching entries per
// term, and returns the flattened link list with duplicates removed,
// preserving first-seen order. Empty terms return nil without touching the
// embedder or the store.
func (idx *Index) Query(ctx context.Context, terms []string, k int) ([]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("embedding query terms: %w", err)
	}

	var links []string
	seen := make(map[string]bool)
	for i, vec := range vectors {
		scored, err := idx.store.Search(vec, k)
		if err != nil {
			return nil, fmt.Errorf("searching for term %q: %w", terms[i], err)
		}
		for _, sr := range scored {
			if seen[sr.Record.Link] {
				continue
			}
			seen[sr.Record.Link] = true
			links = append(links, sr.Record.Link)
		}
	}
	return links, nil
}
