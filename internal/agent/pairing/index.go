package pairing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

// DefaultTopK is the number of passages returned per lookup.
const DefaultTopK = 5

// ErrEmptyCorpus is returned when a build finds no text to index.
var ErrEmptyCorpus = errors.New("pairing: corpus contains no text")

// Index is a cosine-similarity retriever over the stored chunks. The chunks
// are loaded on first use and read-only afterwards; an empty store is
// built from the corpus directory at that point.
type Index struct {
	store    *Store
	embedder embedding.Embedder
	cfg      model.PairingConfig

	mu     sync.Mutex
	chunks []ChunkModel
	loaded bool
}

func NewIndex(store *Store, embedder embedding.Embedder, cfg model.PairingConfig) *Index {
	return &Index{store: store, embedder: embedder, cfg: cfg}
}

// EnsureBuilt loads the index, building it first when the store is empty.
func (ix *Index) EnsureBuilt(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.ensureLocked(ctx)
}

func (ix *Index) ensureLocked(ctx context.Context) error {
	if ix.loaded {
		return nil
	}

	n, err := ix.store.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		logx.Info().Str("corpus", ix.cfg.CorpusDir).Msg("pairing index empty, building from corpus")
		if _, err := ix.buildLocked(ctx); err != nil {
			return err
		}
	}

	chunks, err := ix.store.All(ctx)
	if err != nil {
		return err
	}
	ix.chunks = chunks
	ix.loaded = true
	logx.Debug().Int("chunks", len(chunks)).Msg("pairing index loaded")
	return nil
}

// Rebuild re-embeds the corpus and replaces the stored index. It returns
// the number of chunks written.
func (ix *Index) Rebuild(ctx context.Context) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n, err := ix.buildLocked(ctx)
	if err != nil {
		return 0, err
	}
	ix.loaded = false
	ix.chunks = nil
	return n, ix.ensureLocked(ctx)
}

func (ix *Index) buildLocked(ctx context.Context) (int, error) {
	passages, err := LoadCorpus(ix.cfg.CorpusDir, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(passages) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyCorpus, ix.cfg.CorpusDir)
	}

	batch := ix.cfg.BatchSize
	if batch <= 0 {
		batch = len(passages)
	}

	chunks := make([]ChunkModel, 0, len(passages))
	for start := 0; start < len(passages); start += batch {
		end := min(start+batch, len(passages))
		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Content)
		}

		vectors, err := ix.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed corpus batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embed corpus batch %d-%d: got %d vectors", start, end, len(vectors))
		}
		for i, p := range passages[start:end] {
			chunks = append(chunks, ChunkModel{
				Source:   p.Source,
				Position: p.Position,
				Content:  p.Content,
				Vector:   vectors[i],
			})
		}
		logx.Debug().Int("done", end).Int("total", len(passages)).Msg("embedded corpus batch")
	}

	if err := ix.store.Replace(ctx, chunks); err != nil {
		return 0, err
	}
	logx.Info().Int("chunks", len(chunks)).Msg("pairing index built")
	return len(chunks), nil
}

// Retrieve returns the passages most similar to query, best first.
func (ix *Index) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := DefaultTopK
	o := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if o.TopK != nil {
		topK = *o.TopK
	}

	ix.mu.Lock()
	err := ix.ensureLocked(ctx)
	chunks := ix.chunks
	ix.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || topK <= 0 {
		return []*schema.Document{}, nil
	}

	vectors, err := ix.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	q := vectors[0]

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(chunks))
	for i := range chunks {
		ranked = append(ranked, scored{idx: i, score: cosine(q, chunks[i].Vector)})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	docs := make([]*schema.Document, 0, len(ranked))
	for _, r := range ranked {
		if o.ScoreThreshold != nil && r.score < *o.ScoreThreshold {
			continue
		}
		c := chunks[r.idx]
		doc := &schema.Document{
			ID:      strconv.FormatUint(uint64(c.ID), 10),
			Content: c.Content,
			MetaData: map[string]any{
				"source":   c.Source,
				"position": c.Position,
			},
		}
		docs = append(docs, doc.WithScore(r.score))
	}
	return docs, nil
}

// cosine returns 0 for mismatched or zero-length vectors.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ retriever.Retriever = (*Index)(nil)
