package pairing

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/retriever"

	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

const (
	noPairingsText      = "No pertinent pairing found in the book for the query."
	pairingsHeader      = "Results from the book of flavours:\n"
	pairingSeparator    = "\n---\n"
	pairingsErrorFormat = "Error found during the research for the pairings in the book: %v"
)

// Finder formats retriever hits as prompt text. Failures are reported in
// the returned text so the recipe can still be generated.
type Finder struct {
	retriever retriever.Retriever
	topK      int
}

func NewFinder(r retriever.Retriever) *Finder {
	return &Finder{retriever: r, topK: DefaultTopK}
}

func (f *Finder) FindPairings(ctx context.Context, query string) string {
	docs, err := f.retriever.Retrieve(ctx, query, retriever.WithTopK(f.topK))
	if err != nil {
		logx.Warn().Err(err).Str("query", query).Msg("pairing lookup failed")
		return fmt.Sprintf(pairingsErrorFormat, err)
	}

	passages := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil || strings.TrimSpace(d.Content) == "" {
			continue
		}
		passages = append(passages, d.Content)
	}
	if len(passages) == 0 {
		return noPairingsText
	}
	return pairingsHeader + strings.Join(passages, pairingSeparator)
}

var _ model.PairingFinder = (*Finder)(nil)
