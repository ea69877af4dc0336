package nodes

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type reply struct {
	content string
	err     error
	usage   *schema.TokenUsage
}

// scriptedChatModel returns its replies in order and records every prompt.
type scriptedChatModel struct {
	mu      sync.Mutex
	replies []reply
	prompts [][]*schema.Message
}

func (m *scriptedChatModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, in)
	if len(m.replies) == 0 {
		return nil, errors.New("scripted model: no reply left")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	out := schema.AssistantMessage(r.content, nil)
	if r.usage != nil {
		out.ResponseMeta = &schema.ResponseMeta{Usage: r.usage}
	}
	return out, nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

type fixedDetector string

func (d fixedDetector) Detect(string) string { return string(d) }

type stubSearcher struct {
	raw   string
	errs  []error
	calls int
}

func (s *stubSearcher) Search(context.Context, string) (json.RawMessage, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return json.RawMessage(s.raw), nil
}

type stubPairings struct {
	text    string
	queries []string
}

func (p *stubPairings) FindPairings(_ context.Context, query string) string {
	p.queries = append(p.queries, query)
	return p.text
}
