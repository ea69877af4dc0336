package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	errx "github.com/chef-innovativo/server/internal/core/error"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

// MaxEntries bounds how many raw search entries feed the base recipe text.
const MaxEntries = 3

const noDescription = "No description available"

type Kind int

const (
	KindContainer Kind = iota + 1 // object, with or without a "results" list
	KindList                      // bare array
	KindText                      // plain string or non-JSON body
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindList:
		return "list"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// SearchRecord is one normalized search hit.
type SearchRecord struct {
	Title   string
	Content string
	URL     string
	Index   int // position in the raw result list, zero based
}

// SearchResponse is the decoded provider payload. Records is set for
// containers and lists, Text for text payloads.
type SearchResponse struct {
	Kind    Kind
	Records []SearchRecord
	Text    string
}

// BuildQuery turns a user desire into the web search query.
func BuildQuery(desire string) string {
	return strings.TrimSpace(desire) + " recipe cooking instructions"
}

// Decode classifies a raw provider payload and normalizes its entries.
// Payloads that are valid JSON but neither object, array nor string are
// rejected with errx.ErrUnsupportedShape.
func Decode(raw []byte) (*SearchResponse, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &SearchResponse{Kind: KindText}, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return &SearchResponse{Kind: KindText, Text: string(trimmed)}, nil
	}

	switch t := v.(type) {
	case map[string]any:
		entries := []any{t}
		if results, ok := t["results"]; ok {
			if list, ok := results.([]any); ok {
				entries = list
			} else {
				entries = []any{results}
			}
		}
		return &SearchResponse{Kind: KindContainer, Records: normalizeEntries(entries)}, nil
	case []any:
		return &SearchResponse{Kind: KindList, Records: normalizeEntries(t)}, nil
	case string:
		return &SearchResponse{Kind: KindText, Text: t}, nil
	default:
		return nil, fmt.Errorf("%w: %T", errx.ErrUnsupportedShape, v)
	}
}

func normalizeEntries(entries []any) []SearchRecord {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	records := make([]SearchRecord, 0, len(entries))
	for i, entry := range entries {
		fallbackTitle := fmt.Sprintf("Recipe %d", i+1)
		switch e := entry.(type) {
		case map[string]any:
			records = append(records, SearchRecord{
				Title:   firstString(e, fallbackTitle, "title", "name"),
				Content: firstString(e, noDescription, "content", "snippet", "description"),
				URL:     firstString(e, "", "url"),
				Index:   i,
			})
		case string:
			records = append(records, SearchRecord{Title: fallbackTitle, Content: e, Index: i})
		default:
			logx.Warn().
				Str("component", "search").
				Int("index", i).
				Str("type", fmt.Sprintf("%T", entry)).
				Msg("dropping search entry with unsupported type")
		}
	}
	return records
}

func firstString(m map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

// FormatBaseRecipe renders the response as the text handed to the model.
// It returns errx.ErrNoResults when nothing usable survived normalization.
func FormatBaseRecipe(resp *SearchResponse) (string, error) {
	if resp == nil {
		return "", errx.ErrNoResults
	}

	if resp.Kind == KindText {
		if strings.TrimSpace(resp.Text) == "" {
			return "", errx.ErrNoResults
		}
		return resp.Text, nil
	}

	if len(resp.Records) == 0 {
		return "", errx.ErrNoResults
	}
	blocks := make([]string, 0, len(resp.Records))
	for _, r := range resp.Records {
		block := "**" + r.Title + "**\n" + r.Content
		if r.URL != "" {
			block += "\nSource: " + r.URL
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}
