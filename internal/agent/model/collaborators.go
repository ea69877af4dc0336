package model

import (
	"context"
	"encoding/json"
)

// LanguageDetector maps free text to a language code. It never fails:
// undetectable input yields the configured default code.
type LanguageDetector interface {
	Detect(text string) string
}

// RecipeSearcher runs a web search and returns the provider payload as is.
// The payload shape is not fixed; see search.Decode.
type RecipeSearcher interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
}

// PairingFinder looks up flavour pairings in the reference corpus. Failures
// are reported inside the returned text, never as an error.
type PairingFinder interface {
	FindPairings(ctx context.Context, query string) string
}
