package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"plain", "chicken, lemon, garlic", []string{"chicken", "lemon", "garlic"}},
		{"quoted", `"chicken, lemon, herbs, garlic"`, []string{"chicken", "lemon", "herbs", "garlic"}},
		{"empty tokens", " , basil,, ,mint.", []string{"basil", "mint"}},
		{"bullets", "- pasta\n- lemon\n- parmesan", []string{"pasta", "lemon", "parmesan"}},
		{"multi word", "olive oil, sea salt", []string{"olive oil", "sea salt"}},
		{"nothing", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIngredients(tt.reply)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIngredientsTruncatesLongReplies(t *testing.T) {
	got := ParseIngredients(strings.Repeat("è", maxReplyLen))
	assert.Len(t, got, 1)
	assert.LessOrEqual(t, len(got[0]), maxReplyLen)
}

func TestPairingQuery(t *testing.T) {
	assert.Equal(t, "pairings for chicken lemon garlic", PairingQuery([]string{"chicken", "lemon", "garlic", "thyme"}))
	assert.Equal(t, "pairings for basil", PairingQuery([]string{"basil"}))
}
