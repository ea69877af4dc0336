package parsers

import (
	"strings"
	"unicode/utf8"
)

// maxReplyLen bounds how much of a model reply is parsed.
const maxReplyLen = 16 * 1024

const ingredientCutset = " \t\r\"'`*-•."

// ParseIngredients splits a comma separated model reply into ingredient
// names. Line breaks count as separators. The result is never nil.
func ParseIngredients(reply string) []string {
	if len(reply) > maxReplyLen {
		reply = reply[:maxReplyLen]
		for !utf8.ValidString(reply) {
			reply = reply[:len(reply)-1]
		}
	}

	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, ingredientCutset); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// PairingQuery builds the corpus lookup for the first three ingredients.
func PairingQuery(ingredients []string) string {
	if len(ingredients) > 3 {
		ingredients = ingredients[:3]
	}
	return "pairings for " + strings.Join(ingredients, " ")
}
