package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/extract_ingredients.txt
var extractIngredientsPrompt string

//go:embed template/recipe.txt
var recipePrompt string

const (
	noDietaryPreferences = "none"
	noPairings           = "No specific pairings found"
)

// RecipeVars are the inputs of the recipe generation prompt.
type RecipeVars struct {
	Desire             string
	DietaryPreferences []string
	BaseRecipe         string
	Pairings           string
	Language           string
}

// RenderExtractIngredients renders the extraction prompt via the eino prompt
// component so prompt callbacks fire.
func RenderExtractIngredients(ctx context.Context, baseRecipe string) ([]*schema.Message, error) {
	return render(ctx, "extract ingredients", extractIngredientsPrompt, map[string]any{
		"BaseRecipe": baseRecipe,
	})
}

// RenderRecipe renders the generation prompt in the target language.
func RenderRecipe(ctx context.Context, v RecipeVars) ([]*schema.Message, error) {
	prefs := noDietaryPreferences
	if len(v.DietaryPreferences) > 0 {
		prefs = strings.Join(v.DietaryPreferences, ", ")
	}
	pairings := v.Pairings
	if strings.TrimSpace(pairings) == "" {
		pairings = noPairings
	}
	lang := normalizeCode(v.Language)
	if lang == "" {
		lang = DefaultLanguage
	}

	return render(ctx, "recipe", recipePrompt, map[string]any{
		"LanguageInstruction": LanguageInstruction(lang),
		"Desire":              v.Desire,
		"DietaryPreferences":  prefs,
		"BaseRecipe":          v.BaseRecipe,
		"Pairings":            pairings,
		"Language":            lang,
	})
}

func render(ctx context.Context, name, text string, vars map[string]any) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(schema.GoTemplate, schema.UserMessage(text))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs, nil
}
