package graph

import (
	"fmt"

	"github.com/chef-innovativo/server/internal/agent/model"
)

// Predicate inspects the run state to decide whether a transition applies.
type Predicate func(*model.RecipeState) bool

// Transition moves the run to Next when When holds.
type Transition struct {
	When Predicate
	Next model.Step
}

func always(*model.RecipeState) bool { return true }

func hasDesire(s *model.RecipeState) bool { return s.HasDesire() }

func hasBaseRecipe(s *model.RecipeState) bool { return s.BaseRecipeText != "" }

func hasFailed(s *model.RecipeState) bool { return s.Failed() }

func hasIngredients(s *model.RecipeState) bool { return len(s.ExtractedIngredients) > 0 }

func hasRecipe(s *model.RecipeState) bool { return s.Succeeded() }

// Transitions is the recipe state machine. Rows are tried in order and the
// first matching predicate wins.
var Transitions = map[model.Step][]Transition{
	model.StepStart: {
		{When: hasDesire, Next: model.StepRetrieveBase},
		{When: always, Next: model.StepClarify},
	},
	model.StepRetrieveBase: {
		{When: hasBaseRecipe, Next: model.StepExtractIngredients},
		{When: always, Next: model.StepClarify},
	},
	model.StepExtractIngredients: {
		{When: hasFailed, Next: model.StepClarify},
		{When: hasIngredients, Next: model.StepRetrievePairings},
		{When: always, Next: model.StepGenerateRecipe},
	},
	model.StepRetrievePairings: {
		{When: always, Next: model.StepGenerateRecipe},
	},
	model.StepGenerateRecipe: {
		{When: hasRecipe, Next: model.StepDone},
		{When: always, Next: model.StepClarify},
	},
	model.StepClarify: {
		{When: always, Next: model.StepDone},
	},
}

// Next returns the step that follows step for the given state.
func Next(step model.Step, s *model.RecipeState) (model.Step, error) {
	if s == nil {
		return "", fmt.Errorf("next after %s: nil state", step)
	}
	rows, ok := Transitions[step]
	if !ok {
		return "", fmt.Errorf("next after %s: unknown step", step)
	}
	for _, t := range rows {
		if t.When(s) {
			return t.Next, nil
		}
	}
	return "", fmt.Errorf("next after %s: no transition matched", step)
}

// targets lists the distinct next steps reachable from step, in table order.
func targets(step model.Step) []model.Step {
	var out []model.Step
	seen := map[model.Step]bool{}
	for _, t := range Transitions[step] {
		if !seen[t.Next] {
			seen[t.Next] = true
			out = append(out, t.Next)
		}
	}
	return out
}
