package model

import (
	"errors"
	"strings"

	"github.com/cloudwego/eino/schema"

	errx "github.com/chef-innovativo/server/internal/core/error"
)

// Step names a node of the recipe graph. Done is the terminal pseudo-step.
type Step string

const (
	StepStart              Step = "start"
	StepRetrieveBase       Step = "retrieve_base"
	StepExtractIngredients Step = "extract_ingredients"
	StepRetrievePairings   Step = "retrieve_pairings"
	StepGenerateRecipe     Step = "generate_recipe"
	StepClarify            Step = "clarify"
	StepDone               Step = "done"
)

// RecipeState is the record threaded through one run of the recipe graph.
// A fresh instance is created per user turn and owned by that run only;
// nodes run sequentially, so no locking is needed.
type RecipeState struct {
	SessionID string

	History []*schema.Message // messages produced during this run

	UserDesire         string
	DietaryPreferences []string

	BaseRecipeQuery string
	BaseRecipeText  string

	// nil: extraction not reached. Empty: reached, nothing extractable.
	ExtractedIngredients []string

	PairingQuery string
	PairingText  string

	FinalRecipe string

	ErrorKind    errx.Kind
	ErrorMessage string

	RetryCount        int
	AwaitingUserInput bool
	DetectedLanguage  string
	Clarification     string

	Trace        []Step
	TotalCostUSD float64
}

// TurnInput is the per-turn request handed to the graph runner.
type TurnInput struct {
	SessionID          string   `json:"session_id"`
	Desire             string   `json:"desire"`
	DietaryPreferences []string `json:"dietary_preferences"`
	// Language skips detection when set.
	Language string `json:"language,omitempty"`
}

// NewRecipeState builds the initial state for a turn.
func NewRecipeState(in TurnInput) *RecipeState {
	prefs := make([]string, 0, len(in.DietaryPreferences))
	for _, p := range in.DietaryPreferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}
	return &RecipeState{
		SessionID:          in.SessionID,
		UserDesire:         strings.TrimSpace(in.Desire),
		DietaryPreferences: prefs,
		DetectedLanguage:   strings.TrimSpace(strings.ToLower(in.Language)),
	}
}

// HasDesire reports whether the turn carries something to cook.
func (s *RecipeState) HasDesire() bool {
	return strings.TrimSpace(s.UserDesire) != ""
}

// Failed reports whether a recoverable failure was recorded.
func (s *RecipeState) Failed() bool {
	return s.ErrorKind != errx.KindNone || s.ErrorMessage != ""
}

// Succeeded reports whether the run produced a recipe.
func (s *RecipeState) Succeeded() bool {
	return s.FinalRecipe != ""
}

// Fail records a recoverable failure. Throttling causes are promoted to
// errx.KindRateLimited so later routing never inspects the message text.
func (s *RecipeState) Fail(kind errx.Kind, msg string, cause error) {
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	s.ErrorKind = errx.Classify(kind, cause)
	if s.ErrorKind != errx.KindRateLimited {
		s.ErrorKind = errx.Classify(kind, errors.New(msg))
	}
	s.ErrorMessage = msg
	s.FinalRecipe = ""
}

// Visit appends a step to the run trace.
func (s *RecipeState) Visit(step Step) {
	s.Trace = append(s.Trace, step)
}

// Visited reports whether step ran during this run.
func (s *RecipeState) Visited(step Step) bool {
	for _, v := range s.Trace {
		if v == step {
			return true
		}
	}
	return false
}

// AppendMessage records a message produced during the run.
func (s *RecipeState) AppendMessage(m *schema.Message) {
	if m == nil {
		return
	}
	s.History = append(s.History, m)
}
