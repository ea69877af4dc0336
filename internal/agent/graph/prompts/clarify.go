package prompts

import (
	"fmt"

	errx "github.com/chef-innovativo/server/internal/core/error"
)

type clarificationSet struct {
	rateLimit   string
	noDesire    string
	moreDetails string // %s is the user's desire
}

var clarifications = map[string]clarificationSet{
	"it": {
		rateLimit:   "Ho raggiunto il limite di richieste. Attendi un momento e riprova.",
		noDesire:    "Cosa vorresti cucinare? Descrivi il piatto che hai in mente.",
		moreDetails: "Ho bisogno di più dettagli per creare la tua ricetta. Potresti essere più specifico riguardo '%s'?",
	},
	"en": {
		rateLimit:   "I've hit a rate limit. Please wait a moment and try again.",
		noDesire:    "What would you like to cook? Please describe the dish you have in mind.",
		moreDetails: "I need more details to create your recipe. Could you be more specific about '%s'?",
	},
	"fr": {
		rateLimit:   "J'ai atteint une limite de débit. Veuillez attendre un moment et réessayer.",
		noDesire:    "Que souhaitez-vous cuisiner ? Veuillez décrire le plat que vous avez en tête.",
		moreDetails: "J'ai besoin de plus de détails pour créer votre recette. Pourriez-vous être plus précis sur '%s'?",
	},
	"es": {
		rateLimit:   "He alcanzado un límite de velocidad. Por favor, espera un momento e inténtalo de nuevo.",
		noDesire:    "¿Qué te gustaría cocinar? Describe el plato que tienes en mente.",
		moreDetails: "Necesito más detalles para crear tu receta. ¿Podrías ser más específico sobre '%s'?",
	},
	"de": {
		rateLimit:   "Ich habe ein Ratenlimit erreicht. Bitte warten Sie einen Moment und versuchen Sie es erneut.",
		noDesire:    "Was möchten Sie kochen? Bitte beschreiben Sie das Gericht, das Sie sich vorstellen.",
		moreDetails: "Ich brauche mehr Details, um Ihr Rezept zu erstellen. Könnten Sie spezifischer über '%s' sein?",
	},
}

// Clarification picks the localized follow-up question: the rate-limit
// notice when throttled, the no-desire prompt when nothing was asked,
// otherwise a request for more details echoing the desire.
func Clarification(lang string, kind errx.Kind, desire string) string {
	set, ok := clarifications[normalizeCode(lang)]
	if !ok {
		set = clarifications[DefaultLanguage]
	}

	switch {
	case kind == errx.KindRateLimited:
		return set.rateLimit
	case desire == "":
		return set.noDesire
	default:
		return fmt.Sprintf(set.moreDetails, desire)
	}
}
