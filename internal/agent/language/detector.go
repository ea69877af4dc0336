// Package language tags user text with the code of the language the reply
// should be written in.
package language

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	logx "github.com/chef-innovativo/server/pkg/logger"
)

// Supported lists the codes the recipe generator has instructions for.
var Supported = map[string]whatlanggo.Lang{
	"it": whatlanggo.Ita,
	"en": whatlanggo.Eng,
	"fr": whatlanggo.Fra,
	"es": whatlanggo.Spa,
	"de": whatlanggo.Deu,
	"pt": whatlanggo.Por,
	"zh": whatlanggo.Cmn,
	"ja": whatlanggo.Jpn,
	"ko": whatlanggo.Kor,
	"ru": whatlanggo.Rus,
	"ar": whatlanggo.Arb,
}

type Detector struct {
	fallback string
	opts     whatlanggo.Options
}

// NewDetector returns a detector restricted to the supported languages.
// Unknown fallback codes are replaced by "en".
func NewDetector(fallback string) *Detector {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if _, ok := Supported[fallback]; !ok {
		fallback = "en"
	}
	whitelist := make(map[whatlanggo.Lang]bool, len(Supported))
	for _, l := range Supported {
		whitelist[l] = true
	}
	return &Detector{
		fallback: fallback,
		opts:     whatlanggo.Options{Whitelist: whitelist},
	}
}

// Fallback returns the code used when detection fails.
func (d *Detector) Fallback() string {
	return d.fallback
}

// Detect returns a best-effort ISO 639-1 code for text, or the fallback
// code when the text is empty or its language cannot be told.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return d.fallback
	}

	info := whatlanggo.DetectWithOptions(text, d.opts)
	if info.Lang < 0 || info.Confidence <= 0 {
		logx.Debug().Str("component", "language").Msg("language not detected, using fallback")
		return d.fallback
	}
	code := info.Lang.Iso6391()
	if _, ok := Supported[code]; !ok {
		return d.fallback
	}

	logx.Debug().
		Str("component", "language").
		Str("code", code).
		Float64("confidence", info.Confidence).
		Bool("reliable", info.IsReliable()).
		Msg("language detected")
	return code
}
