package language

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Pivot is the language used internally for retrieval and re-ranking,
// regardless of the language the user asked in.
const Pivot = "en"

// Detector identifies the language of incoming queries. Detection is
// advisory: any input it cannot classify is treated as the pivot language.
type Detector interface {
	// Detect returns a lowercase ISO 639-1 language code for the text.
	Detect(text string) string
}

// linguaDetector implements Detector using a statistical n-gram model.
type linguaDetector struct {
	detector lingua.LanguageDetector
}

// knownLanguages maps ISO 639-1 codes to the languages the detector can be
// configured with. Extend as new corpora are added.
var knownLanguages = map[string]lingua.Language{
	"en": lingua.English,
	"tr": lingua.Turkish,
	"de": lingua.German,
	"fr": lingua.French,
	"es": lingua.Spanish,
	"ar": lingua.Arabic,
}

// NewDetector builds a detector restricted to the given ISO 639-1 codes.
// The pivot language is always included so detection can fall through to it.
func NewDetector(codes []string) (Detector, error) {
	seen := map[string]bool{}
	var languages []lingua.Language
	for _, code := range append([]string{Pivot}, codes...) {
		code = strings.ToLower(strings.TrimSpace(code))
		if seen[code] {
			continue
		}
		lang, ok := knownLanguages[code]
		if !ok {
			return nil, fmt.Errorf("unsupported language code: %q", code)
		}
		seen[code] = true
		languages = append(languages, lang)
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("need at least two languages, got %d", len(languages))
	}

	return &linguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}, nil
}

// Detect returns the detected language code, defaulting to the pivot
// language for empty input or when no language can be identified.
func (d *linguaDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return Pivot
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Pivot
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
