package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// aliases rewrites whole normalized strings to their canonical spelling.
// Every value must itself be a fixed point of Normalize, otherwise
// idempotence breaks.
var aliases = map[string]string{
	"dnb":           "drum & bass",
	"d&b":           "drum & bass",
	"d & b":         "drum & bass",
	"drum and bass": "drum & bass",
	"drum n bass":   "drum & bass",
	"drumnbass":     "drum & bass",
	"liquid dnb":    "liquid drum & bass",
	"prog house":    "progressive house",
	"prog trance":   "progressive trance",
	"chill out":     "chillout",
	"chill":         "chillout",
	"psy trance":    "psytrance",
	"intelligent dance music": "idm",
}

// diacriticFolder strips combining marks after NFD decomposition.
var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize canonicalizes a metadata string for comparison: diacritic
// folding, Unicode lowercasing, punctuation stripping (keeping '&' and '-'),
// whitespace collapsing and alias substitution. It is pure, total and
// idempotent; garbage in yields an empty string, never an error.
func Normalize(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		folded = text
	}
	lowered := strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '&' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	collapsed := strings.Join(strings.Fields(b.String()), " ")
	if canonical, ok := aliases[collapsed]; ok {
		return canonical
	}
	return collapsed
}
