package scrape

import (
	"strings"
	"unicode"

	model "github.com/okian/fightmatch/internal/domain/model"
)

// WinnerPolicy decides how an ambiguous result flag is read.
type WinnerPolicy int

const (
	// PolicyStrict leaves the winner unknown unless the flag names exactly
	// one outcome.
	PolicyStrict WinnerPolicy = iota
	// PolicyFirstMatch falls back to substring checks in the order
	// W, L, D, NC.
	PolicyFirstMatch
)

// ParsePolicy maps "strict" and "first_match" to a policy. Anything else is strict.
func ParsePolicy(s string) WinnerPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "first_match") {
		return PolicyFirstMatch
	}
	return PolicyStrict
}

// String returns the configuration spelling of the policy.
func (p WinnerPolicy) String() string {
	if p == PolicyFirstMatch {
		return "first_match"
	}
	return "strict"
}

var tokenOutcomes = map[string]model.Winner{ //nolint:gochecknoglobals // lookup table
	"W":    model.WinnerRed,
	"WIN":  model.WinnerRed,
	"L":    model.WinnerBlue,
	"LOSS": model.WinnerBlue,
	"D":    model.WinnerDraw,
	"DRAW": model.WinnerDraw,
	"NC":   model.WinnerNC,
}

// firstMatchOrder is checked by substring when tokens are ambiguous.
var firstMatchOrder = []struct { //nolint:gochecknoglobals // lookup table
	needle string
	winner model.Winner
}{
	{"W", model.WinnerRed},
	{"L", model.WinnerBlue},
	{"D", model.WinnerDraw},
	{"NC", model.WinnerNC},
}

// InferWinner reads a result flag listed against the red corner.
func InferWinner(flag string, policy WinnerPolicy) model.Winner {
	text := strings.ToUpper(strings.TrimSpace(flag))
	if text == "" {
		return model.WinnerUnknown
	}
	tokens := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })

	found := make(map[model.Winner]struct{}, 2)
	for i, tok := range tokens {
		if w, ok := tokenOutcomes[tok]; ok {
			found[w] = struct{}{}
		}
		if tok == "NO" && i+1 < len(tokens) && tokens[i+1] == "CONTEST" {
			found[model.WinnerNC] = struct{}{}
		}
	}
	if len(found) == 1 {
		for w := range found {
			return w
		}
	}

	if policy != PolicyFirstMatch {
		return model.WinnerUnknown
	}
	for _, m := range firstMatchOrder {
		if strings.Contains(text, m.needle) {
			return m.winner
		}
	}
	return model.WinnerUnknown
}
