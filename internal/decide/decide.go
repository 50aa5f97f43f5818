// Package decide picks answer letters for a multiple-choice record using a
// fixed, ordered rule cascade over normalized option text. The cascade is a
// text-only placeholder for a richer reasoning component; it never looks at
// the record's image.
package decide

import (
	"sort"
	"strings"

	"mcq-baseline/internal/extract"
	"mcq-baseline/internal/models"
)

// Rule identifies which cascade rule produced an answer.
type Rule int

const (
	// RuleNoOptions fired because no options were extracted; the answer is "".
	RuleNoOptions Rule = iota
	// RuleLiquidLevel chose the h1=h2 option(s) of a liquid-level question.
	RuleLiquidLevel
	// RuleIndeterminate chose the "cannot be determined" option(s).
	RuleIndeterminate
	// RuleFirstOption fell back to the first extracted option.
	RuleFirstOption
)

func (r Rule) String() string {
	switch r {
	case RuleLiquidLevel:
		return "liquid-level equality"
	case RuleIndeterminate:
		return "indeterminacy"
	case RuleFirstOption:
		return "first option"
	default:
		return "no options"
	}
}

// Answer returns the concatenated answer letters for the question.
func Answer(questionText string, opts []models.Option) string {
	answer, _ := Evaluate(questionText, opts)
	return answer
}

// Evaluate runs the cascade and also reports which rule fired. Rules are
// tried in a fixed order and the first match wins:
//
//  1. Liquid-level equality: the normalized question mentions both h1 and
//     h2, the raw question mentions "level", and at least one option
//     normalizes to contain h1=h2 — return all such letters.
//  2. Indeterminacy: some option says "cannot be determined", the option set
//     contains both h1>h2 and h2>h1, and no option contains h1=h2 — return
//     the "cannot be determined" letters.
//  3. First option's letter.
//  4. Empty string when there are no options at all.
//
// Multi-letter answers are deduplicated and sorted ascending.
func Evaluate(questionText string, opts []models.Option) (string, Rule) {
	var equality []string
	hasH1GtH2 := false
	hasH2GtH1 := false

	for _, opt := range opts {
		norm := extract.Normalize(opt.Text)
		if strings.Contains(norm, "h1=h2") {
			equality = append(equality, opt.Letter)
		}
		if strings.Contains(norm, "h1>h2") {
			hasH1GtH2 = true
		}
		if strings.Contains(norm, "h2>h1") {
			hasH2GtH1 = true
		}
	}

	if looksLikeLiquidLevel(questionText) && len(equality) > 0 {
		return joinLetters(equality), RuleLiquidLevel
	}

	var undetermined []string
	for _, opt := range opts {
		if strings.Contains(strings.ToLower(opt.Text), "cannot be determined") {
			undetermined = append(undetermined, opt.Letter)
		}
	}
	if len(undetermined) > 0 && hasH1GtH2 && hasH2GtH1 && len(equality) == 0 {
		return joinLetters(undetermined), RuleIndeterminate
	}

	if len(opts) > 0 {
		return opts[0].Letter, RuleFirstOption
	}

	return "", RuleNoOptions
}

// looksLikeLiquidLevel classifies a question as a liquid-level comparison:
// both variable tokens h1 and h2 appear in the normalized text, and the word
// "level" appears in the raw text.
func looksLikeLiquidLevel(questionText string) bool {
	norm := extract.Normalize(questionText)
	return strings.Contains(norm, "h1") &&
		strings.Contains(norm, "h2") &&
		strings.Contains(strings.ToLower(questionText), "level")
}

func joinLetters(letters []string) string {
	seen := make(map[string]struct{}, len(letters))
	unique := make([]string, 0, len(letters))
	for _, letter := range letters {
		if _, ok := seen[letter]; ok {
			continue
		}
		seen[letter] = struct{}{}
		unique = append(unique, letter)
	}
	sort.Strings(unique)
	return strings.Join(unique, "")
}
