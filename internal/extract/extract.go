package extract

import (
	"regexp"
	"strings"

	"mcq-baseline/internal/models"
)

var (
	// Latin and Cyrillic uppercase only. Broader Unicode coverage is
	// deliberately not attempted; expected outputs are defined relative to
	// exactly this pair of alphabets.
	markerPattern     = regexp.MustCompile(`[A-ZА-Я]\.`)
	lineMarkerPattern = regexp.MustCompile(`\n[A-ZА-Я]\.`)
	fallbackPattern   = regexp.MustCompile(`^([A-ZА-Я])\.\s*(.+)$`)
)

// Options extracts lettered answer choices from free question text.
//
// Primary pass: the first option starts at the first "X." marker anywhere in
// the text; each option's text runs up to the next newline that is
// immediately followed by another "X." marker, so option text may span
// lines. If the primary pass matches anything, its result is final.
// Otherwise a per-line fallback collects lines of the form "X. text".
//
// A letter followed by a period mid-sentence (an abbreviation, say) is
// misdetected as a marker. That is an accepted limitation of the heuristic,
// not something to silently repair.
func Options(questionText string) []models.Option {
	text := normalizeLineEndings(questionText)

	if loc := markerPattern.FindStringIndex(text); loc != nil {
		return spanOptions(text, loc)
	}

	var opts []models.Option
	for _, line := range strings.Split(text, "\n") {
		m := fallbackPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			opts = append(opts, models.Option{Letter: m[1], Text: strings.TrimSpace(m[2])})
		}
	}
	return opts
}

// spanOptions walks the text marker by marker, starting from the first match
// of markerPattern. The marker's period is a single byte, so the letter is
// everything before it even for two-byte Cyrillic letters.
func spanOptions(text string, first []int) []models.Option {
	var opts []models.Option

	start := first
	for {
		letter := text[start[0] : start[1]-1]
		tail := text[start[1]:]

		next := lineMarkerPattern.FindStringIndex(tail)
		if next == nil {
			opts = append(opts, models.Option{Letter: letter, Text: strings.TrimSpace(tail)})
			return opts
		}

		opts = append(opts, models.Option{Letter: letter, Text: strings.TrimSpace(tail[:next[0]])})

		// Re-anchor on the marker that terminated this option, skipping
		// its leading newline.
		start = []int{start[1] + next[0] + 1, start[1] + next[1]}
	}
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
