// Package sanitize flattens HTML markup in question text to plain text so
// the option extractor sees line-anchored "X." markers. It is an opt-in
// pre-step; the reference pipeline runs on raw text.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// No whitespace allowed after "<" so inequalities like "a < b" in question
// text are not mistaken for markup.
var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)

// Line breaks are injected before parsing so block boundaries survive
// goquery's text extraction.
var blockBreaker = strings.NewReplacer(
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"</p>", "</p>\n",
	"</div>", "</div>\n",
	"</li>", "</li>\n",
	"</tr>", "</tr>\n",
	"</h1>", "</h1>\n",
	"</h2>", "</h2>\n",
	"</h3>", "</h3>\n",
)

// LooksLikeHTML reports whether the text plausibly carries markup worth
// stripping.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// StripHTML parses the markup and returns its visible text, with block-level
// boundaries and <br> turned into newlines.
func StripHTML(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockBreaker.Replace(s)))
	if err != nil {
		return "", err
	}

	lines := strings.Split(doc.Text(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n"), nil
}
