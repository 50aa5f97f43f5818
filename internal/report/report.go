// Package report renders an optional human-readable summary of a finished
// batch: a Markdown document, or that Markdown pushed through goldmark into
// an embedded HTML shell when the target path ends in .html.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"mcq-baseline/internal/decide"
	"mcq-baseline/internal/models"
	"mcq-baseline/internal/pipeline"
)

//go:embed shell.html
var htmlShell string

const shellPlaceholder = "<!-- REPORT BODY -->"

// Summary carries everything the report needs about one run.
type Summary struct {
	InputPath  string
	OutputPath string
	Elapsed    time.Duration
	Results    []models.ResultRecord
	Stats      pipeline.RunStats
}

// Write renders the summary to path. The extension picks the format:
// .html renders Markdown to HTML inside the embedded shell, anything else
// is written as Markdown.
func Write(path string, sum Summary) error {
	md := Markdown(sum)

	var payload []byte
	if strings.EqualFold(filepath.Ext(path), ".html") {
		html, err := renderHTML(md)
		if err != nil {
			return err
		}
		payload = html
	} else {
		payload = []byte(md)
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// Markdown builds the report document.
func Markdown(sum Summary) string {
	var b strings.Builder

	b.WriteString("# Answer Selection Report\n\n")
	fmt.Fprintf(&b, "- Input: `%s`\n", sum.InputPath)
	fmt.Fprintf(&b, "- Output: `%s`\n", sum.OutputPath)
	fmt.Fprintf(&b, "- Records: %d\n", sum.Stats.Total)
	fmt.Fprintf(&b, "- Answered: %d\n", sum.Stats.Answered())
	fmt.Fprintf(&b, "- Failed (empty answer emitted): %d\n", sum.Stats.Failed)
	fmt.Fprintf(&b, "- Dropped (no resolvable id): %d\n", sum.Stats.Dropped)
	fmt.Fprintf(&b, "- Elapsed: %s\n\n", sum.Elapsed.Round(time.Millisecond))

	b.WriteString("## Rule hits\n\n")
	b.WriteString("| Rule | Records |\n|---|---|\n")
	for _, rule := range []decide.Rule{
		decide.RuleLiquidLevel,
		decide.RuleIndeterminate,
		decide.RuleFirstOption,
		decide.RuleNoOptions,
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", rule, sum.Stats.Rules[rule])
	}
	b.WriteString("\n")

	b.WriteString("## Answers\n\n")
	if len(sum.Results) == 0 {
		b.WriteString("No results.\n")
		return b.String()
	}

	b.WriteString("| ID | Answer |\n|---|---|\n")
	for _, res := range sum.Results {
		id := "null"
		if res.ID != nil {
			id = string(res.ID)
		}
		answer := res.Answer
		if answer == "" {
			answer = "(empty)"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(id), escapeCell(answer))
	}

	return b.String()
}

func renderHTML(markdown string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render report markdown: %w", err)
	}

	if !strings.Contains(htmlShell, shellPlaceholder) {
		return nil, fmt.Errorf("report shell is missing its body placeholder")
	}
	return []byte(strings.Replace(htmlShell, shellPlaceholder, body.String(), 1)), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
