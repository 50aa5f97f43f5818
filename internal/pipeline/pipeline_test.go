package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mcq-baseline/internal/decide"
	"mcq-baseline/internal/imaging"
	"mcq-baseline/internal/models"
)

func newRunner(workers int) *Runner {
	return &Runner{
		Processor: &Processor{Decoder: imaging.Disabled()},
		Workers:   workers,
		Quiet:     true,
		Log:       zerolog.Nop(),
	}
}

func writeInput(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func TestLoadRecordsRejectsNonArray(t *testing.T) {
	path := writeInput(t, `{"not": "an array"}`)
	if _, err := LoadRecords(path); err == nil {
		t.Fatalf("expected an error for a non-array document")
	}
}

func TestLoadRecordsMissingFile(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected an error for a missing input file")
	}
}

func TestRunBasicBatch(t *testing.T) {
	path := writeInput(t, `[
		{"id": 1, "question": "In the two connected vessels, compare the liquid levels h1 and h2.\nA. h1 > h2\nB. h1 < h2\nC. h1 = h2"},
		{"id": 2, "question": "Compare h1 and h2 in the tubes.\nA. h1>h2\nB. h2>h1\nC. Cannot be determined"},
		{"id": 3, "question": "Pick one.\nA. foo\nB. bar"},
		{"id": 4, "question": "No parsable options in here."}
	]`)

	items, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, stats := newRunner(1).Run(items)

	want := []models.ResultRecord{
		{ID: json.RawMessage("1"), Answer: "C"},
		{ID: json.RawMessage("2"), Answer: "C"},
		{ID: json.RawMessage("3"), Answer: "A"},
		{ID: json.RawMessage("4"), Answer: ""},
	}
	if !reflect.DeepEqual(results, want) {
		t.Fatalf("unexpected results\nwant: %v\ngot:  %v", want, results)
	}

	if stats.Total != 4 || stats.Failed != 0 || stats.Dropped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Rules[decide.RuleLiquidLevel] != 1 || stats.Rules[decide.RuleIndeterminate] != 1 ||
		stats.Rules[decide.RuleFirstOption] != 1 || stats.Rules[decide.RuleNoOptions] != 1 {
		t.Fatalf("unexpected rule counts: %+v", stats.Rules)
	}
}

func TestRunMalformedQuestionKeepsID(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": "q-7", "question": 12345}`),
	}

	results, stats := newRunner(1).Run(items)

	want := []models.ResultRecord{{ID: json.RawMessage(`"q-7"`), Answer: ""}}
	if !reflect.DeepEqual(results, want) {
		t.Fatalf("a malformed record with an id must still produce an empty answer\nwant: %v\ngot:  %v", want, results)
	}
	if stats.Failed != 1 || stats.Dropped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunNonObjectRecordIsDropped(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`"just a string"`),
		json.RawMessage(`{"id": 9, "question": "Pick.\nA. yes"}`),
	}

	results, stats := newRunner(1).Run(items)

	want := []models.ResultRecord{{ID: json.RawMessage("9"), Answer: "A"}}
	if !reflect.DeepEqual(results, want) {
		t.Fatalf("unexpected results\nwant: %v\ngot:  %v", want, results)
	}
	if stats.Dropped != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunMissingQuestionDefaultsToEmpty(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": "only-id"}`),
	}

	results, stats := newRunner(1).Run(items)

	want := []models.ResultRecord{{ID: json.RawMessage(`"only-id"`), Answer: ""}}
	if !reflect.DeepEqual(results, want) {
		t.Fatalf("unexpected results\nwant: %v\ngot:  %v", want, results)
	}
	if stats.Failed != 0 {
		t.Fatalf("a missing question is not a failure, stats: %+v", stats)
	}
}

func TestRunIgnoresImageBlob(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": 1, "question": "Pick.\nA. yes\nB. no", "image": [[[255,0,0]]]}`),
		json.RawMessage(`{"id": 2, "question": "Pick.\nA. yes\nB. no", "image": "no-such-file.png"}`),
	}

	withImages := &Runner{
		Processor: &Processor{Decoder: imaging.NewDecoder()},
		Workers:   1,
		Quiet:     true,
		Log:       zerolog.Nop(),
	}

	got, _ := withImages.Run(items)
	want, _ := newRunner(1).Run(items)

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("image data must never influence answers\nwith decoder:    %v\nwithout decoder: %v", got, want)
	}
}

func TestRunWorkerPoolPreservesOrder(t *testing.T) {
	items := make([]json.RawMessage, 0, 40)
	for i := 0; i < 40; i++ {
		raw, _ := json.Marshal(map[string]any{
			"id":       i,
			"question": "Pick one.\nA. foo\nB. bar",
		})
		items = append(items, json.RawMessage(raw))
	}

	sequential, seqStats := newRunner(1).Run(items)
	concurrent, conStats := newRunner(4).Run(items)

	if !reflect.DeepEqual(sequential, concurrent) {
		t.Fatalf("worker pool must preserve input order\nsequential: %v\nconcurrent: %v", sequential, concurrent)
	}
	if seqStats.Total != conStats.Total || seqStats.Failed != conStats.Failed {
		t.Fatalf("stats diverged: %+v vs %+v", seqStats, conStats)
	}
}

func TestProcessorStripHTML(t *testing.T) {
	rec := models.QuestionRecord{
		ID:       json.RawMessage("5"),
		Question: "<p>Compare the liquid levels h1 and h2.</p><p>A. h1 &gt; h2</p><p>C. h1 = h2</p>",
	}

	plainProc := &Processor{Decoder: imaging.Disabled()}
	res, _ := plainProc.Process(rec)
	if res.Answer == "C" {
		t.Fatalf("markup should hide the options unless stripping is enabled, got %q", res.Answer)
	}

	stripProc := &Processor{Decoder: imaging.Disabled(), StripHTML: true}
	res, rule := stripProc.Process(rec)
	if res.Answer != "C" {
		t.Fatalf("want answer %q with markup stripped, got %q", "C", res.Answer)
	}
	if rule != decide.RuleLiquidLevel {
		t.Fatalf("want rule %v, got %v", decide.RuleLiquidLevel, rule)
	}
}

func TestWriteResultsPreservesNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	results := []models.ResultRecord{
		{ID: json.RawMessage(`"вопрос-1"`), Answer: "А"},
	}

	if err := WriteResults(path, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	content := string(payload)
	if !strings.Contains(content, "вопрос-1") {
		t.Fatalf("non-ASCII id must be preserved verbatim, got %s", content)
	}
	if strings.Contains(content, `\u`) {
		t.Fatalf("output must not escape non-ASCII characters, got %s", content)
	}

	var decoded []models.ResultRecord
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(decoded, results) {
		t.Fatalf("round trip mismatch\nwant: %v\ngot:  %v", results, decoded)
	}
}

func TestWriteResultsEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	if err := WriteResults(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if strings.TrimSpace(string(payload)) != "[]" {
		t.Fatalf("want empty JSON array, got %q", string(payload))
	}
}

func TestWriteResultsUnwritablePath(t *testing.T) {
	err := WriteResults(filepath.Join(t.TempDir(), "missing-dir", "out.json"), nil)
	if err == nil {
		t.Fatalf("expected an error for an unwritable output path")
	}
}
