package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"mcq-baseline/internal/models"
)

// LoadRecords reads the input document and checks its shape: a single JSON
// array whose elements are decoded lazily, one record at a time, so one bad
// element cannot take down the batch.
func LoadRecords(path string) ([]json.RawMessage, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("input %s must be a JSON array of records: %w", path, err)
	}
	return items, nil
}

// decodeRecord builds a QuestionRecord from one array element. The id is
// salvaged before anything else so a malformed record can still produce its
// mandatory empty-answer result; the returned record carries the id even
// when the error is non-nil.
func decodeRecord(raw json.RawMessage) (models.QuestionRecord, error) {
	var rec models.QuestionRecord

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec, fmt.Errorf("record is not a JSON object: %w", err)
	}

	if id, ok := fields["id"]; ok && !bytes.Equal(bytes.TrimSpace(id), []byte("null")) {
		rec.ID = id
	}

	if q, ok := fields["question"]; ok {
		if err := json.Unmarshal(q, &rec.Question); err != nil {
			return rec, fmt.Errorf("question field is not a string: %w", err)
		}
	}

	if img, ok := fields["image"]; ok {
		// ImageBlob unmarshaling is best-effort and cannot fail, but keep
		// the guard in case that changes.
		if err := json.Unmarshal(img, &rec.Image); err != nil {
			rec.Image = models.ImageBlob{}
		}
	}

	return rec, nil
}

// WriteResults serializes the result collection as a single JSON document.
// Non-ASCII characters are preserved verbatim.
func WriteResults(path string, results []models.ResultRecord) error {
	if results == nil {
		results = []models.ResultRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	if err := os.WriteFile(path, bytes.TrimRight(buf.Bytes(), "\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", path, err)
	}
	return nil
}
