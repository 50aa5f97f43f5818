package models

import "encoding/json"

// Option is one lettered answer choice extracted from a question's free text.
// Letters are single uppercase Latin or Cyrillic characters. The extractor
// neither deduplicates letters nor requires them to be contiguous.
type Option struct {
	Letter string
	Text   string
}

// QuestionRecord is one unit of input work. ID is the raw JSON scalar from
// the input document, passed through byte-for-byte and never interpreted;
// nil means the record carried no id.
type QuestionRecord struct {
	ID       json.RawMessage
	Question string
	Image    ImageBlob
}

// ResultRecord is the one-per-resolvable-id output unit. An empty Answer is
// a valid, meaningful result (no confident choice).
type ResultRecord struct {
	ID     json.RawMessage `json:"id"`
	Answer string          `json:"answer"`
}
