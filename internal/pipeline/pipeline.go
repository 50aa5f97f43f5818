// Package pipeline orchestrates the batch: decode each record, run the
// extractor and the decision cascade, and collect one result per resolvable
// id. Failures are isolated at the record boundary; the batch itself only
// fails on unreadable input or unwritable output.
package pipeline

import (
	"encoding/json"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/rs/zerolog"

	"mcq-baseline/internal/decide"
	"mcq-baseline/internal/extract"
	"mcq-baseline/internal/imaging"
	"mcq-baseline/internal/models"
	"mcq-baseline/internal/sanitize"
)

// Processor turns one question record into its result record. It never
// blocks and never retries.
type Processor struct {
	Decoder   *imaging.Decoder
	StripHTML bool
}

// Process decodes the image best-effort (the result is discarded; the call
// is kept so the interface mirrors a future version that uses it), extracts
// the options, and runs the decision cascade.
func (p *Processor) Process(rec models.QuestionRecord) (models.ResultRecord, decide.Rule) {
	_, _ = p.Decoder.Decode(rec.Image)

	question := rec.Question
	if p.StripHTML && sanitize.LooksLikeHTML(question) {
		if plain, err := sanitize.StripHTML(question); err == nil {
			question = plain
		}
	}

	opts := extract.Options(question)
	answer, rule := decide.Evaluate(question, opts)
	return models.ResultRecord{ID: rec.ID, Answer: answer}, rule
}

// RunStats aggregates what happened to a batch.
type RunStats struct {
	Total   int
	Failed  int // records that errored but still produced an empty answer
	Dropped int // records with no resolvable id, absent from the output
	Rules   map[decide.Rule]int
}

// Answered counts records that produced a non-empty answer.
func (s RunStats) Answered() int {
	return s.Rules[decide.RuleLiquidLevel] + s.Rules[decide.RuleIndeterminate] + s.Rules[decide.RuleFirstOption]
}

// Runner drives a batch through the processor. Workers <= 1 means strict
// sequential processing in input order; higher values fan records out to a
// bounded pool. Either way results land in a per-index slice, so output
// order always equals input order.
type Runner struct {
	Processor *Processor
	Workers   int
	Quiet     bool
	Log       zerolog.Logger
}

type outcome struct {
	res    *models.ResultRecord
	rule   decide.Rule
	failed bool
}

// Run processes every record and returns the ordered results plus run stats.
func (r *Runner) Run(items []json.RawMessage) ([]models.ResultRecord, RunStats) {
	var bar *pb.ProgressBar
	if !r.Quiet && len(items) > 0 {
		bar = pb.StartNew(len(items))
	}
	tick := func() {
		if bar != nil {
			bar.Increment()
		}
	}

	outcomes := make([]outcome, len(items))

	if r.Workers <= 1 {
		for i, raw := range items {
			outcomes[i] = r.processOne(raw)
			tick()
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, r.Workers)

		for i, raw := range items {
			wg.Add(1)
			go func(i int, raw json.RawMessage) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				outcomes[i] = r.processOne(raw)
				tick()
			}(i, raw)
		}
		wg.Wait()
	}

	if bar != nil {
		bar.Finish()
	}

	stats := RunStats{Total: len(items), Rules: map[decide.Rule]int{}}
	results := make([]models.ResultRecord, 0, len(items))
	for _, out := range outcomes {
		if out.failed {
			stats.Failed++
		} else {
			stats.Rules[out.rule]++
		}
		if out.res == nil {
			stats.Dropped++
			continue
		}
		results = append(results, *out.res)
	}
	return results, stats
}

// processOne isolates a single record: any decode error or panic downgrades
// to an empty-answer result when the id is resolvable, and to a dropped
// record otherwise.
func (r *Runner) processOne(raw json.RawMessage) (out outcome) {
	var id json.RawMessage

	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Error().Str("id", idLabel(id)).Msgf("panic while processing record: %v", rec)
			out = failedOutcome(id)
		}
	}()

	rec, err := decodeRecord(raw)
	id = rec.ID
	if err != nil {
		r.Log.Error().Str("id", idLabel(id)).Err(err).Msg("failed to decode record")
		return failedOutcome(id)
	}

	res, rule := r.Processor.Process(rec)
	return outcome{res: &res, rule: rule}
}

func failedOutcome(id json.RawMessage) outcome {
	if id == nil {
		return outcome{failed: true}
	}
	return outcome{res: &models.ResultRecord{ID: id, Answer: ""}, failed: true}
}

func idLabel(id json.RawMessage) string {
	if id == nil {
		return "unknown"
	}
	return string(id)
}
