package reporters

import (
	"context"
	"fmt"
)

// TypeJournal identifies the local journal reporter. It is wired by the
// runtime from application config rather than from the reporters file.
const TypeJournal = "journal"

// Recorder persists raw failure payloads keyed by failure id.
type Recorder interface {
	Record(id string, payload []byte) error
}

type journalReporter struct {
	recorder Recorder
}

// NewJournal returns a reporter that writes failures into rec.
func NewJournal(rec Recorder) Reporter {
	return &journalReporter{recorder: rec}
}

func (j *journalReporter) ID() string   { return TypeJournal }
func (j *journalReporter) Type() string { return TypeJournal }

func (j *journalReporter) Report(_ context.Context, f Failure) error {
	if j.recorder == nil {
		return nil
	}
	body, err := marshalFailure(f)
	if err != nil {
		return err
	}
	if err := j.recorder.Record(f.ID, []byte(body)); err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}
