// Package report turns finished batch runs into human- or machine-readable
// summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/imgx-dev/imgx/internal/batch"
	"github.com/imgx-dev/imgx/internal/codec"
)

// FileError is one per-file failure, kept in the order it occurred.
type FileError struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	Error string `json:"error"`
}

// Summary aggregates one conversion run.
type Summary struct {
	RunID       string        `json:"run_id"`
	Format      string        `json:"format"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Total       int           `json:"total"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	InputBytes  int64         `json:"input_bytes"`
	OutputBytes int64         `json:"output_bytes"`
	Failures    []FileError   `json:"failures,omitempty"`
}

// Build assembles a Summary from the scheduler's result. Successes arrive in
// input order, failures in completion order; both orders are preserved here.
func Build(runID, format string, startedAt time.Time, duration time.Duration, res *batch.Result[codec.Result]) Summary {
	s := Summary{
		RunID:      runID,
		Format:     format,
		StartedAt:  startedAt,
		Duration:   duration,
		Total:      res.Total,
		Successful: res.Successful,
		Failed:     res.Failed,
	}
	for _, r := range res.Results {
		s.InputBytes += r.InputBytes
		s.OutputBytes += r.OutputBytes
	}
	for _, f := range res.Errors {
		s.Failures = append(s.Failures, FileError{
			Path:  f.Item.Path,
			Index: f.Index,
			Error: f.Err.Error(),
		})
	}
	return s
}

// Render writes a plain text summary. Per-file failures are rendered as
// warnings; the batch itself still counts as a completed run.
func (s Summary) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "converted %d/%d files to %s in %s\n",
		s.Successful, s.Total, s.Format, s.Duration.Round(time.Millisecond)); err != nil {
		return err
	}
	if s.Successful > 0 {
		delta := s.InputBytes - s.OutputBytes
		verb := "saved"
		if delta < 0 {
			verb = "grew"
			delta = -delta
		}
		if _, err := fmt.Fprintf(w, "%s in, %s out (%s %s)\n",
			humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)),
			verb, humanize.Bytes(uint64(delta))); err != nil {
			return err
		}
	}
	for _, f := range s.Failures {
		if _, err := fmt.Fprintf(w, "warning: %s: %s\n", f.Path, f.Error); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON writes the summary as indented JSON.
func (s Summary) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
