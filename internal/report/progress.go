package report

import (
	"github.com/rs/zerolog"

	"github.com/imgx-dev/imgx/internal/batch"
	"github.com/imgx-dev/imgx/internal/codec"
)

// ProgressLogger streams per-file progress to a zerolog logger. It satisfies
// batch.Observer and composes with other observers via batch.Observe, so the
// scheduler itself never touches the console.
type ProgressLogger struct {
	Log zerolog.Logger
}

func (p ProgressLogger) TaskSucceeded(pr batch.Progress[codec.Result]) {
	p.Log.Info().
		Str("file", pr.Item.Path).
		Str("output", pr.Result.OutputPath).
		Int("completed", pr.Completed).
		Int("total", pr.Total).
		Float64("percentage", pr.Percentage).
		Dur("elapsed", pr.Duration).
		Msg("converted")
}

func (p ProgressLogger) TaskFailed(f batch.Failure) {
	p.Log.Warn().
		Str("file", f.Item.Path).
		Int("completed", f.Completed).
		Int("total", f.Total).
		Dur("elapsed", f.Duration).
		Err(f.Err).
		Msg("conversion failed")
}
