package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/imgx-dev/imgx/internal/batch"
	"github.com/imgx-dev/imgx/internal/codec"
)

func sampleResult() *batch.Result[codec.Result] {
	return &batch.Result[codec.Result]{
		Results: []codec.Result{
			{Source: "a.png", OutputPath: "a.jpg", InputBytes: 2000, OutputBytes: 500},
			{Source: "c.png", OutputPath: "c.jpg", InputBytes: 3000, OutputBytes: 1500},
		},
		Errors: []batch.Failure{
			{Item: batch.Item{Path: "b.png", Index: 1}, Index: 1, Err: errors.New("corrupt header"), Completed: 2, Total: 3},
		},
		Total:      3,
		Successful: 2,
		Failed:     1,
	}
}

func TestBuildSummary(t *testing.T) {
	started := time.Now()
	s := Build("run-1", "jpeg", started, 5*time.Second, sampleResult())
	if s.Total != 3 || s.Successful != 2 || s.Failed != 1 {
		t.Errorf("counts wrong: %+v", s)
	}
	if s.InputBytes != 5000 || s.OutputBytes != 2000 {
		t.Errorf("byte totals wrong: %+v", s)
	}
	if len(s.Failures) != 1 || s.Failures[0].Path != "b.png" || s.Failures[0].Index != 1 {
		t.Errorf("failures wrong: %+v", s.Failures)
	}
}

func TestRenderText(t *testing.T) {
	s := Build("run-1", "jpeg", time.Now(), 5*time.Second, sampleResult())
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"converted 2/3 files to jpeg", "warning: b.png: corrupt header", "saved"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	s := Build("run-1", "jpeg", time.Now().UTC(), 5*time.Second, sampleResult())
	var buf bytes.Buffer
	if err := s.RenderJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var back Summary
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back.RunID != s.RunID || back.Total != s.Total || len(back.Failures) != 1 {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestProgressLoggerWritesStructuredEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := ProgressLogger{Log: zerolog.New(&buf)}
	logger.TaskSucceeded(batch.Progress[codec.Result]{
		Item:       batch.Item{Path: "a.png"},
		Completed:  1,
		Total:      3,
		Percentage: 1.0 / 3 * 100,
		Result:     codec.Result{OutputPath: "a.jpg"},
	})
	logger.TaskFailed(batch.Failure{
		Item:      batch.Item{Path: "b.png"},
		Err:       errors.New("corrupt"),
		Completed: 2,
		Total:     3,
	})
	out := buf.String()
	for _, want := range []string{`"file":"a.png"`, `"output":"a.jpg"`, `"percentage":33.33333333333333`, `"file":"b.png"`, "conversion failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
