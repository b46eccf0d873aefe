package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imgx-dev/imgx/internal/config"
	"github.com/imgx-dev/imgx/internal/history"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	root.SetContext(context.Background())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	// Capture fmt.Printf output that goes straight to stdout.
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	execErr := root.Execute()
	w.Close()
	os.Stdout = old
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatal(err)
	}
	return out.String() + buf.String(), execErr
}

// TestFullWorkflow tests the complete discover-convert-report flow
func TestFullWorkflow(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dataDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dataDir, "data"))

	srcDir := filepath.Join(dataDir, "images")
	writePNG(t, filepath.Join(srcDir, "a.png"))
	writePNG(t, filepath.Join(srcDir, "b.png"))
	writePNG(t, filepath.Join(srcDir, "nested", "c.png"))
	// Not an image; decoding must fail without aborting the others.
	if err := os.WriteFile(filepath.Join(srcDir, "broken.png"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dataDir, "out")
	out, err := runCLI(t, "convert", srcDir,
		"--to", "jpeg", "--out", outDir, "--recursive", "--quiet", "--json")
	if err != nil {
		t.Fatalf("convert failed: %v\n%s", err, out)
	}

	var summary struct {
		Total      int `json:"total"`
		Successful int `json:"successful"`
		Failed     int `json:"failed"`
		Failures   []struct {
			Path string `json:"path"`
		} `json:"failures"`
	}
	if err := json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &summary); err != nil {
		t.Fatalf("summary not valid JSON: %v\n%s", err, out)
	}
	if summary.Total != 4 || summary.Successful != 3 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 || filepath.Base(summary.Failures[0].Path) != "broken.png" {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	// The run must have landed in history.
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	store, err := history.NewStore(cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Total != 4 || runs[0].Failed != 1 {
		t.Fatalf("history not recorded: %+v", runs)
	}
}

func TestCLIFormats(t *testing.T) {
	out, err := runCLI(t, "formats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".webp") || !strings.Contains(out, "jpeg") {
		t.Errorf("formats output incomplete:\n%s", out)
	}
}

func TestCLIInitWritesConfig(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	if _, err := runCLI(t, "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(base, "imgx", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}

func TestCLIConvertRejectsUnknownFormat(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	if _, err := runCLI(t, "convert", dir, "--to", "heic", "--quiet"); err == nil {
		t.Fatal("expected error for unsupported target format")
	}
}

func TestCLIConvertNoInputs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := runCLI(t, "convert"); err == nil {
		t.Fatal("expected error when no inputs are given")
	}
}
