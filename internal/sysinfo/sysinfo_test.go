package sysinfo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParallelismIsPositive(t *testing.T) {
	if got := (Host{}).Parallelism(); got < 1 {
		t.Fatalf("Parallelism() = %d, want >= 1", got)
	}
}

func TestReadMemAvailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meminfo")
	content := "MemTotal:       16384000 kB\nMemFree:         1024000 kB\nMemAvailable:    8192000 kB\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if got, want := readMemAvailable(path), uint64(8192000*1024); got != want {
		t.Errorf("readMemAvailable = %d, want %d", got, want)
	}
}

func TestReadMemAvailableMissingFile(t *testing.T) {
	if got := readMemAvailable(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("expected 0 for missing file, got %d", got)
	}
}

func TestReadMemAvailableMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meminfo")
	if err := os.WriteFile(path, []byte("MemAvailable: lots kB\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := readMemAvailable(path); got != 0 {
		t.Errorf("expected 0 for malformed value, got %d", got)
	}
}
