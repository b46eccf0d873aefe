package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFilesFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "ignore.txt"),
	)
	got, err := Files([]string{dir}, Options{Extensions: []string{".png", ".jpg"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.JPG")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "deep", "c.png")
	touch(t, filepath.Join(dir, "a.png"), nested)

	flat, err := Files([]string{dir}, Options{Extensions: []string{".png"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 1 {
		t.Errorf("non-recursive walk should skip subdirectories, got %v", flat)
	}

	deep, err := Files([]string{dir}, Options{Extensions: []string{".png"}, Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 2 || deep[1] != nested {
		t.Errorf("recursive walk missed files: %v", deep)
	}
}

func TestFilesPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "cat-01.png"), filepath.Join(dir, "dog-01.png"))
	got, err := Files([]string{dir}, Options{Pattern: "cat-*.png"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "cat-01.png" {
		t.Errorf("pattern match failed: %v", got)
	}
}

func TestFilesExplicitFileAndDedup(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	touch(t, p)
	got, err := Files([]string{p, dir}, Options{Extensions: []string{".png"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected one de-duplicated entry, got %v", got)
	}
}

func TestFilesMissingRoot(t *testing.T) {
	if _, err := Files([]string{filepath.Join(t.TempDir(), "gone")}, Options{}); err == nil {
		t.Fatal("expected error for missing root")
	}
}
