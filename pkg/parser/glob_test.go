package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(sub, "deep.log"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("simple glob", func(t *testing.T) {
		got, err := ExpandGlobs([]string{filepath.Join(dir, "*.log")})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("recursive glob", func(t *testing.T) {
		got, err := ExpandGlobs([]string{filepath.Join(dir, "**", "*.log")})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Errorf("got %d matches, want 3: %v", len(got), got)
		}
	})

	t.Run("no match keeps literal", func(t *testing.T) {
		got, err := ExpandGlobs([]string{filepath.Join(dir, "missing.log")})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0] != filepath.Join(dir, "missing.log") {
			t.Errorf("got %v, want literal path back", got)
		}
	})

	t.Run("deduplicates", func(t *testing.T) {
		got, err := ExpandGlobs([]string{
			filepath.Join(dir, "a.log"),
			filepath.Join(dir, "*.log"),
		})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}
