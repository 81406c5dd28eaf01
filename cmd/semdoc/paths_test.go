package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<p>x</p>"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveInputs_File(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "a.html")
	touch(t, file)

	paths, err := ResolveInputs([]string{file}, []string{".html"})
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != file {
		t.Errorf("expected [%s], got %v", file, paths)
	}
}

func TestResolveInputs_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "a.html"))
	touch(t, filepath.Join(tmpDir, "b.htm"))
	touch(t, filepath.Join(tmpDir, "notes.md"))
	touch(t, filepath.Join(tmpDir, "sub", "c.html"))

	paths, err := ResolveInputs([]string{tmpDir}, []string{".html", ".htm"})
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	sort.Strings(paths)
	want := []string{filepath.Join(tmpDir, "a.html"), filepath.Join(tmpDir, "b.htm")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestResolveInputs_RecursiveGlob(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "a.html"))
	touch(t, filepath.Join(tmpDir, "x", "b.html"))
	touch(t, filepath.Join(tmpDir, "x", "y", "c.html"))
	touch(t, filepath.Join(tmpDir, "x", "y", "d.txt"))

	paths, err := ResolveInputs([]string{filepath.Join(tmpDir, "**", "*.html")}, nil)
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("expected 3 files, got %v", paths)
	}
}

func TestResolveInputs_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "a.html")
	touch(t, file)

	paths, err := ResolveInputs([]string{file, filepath.Join(tmpDir, "*.html")}, nil)
	if err != nil {
		t.Fatalf("ResolveInputs failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected 1 path, got %v", paths)
	}
}

func TestResolveInputs_NoMatch(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := ResolveInputs([]string{filepath.Join(tmpDir, "*.html")}, nil); err == nil {
		t.Error("expected error for a pattern without matches")
	}
	if _, err := ResolveInputs([]string{filepath.Join(tmpDir, "missing.html")}, nil); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestMakeAbsolutePattern(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		pattern string
		want    string
	}{
		{"*.html", filepath.Join(cwd, "*.html")},
		{"docs/**/*.html", filepath.Join(cwd, "docs") + string(filepath.Separator) + filepath.Join("**", "*.html")},
		{"/srv/*.html", filepath.FromSlash("/srv/*.html")},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := makeAbsolutePattern(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("makeAbsolutePattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}
