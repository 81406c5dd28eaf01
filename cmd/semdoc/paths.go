package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveInputs expands glob patterns to concrete document files.
// Supports both single-level wildcards (*) and recursive wildcards (**).
// A plain directory expands to the documents directly inside it that have
// one of the given extensions.
//
// Examples:
//   - "./docs/*.html" → ["/abs/docs/a.html", ...]
//   - "./docs/**/*.html" → all html files below docs
//   - "./docs" → html files in docs
func ResolveInputs(patterns []string, extensions []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern, extensions)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single glob pattern to files.
func resolvePattern(pattern string, extensions []string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return []string{absPath}, nil
		}

		var files []string
		for _, ext := range extensions {
			matches, err := doublestar.FilepathGlob(filepath.Join(absPath, "*"+ext))
			if err != nil {
				return nil, fmt.Errorf("glob error: %w", err)
			}
			files = append(files, matches...)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no documents in directory: %s", absPath)
		}
		return files, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}

	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// makeAbsolutePattern converts a relative pattern to absolute.
// Preserves glob characters in the pattern.
func makeAbsolutePattern(pattern string) (string, error) {
	globIdx := strings.IndexAny(pattern, "*?[{")
	if globIdx == -1 {
		return filepath.Abs(pattern)
	}

	// Split at the last separator before the first glob character
	dirPart, globPart := ".", pattern
	switch sep := strings.LastIndexAny(pattern[:globIdx], "/"+string(filepath.Separator)); {
	case sep == 0:
		dirPart, globPart = string(filepath.Separator), pattern[1:]
	case sep > 0:
		dirPart, globPart = pattern[:sep], pattern[sep+1:]
	}

	absDir, err := filepath.Abs(dirPart)
	if err != nil {
		return "", err
	}

	return filepath.Join(absDir, filepath.FromSlash(globPart)), nil
}
