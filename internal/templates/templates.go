// Package templates installs the static agent prompt files and creates
// ADR documents.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/aiswarm/aiswarm/internal/branch"
)

//go:embed files/*.md
var files embed.FS

// ADRDir is the project-relative directory for decision records.
var ADRDir = filepath.Join("docs", "adr")

// Names returns the installable template file names, sorted.
func Names() []string {
	entries, _ := fs.Glob(files, "files/*.md")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Base(e))
	}
	return names
}

// Install writes every template into dir, overwriting existing files.
// It returns the written paths.
func Install(dir string) ([]string, error) {
	var written []string
	for _, name := range Names() {
		data, err := files.ReadFile("files/" + name)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("install template %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

var adrFileRe = regexp.MustCompile(`^(\d{4})-.*\.md$`)

// CreateADR writes a new numbered decision record under docs/adr and
// returns its path. Numbering continues from the highest existing
// record.
func CreateADR(root, summary string) (string, error) {
	slug := branch.Slug(summary)
	if slug == "" {
		return "", fmt.Errorf("summary %q yields an empty file name", summary)
	}

	dir := filepath.Join(root, ADRDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create adr directory: %w", err)
	}

	next := 1
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if m := adrFileRe.FindStringSubmatch(entry.Name()); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
				next = n + 1
			}
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%04d-%s.md", next, slug))
	content := fmt.Sprintf(`# %d. %s

Date: %s

## Status

Proposed

## Context

TODO: describe the forces at play.

## Decision

%s

## Consequences

TODO: describe what becomes easier or harder.
`, next, summary, time.Now().Format("2006-01-02"), summary)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write adr: %w", err)
	}
	return path, nil
}
