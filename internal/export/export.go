// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/flexchat/internal/questions"
	"github.com/jeranaias/flexchat/internal/util"
)

// StemTimeFormat is the timestamp layout used in file names.
const StemTimeFormat = "20060102_150405"

// DefaultTitle heads the Markdown report when Options.Title is empty.
const DefaultTitle = "Q&A Results"

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a result into one file format.
type Exporter interface {
	// Export converts a result to the target format and returns the content.
	Export(res *questions.Result) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures Save.
type Options struct {
	// OutputDir is created if it does not exist.
	OutputDir string

	// Prefix starts every file name. Default: "questions"
	Prefix string

	// Title heads the Markdown report. Default: "Q&A Results"
	Title string
}

func (o Options) withDefaults() Options {
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Prefix == "" {
		o.Prefix = "questions"
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	return o
}

// Paths lists the files written by Save.
type Paths struct {
	JSON     string
	Markdown string
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes result as JSON and Markdown files sharing one stem. Each file
// is written atomically. A stem already taken in OutputDir gets a _2, _3, ...
// suffix so earlier runs are never overwritten. Errors are returned to the
// caller.
func Save(res *questions.Result, opts Options) (Paths, error) {
	if res == nil {
		return Paths{}, errors.New("result is nil")
	}
	opts = opts.withDefaults()

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return Paths{}, fmt.Errorf("create output directory: %w", err)
	}

	exporters := []Exporter{NewJSONExporter(), NewMarkdownExporter(opts.Title)}
	stem, err := freeStem(opts.OutputDir, Stem(opts.Prefix, res.Timestamp), exporters)
	if err != nil {
		return Paths{}, err
	}

	var paths Paths
	for _, e := range exporters {
		content, err := e.Export(res)
		if err != nil {
			return paths, fmt.Errorf("export failed: %w", err)
		}

		path := filepath.Join(opts.OutputDir, stem+e.FileExtension())
		if err := util.AtomicWriteFile(path, content, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}

		switch e.(type) {
		case *JSONExporter:
			paths.JSON = path
		case *MarkdownExporter:
			paths.Markdown = path
		}
	}
	return paths, nil
}

// Stem returns the shared file name stem for prefix and t.
func Stem(prefix string, t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return fmt.Sprintf("%s_%s", sanitizeFilename(prefix), t.Format(StemTimeFormat))
}

// maxStemSuffix bounds the search for a free stem.
const maxStemSuffix = 1000

// freeStem returns stem, or stem_N for the smallest N >= 2, such that no
// exporter's file exists yet in dir.
func freeStem(dir, stem string, exporters []Exporter) (string, error) {
	taken := func(candidate string) (bool, error) {
		for _, e := range exporters {
			_, err := os.Stat(filepath.Join(dir, candidate+e.FileExtension()))
			if err == nil {
				return true, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return false, fmt.Errorf("check output file: %w", err)
			}
		}
		return false, nil
	}

	candidate := stem
	for n := 2; n <= maxStemSuffix; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", stem, n)
	}
	return "", fmt.Errorf("no free file name for %s in %s", stem, dir)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "questions"
	}
	return b.String()
}

// TitleCase capitalizes each word of an expert role for display.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
