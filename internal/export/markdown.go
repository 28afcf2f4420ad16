// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/flexchat/internal/questions"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports results as a human-readable report.
type MarkdownExporter struct {
	title string
}

// NewMarkdownExporter creates a new Markdown exporter. An empty title falls
// back to DefaultTitle.
func NewMarkdownExporter(title string) *MarkdownExporter {
	if title == "" {
		title = DefaultTitle
	}
	return &MarkdownExporter{title: title}
}

// Export converts a result to Markdown. Records appear in the same order as
// in the JSON document.
func (e *MarkdownExporter) Export(res *questions.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if res.Timestamp.IsZero() {
		return nil, fmt.Errorf("result has invalid timestamp")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(e.title)))
	sb.WriteString(fmt.Sprintf("*Generated on: %s*\n\n", formatTimestamp(res.Timestamp)))
	if res.ExpertRole != "" {
		sb.WriteString(fmt.Sprintf("*Expert: %s*\n\n", TitleCase(res.ExpertRole)))
	}

	sb.WriteString("## Original Question\n\n")
	sb.WriteString(strings.TrimSpace(res.OriginalQuestion))
	sb.WriteString("\n\n")

	sb.WriteString("## Detailed Analysis\n\n")
	for i, rec := range res.Records {
		sb.WriteString(fmt.Sprintf("### Question %d\n\n", i+1))
		sb.WriteString(fmt.Sprintf("**Q:** %s\n\n", rec.Question))
		sb.WriteString(fmt.Sprintf("**A:** %s\n\n", strings.TrimSpace(rec.Answer)))

		if i < len(res.Records)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if len(res.Failures) > 0 {
		sb.WriteString("## Unanswered\n\n")
		for _, f := range res.Failures {
			sb.WriteString(fmt.Sprintf("- %s (%v)\n", f.Question, f.Err))
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
