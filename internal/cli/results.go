// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/flexchat/internal/questions"
	"github.com/jeranaias/flexchat/internal/util"
)

const minResultsWidth = 20

// renderResults formats a pipeline result for the terminal. Rules are width
// cells wide and answers are wrapped to fit.
func renderResults(res *questions.Result, width int) string {
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	width = max(width, minResultsWidth)
	light := SeparatorStyle.Render(strings.Repeat("-", width))

	var sb strings.Builder
	sb.WriteString("\n" + RenderSeparator(width) + "\n")
	sb.WriteString(TitleStyle.Render("Results") + "\n")
	sb.WriteString(RenderSeparator(width) + "\n")

	for i, rec := range res.Records {
		sb.WriteString("\n" + WrapText("Q: "+rec.Question, width) + "\n")
		sb.WriteString(WrapText("A: "+strings.TrimSpace(rec.Answer), width) + "\n")
		if i < len(res.Records)-1 {
			sb.WriteString(light + "\n")
		}
	}

	if len(res.Failures) > 0 {
		sb.WriteString(SectionStyle.Render(fmt.Sprintf("%d question(s) could not be answered:", len(res.Failures))) + "\n")
		for _, f := range res.Failures {
			line := fmt.Sprintf("  - %s: %v", util.SingleLine(f.Question), f.Err)
			sb.WriteString(WarningStyle.Render(util.TruncateWidth(line, width)) + "\n")
		}
	}

	sb.WriteString(RenderSeparator(width) + "\n")
	return sb.String()
}
