// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package questions

import "strings"

// MaxRelated is the hard cap on related questions per run.
const MaxRelated = 5

// ParseRelated extracts numbered lines from a model response. A line is kept
// when, after trimming, it starts with a digit 1-5. Kept lines are returned
// trimmed but otherwise verbatim, in order, capped at max (MaxRelated when max
// is out of range). A response with no numbered lines yields an empty slice.
func ParseRelated(text string, max int) []string {
	if max <= 0 || max > MaxRelated {
		max = MaxRelated
	}

	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] < '1' || line[0] > '5' {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}
