// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export persists question pipeline results.
//
// Every run is written twice under the same stem: a JSON document for
// machines and a Markdown report for people.
//
// # Usage
//
//	paths, err := export.Save(result, export.Options{
//	    OutputDir: "data/output/questions",
//	    Prefix:    "questions",
//	})
//
// The stem is <prefix>_<YYYYMMDD_HHMMSS>, taken from the result timestamp,
// with a numeric suffix when that stem is already used in the directory.
package export
