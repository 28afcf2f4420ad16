// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the flexchat packages.
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//
// Display Helpers:
//   - TruncateWidth: cell-width aware truncation for terminal output
//   - MaskSecret: hides all but the edges of an API key
//
// # Usage
//
//	// Write result files atomically
//	err := util.AtomicWriteFile(path, data, 0644)
//
//	// Fit a progress label into the terminal
//	label := util.TruncateWidth(question, width-10)
package util
