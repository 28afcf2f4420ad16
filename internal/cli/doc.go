// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the flexchat command tree.
//
// # Key Types
//
//   - Loop: the interactive chat state machine (SelectingProvider,
//     Chatting, Exited)
//   - LineReader: prompt input, backed by liner on a terminal
//   - Spinner: progress indicator for the Q&A pipeline
//
// # Commands Overview
//
//   - chat: interactive chat with provider switching
//   - ask: expert Q&A with related-question fan-out
//   - business: multi-agent business strategy
//   - poem: haiku or limerick
//   - providers: registered providers and credential status
//   - config: show or initialize the config file
//
// Every command returns its error; Execute prints it once and picks the
// exit code.
package cli
