// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents holds small prompt pipelines built on the chat router: a
// multi-agent business strategy builder and a poem generator.
package agents
