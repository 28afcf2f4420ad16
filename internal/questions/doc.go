// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package questions expands a seed question into related questions and
// answers the whole batch concurrently against one provider.
//
// A run has two phases. GenerateRelated asks the model for a numbered list
// and keeps only the numbered lines. Run then answers the seed plus every
// related question through a bounded errgroup and collects the results by
// position, so the seed is always identified by its slot.
package questions
