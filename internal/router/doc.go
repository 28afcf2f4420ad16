// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router dispatches chat transcripts to registered providers.
//
// The Router is built once from configuration. Every enabled provider is
// registered in table order, whether or not its API key is present; a
// missing key surfaces as provider.ErrNotConfigured on first use.
//
// # Key Types
//
//   - Router: provider registry with Chat and ChatStream
//   - Registration: one registered provider (ID, Name, Kind, Handler)
//   - UnsupportedProviderError: returned for names that were never registered
//
// # Usage
//
//	r, err := router.New(cfg, router.WithLogger(logger))
//	for i, name := range r.ListProviders() {
//	    fmt.Printf("%d. %s\n", i+1, name)
//	}
//	reply, err := r.Chat(ctx, "Groq", transcript)
package router
