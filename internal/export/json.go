// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/flexchat/internal/questions"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Document is the persisted JSON shape.
type Document struct {
	OriginalQuestion string             `json:"originalQuestion"`
	Timestamp        string             `json:"timestamp"`
	Results          []questions.Record `json:"results"`
}

// NewDocument converts a result to its persisted form.
func NewDocument(res *questions.Result) Document {
	records := res.Records
	if records == nil {
		records = []questions.Record{}
	}
	return Document{
		OriginalQuestion: res.OriginalQuestion,
		Timestamp:        res.Timestamp.Format(time.RFC3339),
		Results:          records,
	}
}

// JSONExporter exports results to JSON, indented two spaces.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a result to JSON format.
func (e *JSONExporter) Export(res *questions.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}
	data, err := json.MarshalIndent(NewDocument(res), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

