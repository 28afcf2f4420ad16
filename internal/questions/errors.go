// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package questions

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is returned when the seed question is blank.
var ErrEmptyQuestion = errors.New("question is empty")

// QuestionError records one question that could not be answered.
type QuestionError struct {
	Index    int
	Question string
	Err      error
}

func (e QuestionError) Error() string {
	return fmt.Sprintf("question %d (%q): %v", e.Index+1, e.Question, e.Err)
}

func (e QuestionError) Unwrap() error {
	return e.Err
}

// BatchError is returned by Run when at least one question failed. The
// Result returned alongside it still holds every successful record.
type BatchError struct {
	Failed int
	Total  int
	Errs   []QuestionError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d questions failed", e.Failed, e.Total)
}

// Unwrap exposes the per-question causes to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, qe := range e.Errs {
		errs[i] = qe
	}
	return errs
}
