// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package classifier

import (
	"context"

	"github.com/aquabotics/amlac/internal/vision"
)

type mockClassifier struct {
	verdict Verdict
	err     error
}

// NewMock returns a classifier that yields a fixed verdict. Used when no
// inference endpoint is configured and in bench testing.
func NewMock(v Verdict) Classifier {
	return &mockClassifier{verdict: v}
}

// NewFailingMock returns a classifier that always fails, for exercising
// the negative-detection path.
func NewFailingMock(err error) Classifier {
	return &mockClassifier{err: err}
}

func (m *mockClassifier) Classify(_ context.Context, _ vision.Frame) (Verdict, error) {
	if m.err != nil {
		return Verdict{}, m.err
	}
	return m.verdict, nil
}
