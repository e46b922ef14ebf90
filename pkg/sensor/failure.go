// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package sensor

// TestFailure observes whether the test function being run panicked,
// failed an assertion, or tripped a signal handler (§4.9's process-wide
// failure channel, consumed here rather than re-derived). A failure is
// recorded through Report during the recording window that brackets a
// single run; StartRecording clears the previous one.
type TestFailure struct {
	recording bool
	failure   *string
}

func NewTestFailure() *TestFailure { return &TestFailure{} }

func (s *TestFailure) StartRecording() {
	s.recording = true
	s.failure = nil
}

func (s *TestFailure) StopRecording() {
	s.recording = false
}

// Report records a failure message observed during the current
// recording window. Safe to call from a signal handler or a recovered
// panic; Report outside a recording window is dropped, matching
// StartRecording's reset-on-entry semantics.
func (s *TestFailure) Report(message string) {
	if !s.recording {
		return
	}
	s.failure = &message
}

// Failure returns the message reported during the last recording
// window, if any.
func (s *TestFailure) Failure() (string, bool) {
	if s.failure == nil {
		return "", false
	}
	return *s.failure, true
}

func (s *TestFailure) IterateOverObservations(handler func(message string)) {
	if s.failure != nil {
		handler(*s.failure)
	}
}
