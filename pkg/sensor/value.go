// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package sensor

// StaticValue records every value passed to a tagged observation site
// during a recording window, repeats included (e.g. the operands of a
// comparison instrumented by the harness),
// so a pool can reward inputs that discover a new one (§4.3, §4.4's
// maximise-single-value / unique-values pool variants).
type StaticValue[V comparable] struct {
	recording bool
	seen      []taggedValue[V]
}

type taggedValue[V comparable] struct {
	tag   uint64
	value V
}

func NewStaticValue[V comparable]() *StaticValue[V] {
	return &StaticValue[V]{}
}

func (s *StaticValue[V]) StartRecording() {
	s.recording = true
	s.seen = s.seen[:0]
}

func (s *StaticValue[V]) StopRecording() {
	s.recording = false
}

func (s *StaticValue[V]) Observe(tag uint64, value V) {
	if !s.recording {
		return
	}
	s.seen = append(s.seen, taggedValue[V]{tag: tag, value: value})
}

func (s *StaticValue[V]) IterateOverObservations(handler func(tag uint64, value V)) {
	for _, tv := range s.seen {
		handler(tv.tag, tv.value)
	}
}
