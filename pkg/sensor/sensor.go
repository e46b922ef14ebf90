// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package sensor implements the Sensor protocol (§4.3): something that
// observes a test run and exposes the observations it made to whichever
// Pool wants to react to them. Grounded on
// original_source/fuzzcheck/src/sensor_and_pool.rs's Sensor trait and
// noop_sensor.rs.
package sensor

// Sensor brackets a test-case execution and hands observations to a
// type-specific handler in between. ObservationHandler is generic at the
// call site (each concrete Sensor parameterizes Iterate's handler by its
// own observation type) rather than an associated type, for the same
// reason pkg/mutator's Cache/Step/Token are aliased to any: Go interfaces
// can't carry a per-implementation associated type.
type Sensor interface {
	StartRecording()
	StopRecording()
}

// CounterSensor is a Sensor whose observations are (index, count) pairs
// over a fixed-size array of edge/block counters, the shape produced by
// coverage instrumentation (§4.3, §4.9).
type CounterSensor interface {
	Sensor
	IterateOverObservations(handler func(index int, counter uint64))
}

// ValueSensor is a Sensor whose observations are arbitrary comparable
// values tagged with a provenance id, e.g. the operands compared by a
// `cmp` or `switch` instrumentation site (§4.3).
type ValueSensor[V comparable] interface {
	Sensor
	IterateOverObservations(handler func(tag uint64, value V))
}

// Noop never records anything. Useful as the sensor half of a
// pool that only reacts to process-wide test-failure signals.
type Noop struct{}

func (Noop) StartRecording() {}
func (Noop) StopRecording()  {}

// Merged runs two sensors as one: starting/stopping both together, each
// still iterable independently through its own concrete type.
type Merged[A, B Sensor] struct {
	A A
	B B
}

func (m *Merged[A, B]) StartRecording() {
	m.A.StartRecording()
	m.B.StartRecording()
}

func (m *Merged[A, B]) StopRecording() {
	m.A.StopRecording()
	m.B.StopRecording()
}
