// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package fuzzer implements the scheduler: the main cycle described in
// §4.5 that ties a Mutator, a Pool, a Sensor and a predicate together into
// a running fuzzing loop.
//
// Grounded on fuzzer.go's overall init -> loop -> teardown shape and
// job.go's panic-boundary-around-one-run idiom, generalized away from
// their *prog.Prog/async-RPC-dispatch specifics (there is no per-run
// request queue or worker pool here: §5 calls for a single-threaded
// cooperative loop, the opposite of what those files implement). See
// DESIGN.md for what was kept, adapted, or retired from the original
// package contents.
package fuzzer

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/learning"
	"github.com/loiclec/fuzzcheck-go/pkg/log"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
	"github.com/loiclec/fuzzcheck-go/pkg/pool"
	"github.com/loiclec/fuzzcheck-go/pkg/stats"
)

// armMutate and armGenerate are the two arms of the scheduler's step-1
// choice (§4.5 step 1): mutate an existing pool entry, or generate a fresh
// value from scratch. Named the way fuzzer.go names its statGenerate/
// statFuzz arms, generalized away from that package's stat-counter use.
const (
	armMutate   = "mutate"
	armGenerate = "generate"
)

// maxFailureDisplayBytes bounds how much of a failure message is kept for
// test_failures.json and artifact metadata; panic values (and their
// recovered stack context) can be unboundedly large.
const maxFailureDisplayBytes = 4096

// Predicate is the test function under fuzzing. It reports success by
// returning true; returning false or panicking both count as a test
// failure (§7.1).
type Predicate[T any] func(value T) bool

// Config holds the scheduler's run-time tunables, the subset of the §6.1
// CLI surface that governs the loop itself rather than file paths (those
// are the driver's concern, wired through pkg/corpus).
type Config struct {
	MaxComplexity         complexity.Complexity
	MaxIterations         int64 // 0 = unlimited
	MaxWallTime           time.Duration
	StopAfterFirstFailure bool
	PerRunTimeout         time.Duration // 0 = none
}

// DefaultConfig mirrors §6.1's documented flag defaults.
func DefaultConfig() Config {
	return Config{MaxComplexity: 256, MaxIterations: 0, MaxWallTime: 0, PerRunTimeout: 0}
}

// Sensor is the slice of the sensor protocol (§4.3) the scheduler drives
// directly around every predicate invocation.
type Sensor interface {
	StartRecording()
	StopRecording()
}

// FailureSource adapts a sensor capable of reporting a predicate failure
// message out-of-band (§4.8's process-wide failure slot) — e.g. an
// assertion helper that wants to contribute a more specific message than
// the scheduler's own "predicate returned false"/panic text.
type FailureSource interface {
	// Failure returns the most recent failure recorded since StartRecording,
	// if any, and clears it.
	Failure() (message string, ok bool)
}

// entryState is the scheduler's own side-table of per-input mutator state
// (§4.5's "input store"): Pool only stores values, so the cache and
// mutation step for pool entries live here, keyed by the same Index the
// pool hands back. Generation checking on Index means a stale entry (one
// whose slot has been reused) is simply never looked up again.
type entryState struct {
	cache mutator.Cache
	step  mutator.MutationStep
}

// Scheduler drives the main fuzzing cycle (§4.5) over one Mutator/Pool/
// Sensor combination. T is the test-case value type; Obs is the
// observation shape the main pool's Process expects, already adapted from
// whatever the sensor produces (that adaptation is the Observe closure's
// job, per pool.Pool's documented sensor-to-pool wiring note).
//
// Failures are processed by a second, independent pool (commonly a
// pool.TestFailure[T]) so that a crashing input still contributes its
// coverage to the main pool in the same run (§4.5 step 9 always happens;
// only step 8 is conditional on failure).
type Scheduler[T any, Obs any] struct {
	Mutator     mutator.Mutator[T]
	Pool        pool.Pool[T, Obs]
	Sensor      Sensor
	Observe     func() Obs
	FailurePool pool.Pool[T, *pool.TestFailureObservation]
	Failure     FailureSource // optional

	Predicate Predicate[T]
	Config    Config
	Stats     *stats.Tracker

	// OnDelta, if set, is called once per processed run with the delta
	// from the main pool and, when applicable, the failure pool — this is
	// the hook the driver uses to mirror deltas onto disk (pkg/corpus) and
	// the event log.
	OnDelta func(main pool.CorpusDelta[T], failure pool.CorpusDelta[T])

	// Arms picks between armMutate and armGenerate at step 1 of every
	// iteration (§4.5). Defaulted by New to a learning.PlainMAB[string]
	// seeded with both arms; overwrite before the first Step call to use
	// a different MAB implementation (e.g. learning.EXP3).
	Arms learning.MAB[string]

	// avgMutateSpeed and avgGenerateSpeed track newly-admitted entries
	// per second for each arm, the same running ratio fuzzer.go keeps via
	// avgFuzzSpeed/avgGenSpeed. They are only read by Speeds; the reward
	// handed to Arms.SaveReward is the raw speed of the run.
	avgMutateSpeed   *learning.RunningRatioAverage[float64]
	avgGenerateSpeed *learning.RunningRatioAverage[float64]

	rng    *rand.Rand
	states map[pool.Index]*entryState

	totalRuns     int64
	startedAt     time.Time
	stopRequested bool
	stopReason    string
}

// New constructs a Scheduler with a time-seeded random source. Use the
// Rand field setter pattern (assign s.rng via SeedWith) for reproducible
// runs.
func New[T any, Obs any](m mutator.Mutator[T], p pool.Pool[T, Obs], sensor Sensor, observe func() Obs, predicate Predicate[T], cfg Config) *Scheduler[T, Obs] {
	arms := &learning.PlainMAB[string]{ExplorationRate: 0.02, LearningRate: 0.005}
	arms.AddArm(armMutate)
	arms.AddArm(armGenerate)
	return &Scheduler[T, Obs]{
		Mutator:          m,
		Pool:             p,
		Sensor:           sensor,
		Observe:          observe,
		Predicate:        predicate,
		Config:           cfg,
		Arms:             arms,
		avgMutateSpeed:   learning.NewRunningRatioAverage[float64](200000),
		avgGenerateSpeed: learning.NewRunningRatioAverage[float64](10000),
		states:           map[pool.Index]*entryState{},
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedWith replaces the scheduler's random source, for reproducible runs.
func (s *Scheduler[T, Obs]) SeedWith(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// TotalRuns is the number of predicate invocations completed so far.
func (s *Scheduler[T, Obs]) TotalRuns() int64 { return s.totalRuns }

// Stop requests that Run return after the current Step completes.
func (s *Scheduler[T, Obs]) Stop(reason string) {
	s.stopRequested = true
	s.stopReason = reason
}

// AddInitial feeds a corpus-loaded value into the pool before the loop
// starts (the *fuzz* command's "each file decoded by serializer and fed
// through pool.process", §4.5).
func (s *Scheduler[T, Obs]) AddInitial(value T, observations Obs) pool.CorpusDelta[T] {
	cache, ok := s.Mutator.ValidateValue(value)
	if !ok {
		// InvalidValueAdmission (§7.2): logged and skipped by the caller.
		return pool.CorpusDelta[T]{}
	}
	cplx := s.Mutator.Complexity(value, cache)
	return s.Pool.Process(value, observations, cplx)
}

// Step runs one iteration of the main cycle (§4.5 steps 1-11) and reports
// the corpus deltas it produced.
func (s *Scheduler[T, Obs]) Step() (mainDelta pool.CorpusDelta[T], failureDelta pool.CorpusDelta[T]) {
	maxCplx := s.Config.MaxComplexity

	var (
		value     T
		cache     mutator.Cache
		step      mutator.MutationStep
		parentIdx pool.Index
		havParent bool
	)

	action := s.chooseArm()
	if action.Arm == armMutate {
		if idx, ok := s.Pool.GetRandomIndex(); ok {
			if v, ok2 := s.Pool.Get(idx); ok2 {
				st, known := s.states[idx]
				if !known {
					c, valid := s.Mutator.ValidateValue(v)
					if valid {
						st = &entryState{cache: c, step: s.Mutator.DefaultMutationStep(v, c)}
						s.states[idx] = st
					}
				}
				if st != nil {
					value, cache, step = v, st.cache, st.step
					parentIdx, havParent = idx, true
				}
			}
		}
	}

	// ranArm is what actually happened this step, which can differ from
	// action.Arm when armMutate was chosen but found no usable parent
	// (empty pool, stale index): the reward below still credits the MAB's
	// original choice, but the speed bookkeeping reflects the real path,
	// mirroring handleMABs' req.stat vs req.genFuzzAction distinction.
	ranArm := action.Arm
	if !havParent {
		// Either the arm chose armGenerate, or armMutate found no usable
		// parent — fall through to generating from scratch, same as
		// nextInput's genProgRequest fallback.
		ranArm = armGenerate
		v, _ := s.Mutator.RandomArbitrary(s.rng, maxCplx)
		c, valid := s.Mutator.ValidateValue(v)
		if !valid {
			// Budget too small to produce anything admissible; skip this run.
			return pool.CorpusDelta[T]{}, pool.CorpusDelta[T]{}
		}
		value, cache = v, c
		step = s.Mutator.DefaultMutationStep(value, cache)
	}

	runStarted := time.Now()
	provider := s.crossoverProvider()

	token, _, ok := s.Mutator.OrderedMutate(&value, &cache, &step, provider, maxCplx)
	if !ok {
		token, _ = s.Mutator.RandomMutate(s.rng, &value, &cache, maxCplx)
	}

	newCplx := s.Mutator.Complexity(value, cache)

	s.Sensor.StartRecording()
	ranOK, message := s.invokePredicate(value)
	s.Sensor.StopRecording()

	if !ranOK && s.Failure != nil {
		if m, has := s.Failure.Failure(); has {
			message = m
		}
	}

	// value is cloned before each admission: Process may store it, and the
	// Unmutate call below reverts value in place, which for a reference-typed
	// T (e.g. a slice mutated by a non-reallocating vector operation) would
	// silently corrupt an aliased pool entry otherwise (§4.5 step 10).
	if s.FailurePool != nil && !ranOK {
		display := string(log.Truncate([]byte(message), maxFailureDisplayBytes*3/4, maxFailureDisplayBytes/4))
		obs := &pool.TestFailureObservation{ID: failureID(message), Display: display}
		failureDelta = s.FailurePool.Process(s.Mutator.Clone(value), obs, newCplx)
	}

	mainDelta = s.Pool.Process(s.Mutator.Clone(value), s.Observe(), newCplx)

	s.Mutator.Unmutate(&value, &cache, token)

	s.recordArmReward(action, ranArm, time.Since(runStarted).Seconds(), mainDelta, failureDelta)

	if havParent {
		s.states[parentIdx] = &entryState{cache: cache, step: step}
	}
	for _, rm := range mainDelta.Remove {
		delete(s.states, rm)
	}
	for _, rm := range failureDelta.Remove {
		delete(s.states, rm)
	}

	s.totalRuns++
	if s.Stats != nil {
		s.Stats.RecordRun(float64(newCplx))
	}
	if s.OnDelta != nil {
		s.OnDelta(mainDelta, failureDelta)
	}
	if !ranOK && s.Config.StopAfterFirstFailure {
		s.Stop("first test failure")
	}
	return mainDelta, failureDelta
}

// chooseArm asks Arms which of armMutate/armGenerate to try this step
// (§4.5 step 1), the same spot nextInput calls genFuzzMAB.Action. A nil
// Arms (zero-value Scheduler, not built via New) always mutates when a
// parent exists, preserving the pre-MAB behavior.
func (s *Scheduler[T, Obs]) chooseArm() learning.Action[string] {
	if s.Arms == nil {
		return learning.Action[string]{Arm: armMutate}
	}
	return s.Arms.Action(s.rng)
}

// recordArmReward mirrors handleMABs: the MAB is rewarded with the raw
// newly-gained-entries-per-second speed of the run, credited to the arm
// it actually chose (action), while the running speed average used for
// Speeds() is bucketed by the arm that actually ran (ranArm) — the two
// can differ when armMutate was picked but fell back to generating.
func (s *Scheduler[T, Obs]) recordArmReward(action learning.Action[string], ranArm string, elapsedSec float64, mainDelta, failureDelta pool.CorpusDelta[T]) {
	if elapsedSec <= 0 {
		elapsedSec = 1.0
	}
	newSignal := 0
	if mainDelta.Add != nil {
		newSignal++
	}
	if failureDelta.Add != nil {
		newSignal++
	}
	currSpeed := float64(newSignal) / elapsedSec
	if s.Arms != nil {
		s.Arms.SaveReward(action, currSpeed)
	}
	if ranArm == armGenerate {
		s.avgGenerateSpeed.Save(float64(newSignal), elapsedSec)
	} else {
		s.avgMutateSpeed.Save(float64(newSignal), elapsedSec)
	}
}

// Speeds reports the running newly-gained-entries-per-second average for
// each arm (the same figures fuzzer.go logs from avgFuzzSpeed/avgGenSpeed),
// for a driver's status output. Returns (0, 0) on a zero-value Scheduler.
func (s *Scheduler[T, Obs]) Speeds() (mutate, generate float64) {
	if s.avgMutateSpeed == nil || s.avgGenerateSpeed == nil {
		return 0, 0
	}
	return s.avgMutateSpeed.Load(), s.avgGenerateSpeed.Load()
}

// crossoverProvider snapshots a random pool entry as the crossover source
// (§4.5 step 4, §4.6): its subvalues are collected once via VisitSubvalues
// and reused for this one mutation attempt.
func (s *Scheduler[T, Obs]) crossoverProvider() crossover.SubValueProvider {
	idx, ok := s.Pool.GetRandomIndex()
	if !ok {
		return crossover.None{}
	}
	v, ok := s.Pool.Get(idx)
	if !ok {
		return crossover.None{}
	}
	cache, ok := s.Mutator.ValidateValue(v)
	if !ok {
		return crossover.None{}
	}
	var values []crossover.Subvalue
	s.Mutator.VisitSubvalues(v, cache, func(value any, cplx complexity.Complexity) {
		values = append(values, crossover.Subvalue{Value: value, Cplx: cplx})
	})
	id := crossover.Id{Index: idx.SlotIndex(), Generation: idx.Generation()}
	return crossover.NewVisitorProvider(id, values)
}

// invokePredicate runs Predicate inside a catch-panic boundary (§4.5 step
// 6) and, if PerRunTimeout is set, races it against a timer. There is no
// in-flight cancellation in Go: on timeout the launched goroutine is left
// to finish on its own and the scheduler treats the run as a failure and
// requests a stop, mirroring §5's "cancellation is catastrophic by
// design" (the original tears the whole process down on a timer signal).
func (s *Scheduler[T, Obs]) invokePredicate(value T) (ok bool, message string) {
	if s.Config.PerRunTimeout <= 0 {
		return s.runOnce(value)
	}
	type result struct {
		ok  bool
		msg string
	}
	done := make(chan result, 1)
	go func() {
		ok, msg := s.runOnce(value)
		done <- result{ok, msg}
	}()
	select {
	case r := <-done:
		return r.ok, r.msg
	case <-time.After(s.Config.PerRunTimeout):
		s.Stop("per-run timeout")
		return false, "timeout"
	}
}

func (s *Scheduler[T, Obs]) runOnce(value T) (ok bool, message string) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			message = fmt.Sprintf("panic: %v", r)
		}
	}()
	if s.Predicate(value) {
		return true, ""
	}
	return false, "predicate returned false"
}

// failureID derives the short, stable failure identifier §4.8 calls for
// ("a unique numeric id ... derived from the panic's source location +
// message hash"). Go's recover() does not expose the panic site as
// cleanly as a signal handler's saved registers, so this hashes the
// message alone — close enough to deduplicate repeat crashes at the same
// assertion or panic call site, the common case.
func failureID(message string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(message))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Run executes Step in a loop until a stop condition fires: MaxIterations,
// MaxWallTime, ctx cancellation, or an explicit Stop call (from
// StopAfterFirstFailure, a per-run timeout, or an external signal the
// caller relays via Stop).
func (s *Scheduler[T, Obs]) Run(ctx context.Context) (reason string) {
	s.startedAt = time.Now()
	s.stopRequested = false
	for {
		if s.stopRequested {
			return s.stopReason
		}
		select {
		case <-ctx.Done():
			return "context cancelled"
		default:
		}
		if s.Config.MaxIterations > 0 && s.totalRuns >= s.Config.MaxIterations {
			return "max iterations reached"
		}
		if s.Config.MaxWallTime > 0 && time.Since(s.startedAt) >= s.Config.MaxWallTime {
			return "max wall time reached"
		}
		s.Step()
	}
}
