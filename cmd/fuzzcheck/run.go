// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/corpus"
	"github.com/loiclec/fuzzcheck-go/pkg/covsensor"
	"github.com/loiclec/fuzzcheck-go/pkg/fuzzer"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator/grammar"
	"github.com/loiclec/fuzzcheck-go/pkg/pool"
	"github.com/loiclec/fuzzcheck-go/pkg/serialize"
	"github.com/loiclec/fuzzcheck-go/pkg/signalhandler"
	"github.com/loiclec/fuzzcheck-go/pkg/stats"
)

// counterArraySize bounds the covsensor.MemorySource; evalExpr only ever
// hits ids below counterCount, but a little headroom costs nothing.
const counterArraySize = 64

func serializer() serialize.Structured[grammar.WithString] {
	return serialize.NewStructured[grammar.WithString]("yaml")
}

func buildMutator() mutator.Mutator[grammar.WithString] {
	return grammar.NewASTMutator(exprGrammar()).WithString()
}

// fatalSignalSource adapts signalhandler.Handler into fuzzer.FailureSource
// so a fatal signal observed mid-run is attributed to the run that was in
// flight when it arrived, the same way any other predicate failure is.
type fatalSignalSource struct{ h *signalhandler.Handler }

func (f fatalSignalSource) Failure() (string, bool) {
	select {
	case failure := <-f.h.Failures():
		return failure.Message, true
	default:
		return "", false
	}
}

// runOnce evaluates one value outside of a Scheduler loop, for read/tmin,
// mirroring the same catch-panic boundary fuzzer.Scheduler.runOnce uses.
func runOnce(v grammar.WithString, src *covsensor.MemorySource) (ok bool, message string) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			message = fmt.Sprintf("panic: %v", r)
		}
	}()
	evalExpr(v.AST, src)
	return true, ""
}

func runFuzz(ctx context.Context, opts options, handler *signalhandler.Handler) (testFailureFound bool, err error) {
	m := buildMutator()
	ser := serializer()
	source := covsensor.NewMemorySource(counterArraySize)
	sens := covsensor.New(source)

	mainPool := pool.NewCoverage[grammar.WithString]()
	failurePool := pool.NewTestFailure[grammar.WithString]()

	var mainWriter *corpus.Writer[grammar.WithString]
	if opts.outCorpus != "" {
		mainWriter, err = corpus.NewWriter[grammar.WithString](filepath.Join(opts.outCorpus, "coverage"), ser)
		if err != nil {
			return false, fmt.Errorf("fuzz: opening out-corpus: %w", err)
		}
	}

	statsDir := "stats"
	tracker := stats.NewTracker(prometheus.NewRegistry())

	var ui *uiStream
	if opts.socketAddress != "" {
		ui, err = dialUIStream(opts.socketAddress)
		if err != nil {
			return false, fmt.Errorf("fuzz: connecting to %s: %w", opts.socketAddress, err)
		}
		defer ui.Close()
	}

	sched := fuzzer.New[grammar.WithString, pool.CounterObservations](m, mainPool, sens, sens.Observations, func(v grammar.WithString) bool {
		ok, _ := runOnce(v, source)
		return ok
	}, fuzzer.Config{
		MaxComplexity:         complexity.Complexity(opts.maxCplx),
		MaxIterations:         opts.maxIter,
		PerRunTimeout:         opts.timeout,
		StopAfterFirstFailure: opts.stopAfterFirstFailure,
	})
	sched.Stats = tracker
	sched.FailurePool = failurePool
	sched.Failure = fatalSignalSource{handler}

	if opts.inCorpus != "" {
		seeds, loadErr := corpus.LoadDir[grammar.WithString](filepath.Join(opts.inCorpus, "coverage"), ser)
		if loadErr != nil {
			log.Printf("fuzz: loading seed corpus: %v", loadErr)
		}
		for _, seed := range seeds {
			sens.StartRecording()
			evalOK, _ := runOnce(seed, source)
			sens.StopRecording()
			if !evalOK {
				continue // InvalidValueAdmission-adjacent: a seed that already crashes is skipped and never added to the pool.
			}
			sched.AddInitial(seed, sens.Observations())
		}
	}

	sched.OnDelta = func(main, failure pool.CorpusDelta[grammar.WithString]) {
		if mainWriter != nil && !main.IsEmpty() {
			cplx := 0.0
			if main.Add != nil {
				cplx = m.Complexity(main.Add.Value, mustValidate(m, main.Add.Value))
			}
			if err := mainWriter.Apply(main, cplx); err != nil {
				log.Printf("fuzz: writing out-corpus: %v", err)
			}
		}
		if failure.Add != nil {
			testFailureFound = true
			if opts.artifacts != "" {
				cplx := m.Complexity(failure.Add.Value, mustValidate(m, failure.Add.Value))
				if _, err := corpus.WriteArtifact(opts.artifacts, "failure", cplx, ser, failure.Add.Value); err != nil {
					log.Printf("fuzz: writing artifact: %v", err)
				}
			}
			if ui != nil {
				ui.SaveArtifact(failure.Add.Value.String)
			}
		}
		if ui != nil && main.Add != nil {
			ui.AddInput(main.Add.Value.String)
		}
	}

	log.Printf("run %s: fuzzing started", opts.runID)
	reason := sched.Run(ctx)
	log.Printf("run %s: stopped (%s), total runs=%d", opts.runID, reason, sched.TotalRuns())

	snap := tracker.Tick(time.Now())
	if err := appendEventsCSV(statsDir, "stopped", snap); err != nil {
		log.Printf("fuzz: writing events.csv: %v", err)
	}
	for _, sf := range append(mainPool.SaveToStatsFolder(), failurePool.SaveToStatsFolder()...) {
		if err := os.MkdirAll(statsDir, 0o755); err == nil {
			os.WriteFile(filepath.Join(statsDir, sf.Path), sf.Bytes, 0o644)
		}
	}
	if ui != nil {
		ui.Stopped()
	}
	return testFailureFound, nil
}

func runRead(opts options) (testFailureFound bool, err error) {
	if opts.inputFile == "" {
		return false, fmt.Errorf("read: --input-file is required")
	}
	ser := serializer()
	data, err := os.ReadFile(opts.inputFile)
	if err != nil {
		return false, err
	}
	v, ok := ser.FromData(data)
	if !ok {
		return false, fmt.Errorf("read: could not deserialize %s", opts.inputFile)
	}
	source := covsensor.NewMemorySource(counterArraySize)
	ok, message := runOnce(v, source)
	if !ok {
		log.Printf("run %s: test failure: %s", opts.runID, message)
		return true, nil
	}
	log.Printf("run %s: %s did not reproduce a failure", opts.runID, opts.inputFile)
	return false, nil
}

func runTmin(opts options) (testFailureFound bool, err error) {
	if opts.inputFile == "" {
		return false, fmt.Errorf("tmin: --input-file is required")
	}
	ser := serializer()
	data, err := os.ReadFile(opts.inputFile)
	if err != nil {
		return false, err
	}
	original, ok := ser.FromData(data)
	if !ok {
		return false, fmt.Errorf("tmin: could not deserialize %s", opts.inputFile)
	}
	source := covsensor.NewMemorySource(counterArraySize)
	if ok, _ := runOnce(original, source); ok {
		return false, fmt.Errorf("tmin: %s does not reproduce a failure", opts.inputFile)
	}

	m := buildMutator()
	stillFails := func(v grammar.WithString) bool {
		ok, _ := runOnce(v, source)
		return !ok
	}
	improvements := fuzzer.MinifyInput[grammar.WithString](m, stillFails, original, 2000)
	if len(improvements) == 0 {
		log.Printf("run %s: no smaller reproducer found for %s", opts.runID, opts.inputFile)
		return true, nil
	}
	final := improvements[len(improvements)-1]
	if opts.artifacts != "" {
		for _, v := range improvements {
			cplx := m.Complexity(v, mustValidate(m, v))
			if _, err := corpus.WriteArtifact(opts.artifacts, "failure", cplx, ser, v); err != nil {
				log.Printf("tmin: writing artifact: %v", err)
			}
		}
	}
	log.Printf("run %s: minimized %d -> %d bytes over %d improvements", opts.runID, len(original.String), len(final.String), len(improvements))
	if diff := cmp.Diff(original.AST, final.AST); diff != "" {
		log.Printf("run %s: structural diff (-original +minimized):\n%s", opts.runID, diff)
	}
	return true, nil
}

func runCmin(opts options) error {
	if opts.inCorpus == "" {
		return fmt.Errorf("cmin: --in-corpus is required")
	}
	ser := serializer()
	seeds, err := corpus.LoadDir[grammar.WithString](filepath.Join(opts.inCorpus, "coverage"), ser)
	if err != nil {
		return err
	}
	m := buildMutator()
	source := covsensor.NewMemorySource(counterArraySize)
	sens := covsensor.New(source)
	p := pool.NewCoverage[grammar.WithString]()

	for _, seed := range seeds {
		cache, ok := m.ValidateValue(seed)
		if !ok {
			continue
		}
		sens.StartRecording()
		if ok, _ := runOnce(seed, source); !ok {
			sens.StopRecording()
			continue // a crashing seed has no place in the coverage corpus being minified.
		}
		sens.StopRecording()
		p.Process(seed, sens.Observations(), m.Complexity(seed, cache))
	}

	removed := fuzzer.MinifyCorpus(p, opts.corpusSize)
	log.Printf("run %s: corpus minified, %d entries removed", opts.runID, len(removed))

	if opts.outCorpus == "" {
		return nil
	}
	outDir := filepath.Join(opts.outCorpus, "coverage")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	entries, _ := os.ReadDir(outDir)
	for _, e := range entries {
		os.Remove(filepath.Join(outDir, e.Name()))
	}
	for _, idx := range p.AllIndices() {
		v, ok := p.Get(idx)
		if !ok {
			continue
		}
		cache, _ := m.ValidateValue(v)
		cplx := m.Complexity(v, cache)
		data := ser.ToData(v)
		path := filepath.Join(outDir, corpus.FileName(cplx, corpus.Hash(data), ser.Extension()))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Printf("cmin: writing %s: %v", path, err)
		}
	}
	return nil
}

// mustValidate re-derives a mutator.Cache for a value already known to be
// admissible (it came from the pool, or from a prior ValidateValue call),
// purely so Complexity has a Cache to read the input's size back out of.
func mustValidate(m mutator.Mutator[grammar.WithString], v grammar.WithString) mutator.Cache {
	cache, _ := m.ValidateValue(v)
	return cache
}

func appendEventsCSV(dir, event string, snap stats.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "events.csv")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, stats.CSVRow(time.Now(), event, snap))
	return err
}
