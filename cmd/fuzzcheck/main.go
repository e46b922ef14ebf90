// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Command fuzzcheck is the driver that wires a Mutator, a Sensor, a Pool
// and a Scheduler together into the fuzz/read/tmin/cmin commands. Flag
// parsing uses the standard library's flag package with single-dash
// names, the same convention as this codebase's other command-line
// tools (syz-bugstats, syz-lore, syz-cluster's triage-step).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/loiclec/fuzzcheck-go/pkg/signalhandler"
)

var (
	flagInCorpus   = flag.String("in-corpus", "corpus", "directory of seed inputs")
	flagNoInCorpus = flag.Bool("no-in-corpus", false, "do not read an input corpus")

	flagOutCorpus   = flag.String("out-corpus", "corpus", "directory to write interesting inputs to")
	flagNoOutCorpus = flag.Bool("no-out-corpus", false, "do not write an output corpus")

	flagArtifacts   = flag.String("artifacts", "artifacts", "directory to write failing inputs to")
	flagNoArtifacts = flag.Bool("no-artifacts", false, "do not write artifacts")

	flagInputFile = flag.String("input-file", "", "single input file, for read/tmin")

	flagCorpusSize = flag.Int("corpus-size", 10, "target corpus size for cmin")
	flagMaxCplx    = flag.Float64("max-cplx", 256, "maximum input complexity")
	flagMaxIter    = flag.Int64("max-iter", 0, "maximum number of fuzzing iterations (0 = unlimited)")
	flagTimeoutMs  = flag.Int64("timeout", 0, "per-run timeout in milliseconds (0 = none)")

	flagStopAfterFirstFailure = flag.Bool("stop-after-first-failure", false, "stop as soon as a test failure is found")
	flagSocketAddress         = flag.String("socket-address", "", "host:port to stream UI events to")
)

func main() {
	flag.Parse()
	runID := uuid.New().String()

	cmd := flag.Arg(0)
	if cmd == "" {
		fmt.Fprintln(os.Stderr, "usage: fuzzcheck [flags] <fuzz|read|tmin|cmin>")
		os.Exit(2)
	}

	opts := options{
		inCorpus:              pathOrDisabled(*flagInCorpus, *flagNoInCorpus),
		outCorpus:             pathOrDisabled(*flagOutCorpus, *flagNoOutCorpus),
		artifacts:             pathOrDisabled(*flagArtifacts, *flagNoArtifacts),
		inputFile:             *flagInputFile,
		corpusSize:            *flagCorpusSize,
		maxCplx:               *flagMaxCplx,
		maxIter:               *flagMaxIter,
		timeout:               time.Duration(*flagTimeoutMs) * time.Millisecond,
		stopAfterFirstFailure: *flagStopAfterFirstFailure,
		socketAddress:         *flagSocketAddress,
		runID:                 runID,
	}

	handler := signalhandler.Install()
	defer handler.Uninstall()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-handler.Stopped()
		log.Printf("run %s: interrupted, stopping", runID)
		cancel()
	}()

	var (
		testFailureFound bool
		err              error
	)
	switch cmd {
	case "fuzz":
		testFailureFound, err = runFuzz(ctx, opts, handler)
	case "read":
		testFailureFound, err = runRead(opts)
	case "tmin":
		testFailureFound, err = runTmin(opts)
	case "cmin":
		err = runCmin(opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}

	if err != nil {
		log.Printf("run %s: fatal error: %v", runID, err)
		os.Exit(2)
	}
	if testFailureFound {
		os.Exit(1)
	}
}

// options collects the §6.1 CLI surface into the shape the run* functions
// consume, independent of how flag.Parse happened to populate it.
type options struct {
	inCorpus, outCorpus, artifacts string // empty means disabled
	inputFile                      string
	corpusSize                     int
	maxCplx                        float64
	maxIter                        int64
	timeout                        time.Duration
	stopAfterFirstFailure          bool
	socketAddress                  string
	runID                          string
}

func pathOrDisabled(path string, disabled bool) string {
	if disabled {
		return ""
	}
	return path
}
