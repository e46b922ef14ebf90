// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package signalhandler installs the process-wide crash and timeout
// handling described in §4.9/§6.4: a background goroutine that converts
// fatal signals into failure reports instead of letting them kill the
// scheduler uncleanly.
//
// Uses golang.org/x/sys/unix for platform-specific signal number
// constants; Go's os/signal.Notify plus a buffered channel replaces
// sigaction/mutex/condvar plumbing, which isn't idiomatic Go for this.
package signalhandler

import (
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"
)

// Failure is one fatal-signal or timeout observation, delivered on the
// channel Handler.Failures returns.
type Failure struct {
	Signal  string
	Message string
}

// fatalSignals is installed at startup per §4.9: crash-indicating signals
// whose default action would otherwise kill the process before the
// scheduler can report cleanly.
var fatalSignals = []os.Signal{
	unix.SIGSEGV,
	unix.SIGILL,
	unix.SIGBUS,
	unix.SIGABRT,
	unix.SIGFPE,
}

// Handler bridges OS signals into Failure values delivered on a channel,
// and a stop flag for SIGINT (§6.4's "exit signal terminates the
// scheduler cleanly by setting a stop flag").
type Handler struct {
	failures chan Failure
	stop     chan struct{}
	sigCh    chan os.Signal
}

// Install registers handlers for the fatal signals and SIGINT and starts
// the relaying goroutine. Call Uninstall to release resources.
func Install() *Handler {
	h := &Handler{
		failures: make(chan Failure, 1),
		stop:     make(chan struct{}),
		sigCh:    make(chan os.Signal, 4),
	}
	signals := append(append([]os.Signal{}, fatalSignals...), os.Interrupt)
	signal.Notify(h.sigCh, signals...)
	go h.relay()
	return h
}

func (h *Handler) relay() {
	for sig := range h.sigCh {
		if sig == os.Interrupt {
			close(h.stop)
			continue
		}
		select {
		case h.failures <- Failure{Signal: sig.String(), Message: "fatal signal: " + sig.String()}:
		default:
		}
	}
}

// Failures delivers fatal-signal reports as they arrive.
func (h *Handler) Failures() <-chan Failure { return h.failures }

// Stopped is closed once an interrupt (SIGINT) has been received.
func (h *Handler) Stopped() <-chan struct{} { return h.stop }

func (h *Handler) Uninstall() {
	signal.Stop(h.sigCh)
	close(h.sigCh)
}

// ArmTimer schedules a Timeout failure after d if d > 0, returning a
// function that must be called to disarm it once the run completes
// normally. Reports the timeout directly via time.Timer rather than
// raising a real SIGALRM through the signal path installed above.
func (h *Handler) ArmTimer(d time.Duration) (disarm func()) {
	if d <= 0 {
		return func() {}
	}
	timer := time.AfterFunc(d, func() {
		select {
		case h.failures <- Failure{Signal: "SIGALRM", Message: "timeout after " + d.String()}:
		default:
		}
	})
	return func() { timer.Stop() }
}
