package signalhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArmTimerFiresAfterDuration(t *testing.T) {
	h := &Handler{failures: make(chan Failure, 1), stop: make(chan struct{})}
	disarm := h.ArmTimer(10 * time.Millisecond)
	defer disarm()

	select {
	case f := <-h.Failures():
		assert.Equal(t, "SIGALRM", f.Signal)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timer did not fire")
	}
}

func TestArmTimerZeroIsNoop(t *testing.T) {
	h := &Handler{failures: make(chan Failure, 1), stop: make(chan struct{})}
	disarm := h.ArmTimer(0)
	disarm()
	select {
	case <-h.Failures():
		t.Fatal("unexpected failure")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDisarmCancelsTimer(t *testing.T) {
	h := &Handler{failures: make(chan Failure, 1), stop: make(chan struct{})}
	disarm := h.ArmTimer(30 * time.Millisecond)
	disarm()
	select {
	case <-h.Failures():
		t.Fatal("timer fired despite disarm")
	case <-time.After(60 * time.Millisecond):
	}
}
