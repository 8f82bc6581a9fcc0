package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDebouncer_Coalesces(t *testing.T) {
	var calls atomic.Int32
	d := New(30*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
	}
	if !d.Pending() {
		t.Error("expected pending run after Trigger")
	}

	waitFor(t, func() bool { return calls.Load() == 1 })
	waitFor(t, func() bool { return !d.Pending() })

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls: got %d, want 1", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var calls atomic.Int32
	d := New(time.Hour, func() { calls.Add(1) })

	if d.Flush() {
		t.Error("Flush with nothing pending should report false")
	}

	d.Trigger()
	if !d.Flush() {
		t.Error("Flush should report the pending run")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls after Flush: got %d, want 1", got)
	}
	if d.Pending() {
		t.Error("nothing should be pending after Flush")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32
	d := New(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	if d.Pending() {
		t.Error("nothing should be pending after Stop")
	}

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls after Stop: got %d, want 0", got)
	}
}

func TestDebouncer_TriggerAfterRun(t *testing.T) {
	var calls atomic.Int32
	d := New(10*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	waitFor(t, func() bool { return calls.Load() == 1 })

	d.Trigger()
	waitFor(t, func() bool { return calls.Load() == 2 })
}
