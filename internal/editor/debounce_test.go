package editor

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(40*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Notify()
		time.Sleep(10 * time.Millisecond)
	}
	waitFor(t, time.Second, func() bool { return runs.Load() == 1 })

	time.Sleep(80 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("expected exactly one run, got %d", n)
	}
}

func TestDebouncer_CancelDropsPendingRun(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	d.Notify()
	if !d.Pending() {
		t.Fatalf("expected pending after Notify")
	}
	if !d.Cancel() {
		t.Fatalf("expected Cancel to report a pending run")
	}
	time.Sleep(80 * time.Millisecond)
	if n := runs.Load(); n != 0 {
		t.Fatalf("expected no run after Cancel, got %d", n)
	}
}

func TestDebouncer_StopIgnoresNotify(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })
	d.Stop()
	d.Notify()
	time.Sleep(60 * time.Millisecond)
	if n := runs.Load(); n != 0 {
		t.Fatalf("expected no run after Stop, got %d", n)
	}
}

func TestDebouncer_NilSafe(t *testing.T) {
	var d *Debouncer
	d.Notify()
	d.Stop()
	if d.Cancel() || d.Pending() {
		t.Fatalf("nil debouncer should report nothing pending")
	}
}
