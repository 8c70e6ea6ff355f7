package view

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestDebouncer_RunsLatestOnce(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 500*time.Millisecond)

	ran := make(chan string, 10)
	for _, v := range []string{"a", "b", "c"} {
		d.Trigger(func() { ran <- v })
		mock.Add(100 * time.Millisecond)
	}
	if !d.Pending() {
		t.Fatal("expected pending timer")
	}

	mock.Add(399 * time.Millisecond)
	quiet(t, ran)

	mock.Add(time.Millisecond)
	if got := receive(t, ran); got != "c" {
		t.Errorf("ran %q, want c", got)
	}
	quiet(t, ran)
	waitFor(t, func() bool { return !d.Pending() })
}

func TestDebouncer_Cancel(t *testing.T) {
	mock := clock.NewMock()
	d := NewDebouncer(mock, 200*time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Cancel()
	if d.Pending() {
		t.Error("pending after cancel")
	}
	mock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestDebouncer_IndependentInstances(t *testing.T) {
	mock := clock.NewMock()
	fetch := NewDebouncer(mock, 500*time.Millisecond)
	suggest := NewDebouncer(mock, 200*time.Millisecond)

	ran := make(chan string, 4)
	fetch.Trigger(func() { ran <- "fetch" })
	suggest.Trigger(func() { ran <- "suggest" })

	mock.Add(200 * time.Millisecond)
	if got := receive(t, ran); got != "suggest" {
		t.Errorf("first = %q, want suggest", got)
	}
	mock.Add(300 * time.Millisecond)
	if got := receive(t, ran); got != "fetch" {
		t.Errorf("second = %q, want fetch", got)
	}
}
