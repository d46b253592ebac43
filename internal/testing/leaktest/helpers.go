package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// settled polls until the goroutine count stops changing or the deadline
// passes, then returns the last observed count. Polling beats a fixed
// sleep: exiting goroutines unwind at unpredictable speed under -race.
func settled(deadline time.Duration) int {
	runtime.Gosched()
	count := runtime.NumGoroutine()
	expire := time.Now().Add(deadline)
	for time.Now().Before(expire) {
		time.Sleep(5 * time.Millisecond)
		next := runtime.NumGoroutine()
		if next == count {
			return count
		}
		count = next
	}
	return count
}

// GoroutineChecker detects goroutine leaks across a test body. It
// snapshots the goroutine count at construction and compares it again
// in Check after the code under test has run.
type GoroutineChecker struct {
	t      testing.TB
	before int
}

// NewGoroutineChecker records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	return &GoroutineChecker{t: t, before: settled(100 * time.Millisecond)}
}

// Check fails the test if more than tolerance goroutines outlived the
// code under test
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	runtime.GC()
	after := settled(200 * time.Millisecond)

	if leaked := after - g.before; leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and fails the test if any goroutine it
// started is still running afterwards
func CheckNoGoroutineLeak(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}
