package maya

import (
	"testing"
	"time"
)

func testBreaker() *breaker {
	return newBreaker(breakerConfig{
		failureThreshold: 3,
		successThreshold: 2,
		openTimeout:      50 * time.Millisecond,
		halfOpenMaxCalls: 1,
	})
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := testBreaker()

	for i := 0; i < 2; i++ {
		b.failure()
		if !b.allow() {
			t.Fatalf("breaker should stay closed after %d failures", i+1)
		}
	}

	b.failure()
	if b.allow() {
		t.Error("breaker should open at the failure threshold")
	}
	if got := b.stats().State; got != "open" {
		t.Errorf("unexpected state %q", got)
	}
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := testBreaker()

	b.failure()
	b.failure()
	b.success()
	b.failure()
	b.failure()

	if !b.allow() {
		t.Error("a success between failures should reset the streak")
	}
}

func TestBreakerProbesAfterCoolOff(t *testing.T) {
	b := testBreaker()

	for i := 0; i < 3; i++ {
		b.failure()
	}
	if b.allow() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(60 * time.Millisecond)

	if !b.allow() {
		t.Fatal("one probe should pass after the cool-off")
	}
	if b.allow() {
		t.Error("only one probe may be in flight")
	}

	// One good probe is not enough to close; two are required.
	b.success()
	if got := b.stats().State; got != "half-open" {
		t.Fatalf("unexpected state %q after first success", got)
	}
	if !b.allow() {
		t.Fatal("the next probe should be allowed")
	}
	b.success()
	if got := b.stats().State; got != "closed" {
		t.Errorf("unexpected state %q after second success", got)
	}
	if !b.allow() {
		t.Error("closed breaker should allow traffic")
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := testBreaker()

	for i := 0; i < 3; i++ {
		b.failure()
	}
	time.Sleep(60 * time.Millisecond)

	if !b.allow() {
		t.Fatal("probe should be allowed")
	}
	b.failure()

	if b.allow() {
		t.Error("a failed probe should reopen the breaker immediately")
	}
	if got := b.stats().State; got != "open" {
		t.Errorf("unexpected state %q", got)
	}
}

func TestBreakerReset(t *testing.T) {
	b := testBreaker()

	for i := 0; i < 3; i++ {
		b.failure()
	}
	b.reset()

	if !b.allow() {
		t.Error("reset should close the breaker")
	}
	st := b.stats()
	if st.State != "closed" || st.Failures != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}
