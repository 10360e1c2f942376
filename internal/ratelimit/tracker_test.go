package ratelimit

import (
	"testing"
	"time"
)

func TestRollingWindowExceededThenRecovers(t *testing.T) {
	l := New(Limits{PerMinute: 5, PerHour: 1000, PerDay: 10000}, nil)

	virtual := time.Now()
	l.SetNow(func() time.Time { return virtual })

	for i := 0; i < 6; i++ {
		l.Record("user-1")
	}

	res := l.Check("user-1", "", nil)
	if !res.Exceeded {
		t.Fatal("expected exceeded after recording N+1 requests within the window")
	}
	found := false
	for _, w := range res.ExceededLimits {
		if w == string(WindowMinute) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected requests_per_minute in exceeded limits, got %v", res.ExceededLimits)
	}

	virtual = virtual.Add(61 * time.Second)
	res = l.Check("user-1", "", nil)
	if res.Exceeded {
		t.Fatal("expected limiter to recover after the window rolls forward")
	}
}

func TestRoleExemptionAlwaysAllows(t *testing.T) {
	l := New(Limits{PerMinute: 1}, RoleOverrides{
		"trusted": {Exempt: true},
	})

	for i := 0; i < 50; i++ {
		l.Record("service-account")
	}

	res := l.Check("service-account", "trusted", nil)
	if res.Exceeded {
		t.Fatal("exempt role must never report exceeded")
	}
}

func TestRoleOverrideAppliesStricterLimit(t *testing.T) {
	l := New(Limits{PerMinute: 5, PerHour: 10, PerDay: 100}, RoleOverrides{
		"support": {PerMinute: 3, PerHour: 6, PerDay: 100},
	})

	for i := 0; i < 3; i++ {
		l.Record("key-k")
	}

	res := l.Check("key-k", "support", nil)
	if !res.Exceeded {
		t.Fatal("expected the 4th request to exceed the role-overridden per-minute limit")
	}
	if len(res.ExceededLimits) != 1 || res.ExceededLimits[0] != string(WindowMinute) {
		t.Fatalf("expected only requests_per_minute to be exceeded, got %v", res.ExceededLimits)
	}
}

func TestZeroOrNegativeLimitAlwaysExceeds(t *testing.T) {
	l := New(Limits{PerMinute: -1}, nil)
	res := l.Check("anyone", "", nil)
	if !res.Exceeded {
		t.Fatal("negative limit must always exceed")
	}
}

func TestResetClearsHistory(t *testing.T) {
	l := New(Limits{PerMinute: 1, PerHour: 100, PerDay: 1000}, nil)
	l.Record("key-x")
	l.Record("key-x")

	if res := l.Check("key-x", "", nil); !res.Exceeded {
		t.Fatal("expected exceeded before reset")
	}

	l.Reset("key-x")
	if res := l.Status("key-x", "", nil); res.Exceeded {
		t.Fatal("expected zero current count after reset")
	}
}
