package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsWithinWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over the limit should be denied")
	}
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") {
		t.Error("first client should be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("second client should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("first client should now be limited")
	}
	if rl.ActiveClients() != 2 {
		t.Errorf("ActiveClients() = %d, want 2", rl.ActiveClients())
	}
}

func TestLimiterZeroConfigUsesDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.requestsPerMinute != 60 {
		t.Errorf("requestsPerMinute = %d, want 60", rl.requestsPerMinute)
	}
}
