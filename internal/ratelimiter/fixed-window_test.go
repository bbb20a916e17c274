package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allow, _ := rl.Allow("10.0.0.1"); !allow {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	allow, retryAfter := rl.Allow("10.0.0.1")
	if allow {
		t.Fatal("fourth request inside the window should be blocked")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %s", retryAfter)
	}

	// A different client has its own window.
	if allow, _ := rl.Allow("10.0.0.2"); !allow {
		t.Fatal("independent client should be allowed")
	}
}

func TestFixedWindowRollsOver(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 10*time.Millisecond)

	if allow, _ := rl.Allow("10.0.0.1"); !allow {
		t.Fatal("first request should be allowed")
	}
	if allow, _ := rl.Allow("10.0.0.1"); allow {
		t.Fatal("second request inside the window should be blocked")
	}

	time.Sleep(15 * time.Millisecond)

	if allow, _ := rl.Allow("10.0.0.1"); !allow {
		t.Fatal("request in the next window should be allowed")
	}
}
