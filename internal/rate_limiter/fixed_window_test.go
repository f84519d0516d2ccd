package ratelimiter

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/VannaSem/SevaSign/internal/config"
)

func newTestLimiter(requests int, frame time.Duration) *FixedWindowRateLimiter {
	return NewRateLimiter(config.RateLimiterConfig{
		RequestsPerTimeFrame: requests,
		TimeFrame:            frame,
		Enabled:              true,
	}, nil)
}

func TestFixedWindowAllowsUpToLimit(t *testing.T) {
	rl := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allow, _ := rl.Allow("10.0.0.1"); !allow {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allow, retryAfter := rl.Allow("10.0.0.1")
	if allow {
		t.Fatal("request above the limit should be denied")
	}
	if retryAfter != time.Minute {
		t.Errorf("retryAfter = %v, want %v", retryAfter, time.Minute)
	}
}

func TestFixedWindowTracksClientsSeparately(t *testing.T) {
	rl := newTestLimiter(1, time.Minute)

	if allow, _ := rl.Allow("10.0.0.1"); !allow {
		t.Fatal("first client should be allowed")
	}
	if allow, _ := rl.Allow("10.0.0.2"); !allow {
		t.Fatal("second client has its own counter")
	}
	if allow, _ := rl.Allow("10.0.0.1"); allow {
		t.Fatal("first client exhausted its window")
	}
}

func TestFixedWindowConcurrentRequestsHonorLimit(t *testing.T) {
	const limit = 5
	rl := newTestLimiter(limit, time.Minute)

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allow, _ := rl.Allow("10.0.0.1"); allow {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != limit {
		t.Errorf("allowed %d concurrent requests, want exactly %d", got, limit)
	}
}

func TestFixedWindowResetsAfterTimeFrame(t *testing.T) {
	rl := newTestLimiter(1, 20*time.Millisecond)

	if allow, _ := rl.Allow("10.0.0.1"); !allow {
		t.Fatal("first request should be allowed")
	}
	if allow, _ := rl.Allow("10.0.0.1"); allow {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(50 * time.Millisecond)

	if allow, _ := rl.Allow("10.0.0.1"); !allow {
		t.Fatal("request after the window elapsed should be allowed")
	}
}
