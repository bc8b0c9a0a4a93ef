package limiter_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/cricket-api/pkg/limiter"
)

// Exercises the limiter from many goroutines at once; the race detector is
// the real assertion here.
func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(1 * time.Millisecond)
	rl.SetJitter(1 * time.Millisecond)
	rl.SetRandomSeed(42)

	hosts := []string{"a.example.com", "b.example.com", "c.example.com"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		host := hosts[i%len(hosts)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rl.ResolveDelay(host)
				rl.MarkLastFetchAsNow(host)
				if j%10 == 0 {
					rl.Backoff(host)
					rl.ResetBackoff(host)
				}
			}
		}()
	}
	wg.Wait()

	timings := rl.HostTimings()
	for _, host := range hosts {
		if _, ok := timings[host]; !ok {
			t.Errorf("host %s missing from timings after concurrent use", host)
		}
	}
}
