package underwriting

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-assistant/internal/common/logger"
)

func TestLockedRandBounds(t *testing.T) {
	r := NewLockedRand(1)

	for i := 0; i < 1000; i++ {
		n := r.Intn(17)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 17)

		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

// Parallel sessions share one random source through the engine; the run must
// stay clean under the race detector.
func TestAssessConcurrentSessions(t *testing.T) {
	e := New(NewLockedRand(42), logger.NewNoOpLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d, err := e.Assess(profile(780, 300000, 60000), 250000, 24)
				if !assert.NoError(t, err) {
					return
				}
				assert.GreaterOrEqual(t, d.Confidence, 82)
				assert.LessOrEqual(t, d.Confidence, 98)
			}
		}()
	}
	wg.Wait()
}
