package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(time.Millisecond)

	first := clock.Now()
	second := clock.Now()
	assert.Equal(t, time.Unix(0, 0).UTC().Add(time.Millisecond), first)
	assert.Equal(t, time.Millisecond, second.Sub(first))
	assert.Equal(t, 2, clock.Calls())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, 0, clock.Calls())
	assert.Equal(t, time.Unix(1, 0).UTC(), clock.Now())
}

func TestStepClock_ConcurrentCalls(t *testing.T) {
	clock := NewStepClock(time.Nanosecond)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, clock.Calls())
	assert.Equal(t, time.Unix(0, 51).UTC(), clock.Now())
}
