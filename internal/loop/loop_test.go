package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain_RunsInOrder(t *testing.T) {
	l := New()

	var order []int
	for i := 1; i <= 3; i++ {
		l.Schedule(func() { order = append(order, i) })
	}
	require.Equal(t, 3, l.Pending())

	assert.Equal(t, 3, l.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, l.Pending())
}

func TestDrain_RunsNestedSchedules(t *testing.T) {
	l := New()

	var order []string
	l.Schedule(func() {
		order = append(order, "outer")
		l.Schedule(func() { order = append(order, "inner") })
	})

	assert.Equal(t, 2, l.Drain())
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestSchedule_IgnoresNil(t *testing.T) {
	l := New()
	l.Schedule(nil)
	assert.Equal(t, 0, l.Pending())
}

func TestRunUntil_StopsWhenConditionHolds(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	count := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			l.Schedule(func() { count++ })
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := l.RunUntil(ctx, func() bool { return count >= 5 })
	require.NoError(t, err)
	wg.Wait()
	assert.Equal(t, 5, count)
}

func TestRun_ReturnsContextError(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
