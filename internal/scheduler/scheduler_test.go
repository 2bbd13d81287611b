package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itorder/internal"
)

func okJob(name string, delay time.Duration) Job {
	return Job{Name: name, Run: func(ctx context.Context) (*internal.TestOrderResult, error) {
		time.Sleep(delay)
		return &internal.TestOrderResult{Algorithm: name}, nil
	}}
}

func TestRunKeepsJobOrder(t *testing.T) {
	s := New(3)
	out := s.Run(context.Background(), []Job{
		okJob("slow", 30*time.Millisecond),
		okJob("fast", 0),
		okJob("mid", 10*time.Millisecond),
	})
	require.Len(t, out, 3)
	for i, name := range []string{"slow", "fast", "mid"} {
		assert.Equal(t, name, out[i].Name)
		require.NoError(t, out[i].Err)
		assert.Equal(t, name, out[i].Result.Algorithm)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	out := New(2).Run(context.Background(), []Job{
		{Name: "fails", Run: func(context.Context) (*internal.TestOrderResult, error) { return nil, boom }},
		{Name: "panics", Run: func(context.Context) (*internal.TestOrderResult, error) { panic("bad state") }},
		okJob("ok", 0),
	})
	assert.ErrorIs(t, out[0].Err, boom)
	require.Error(t, out[1].Err)
	assert.Contains(t, out[1].Err.Error(), "panic")
	assert.Nil(t, out[1].Result)
	assert.NoError(t, out[2].Err)
}

func TestRunRespectsMaxParallel(t *testing.T) {
	var running, peak int32
	job := func(name string) Job {
		return Job{Name: name, Run: func(context.Context) (*internal.TestOrderResult, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return &internal.TestOrderResult{}, nil
		}}
	}
	New(1).Run(context.Background(), []Job{job("a"), job("b"), job("c")})
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := New(2).Run(ctx, []Job{okJob("a", 0), okJob("b", 0)})
	for _, o := range out {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Nil(t, o.Result)
	}
}

func TestNewClampsParallelism(t *testing.T) {
	assert.Equal(t, 1, New(0).MaxParallel)
	assert.Empty(t, New(4).Run(context.Background(), nil))
}
