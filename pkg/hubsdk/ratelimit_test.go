package hubsdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives the client's now/sleep seams. Sleeping advances the
// clock by the requested duration, so waits resolve instantly in tests.
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	f.t = f.t.Add(d)
	return nil
}

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClient(t *testing.T, baseURL string) (*Client, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	c := NewClient(baseURL)
	c.now = clk.Now
	c.sleep = clk.Sleep
	return c, clk
}

func TestTakeSlotBurstWithinCeiling(t *testing.T) {
	c, clk := newTestClient(t, "http://hub.test")
	ctx := context.Background()

	for i := 0; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	require.Empty(t, clk.slept, "a full burst within one window must not wait")
	require.Equal(t, maxRequestsPerWindow, c.requestCount)
}

func TestTakeSlotDelaysWhenWindowFull(t *testing.T) {
	c, clk := newTestClient(t, "http://hub.test")
	ctx := context.Background()

	for i := 0; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	// One more than the ceiling: the client must wait out the rest of
	// the window and charge the request against a fresh one.
	require.NoError(t, c.takeSlot(ctx))

	require.Len(t, clk.slept, 1)
	require.Equal(t, requestWindow, clk.slept[0])
	require.Equal(t, 1, c.requestCount)
	require.Equal(t, clk.t, c.windowStart)
}

func TestTakeSlotPartialWindowWait(t *testing.T) {
	c, clk := newTestClient(t, "http://hub.test")
	ctx := context.Background()

	require.NoError(t, c.takeSlot(ctx))
	clk.Advance(400 * time.Millisecond)
	for i := 1; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	require.NoError(t, c.takeSlot(ctx))

	require.Len(t, clk.slept, 1)
	require.Equal(t, requestWindow-400*time.Millisecond, clk.slept[0])
}

func TestTakeSlotWindowRollover(t *testing.T) {
	c, clk := newTestClient(t, "http://hub.test")
	ctx := context.Background()

	for i := 0; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	// Once the window has elapsed on its own the counter resets and the
	// next request goes straight through.
	clk.Advance(requestWindow)
	require.NoError(t, c.takeSlot(ctx))

	require.Empty(t, clk.slept)
	require.Equal(t, 1, c.requestCount)
}

func TestTakeSlotContextCancelledDuringWait(t *testing.T) {
	c, _ := newTestClient(t, "http://hub.test")
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}
	ctx := context.Background()

	for i := 0; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	err := c.takeSlot(ctx)
	require.ErrorIs(t, err, context.Canceled)
	// The interrupted request must not have been charged.
	require.Equal(t, maxRequestsPerWindow, c.requestCount)
}

func TestResetRateLimit(t *testing.T) {
	c, clk := newTestClient(t, "http://hub.test")
	ctx := context.Background()

	for i := 0; i < maxRequestsPerWindow; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}

	c.ResetRateLimit()
	require.NoError(t, c.takeSlot(ctx))

	require.Empty(t, clk.slept, "a reset window must admit requests immediately")
	require.Equal(t, 1, c.requestCount)
}

func TestTakeSlotRealClockPacing(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time pacing test")
	}

	c := NewClient("http://hub.test")
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 20; i++ {
		require.NoError(t, c.takeSlot(ctx))
	}
	elapsed := time.Since(start)

	// 20 requests span two windows: 13 immediately, then a wait for the
	// window boundary, then the remaining 7.
	require.GreaterOrEqual(t, elapsed, 900*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Minute)
	require.True(t, errors.Is(err, context.Canceled))
}
