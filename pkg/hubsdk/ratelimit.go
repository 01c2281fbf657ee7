package hubsdk

// Fixed-window rate limiting.
//
// The limiter counts requests against a window that restarts once
// requestWindow has elapsed since it opened. A request that would push the
// counter past maxRequestsPerWindow is delayed until the window closes,
// then charged against a fresh window. This intentionally permits a burst
// of up to the ceiling at the start of each window and stalls the request
// after it; the contract is "never exceed the ceiling within a window",
// not uniform pacing.

import "context"

// takeSlot charges one request against the current window, delaying the
// caller if the window is full. It is invoked before every outbound
// request, including the token exchange itself.
func (c *Client) takeSlot(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.takeSlotLocked(ctx)
}

// takeSlotLocked requires c.mu to be held. The wait happens with the lock
// held, so concurrent callers queue behind the delayed request instead of
// racing the counter.
func (c *Client) takeSlotLocked(ctx context.Context) error {
	now := c.now()

	if now.Sub(c.windowStart) >= requestWindow {
		c.requestCount = 0
		c.windowStart = now
	}

	if c.requestCount >= maxRequestsPerWindow {
		remaining := requestWindow - now.Sub(c.windowStart)
		if remaining > 0 {
			c.debugf("rate limit window full, waiting",
				"wait", remaining,
				"window", requestWindow,
				"ceiling", maxRequestsPerWindow,
			)
			if err := c.sleep(ctx, remaining); err != nil {
				return err
			}
		}
		// Re-sample after the wait; the fresh window starts now and the
		// pending request is its first charge.
		c.requestCount = 0
		c.windowStart = c.now()
	}

	c.requestCount++
	return nil
}
