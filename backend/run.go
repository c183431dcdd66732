package backend

// Start runs the backend's tick loop (§4.8.3): `while pre(step): step();
// if not post(step): break`. It returns the first error a Step call
// produces, or nil if the loop exited via the predicates or a Stop call.
func (b *Backend) Start(pre, post func(step uint64) bool) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		running := b.running
		step := b.step
		b.mu.Unlock()
		if !running || !pre(step) {
			break
		}

		if err := b.Step(); err != nil {
			b.mu.Lock()
			b.running = false
			b.mu.Unlock()
			return err
		}

		b.mu.Lock()
		step = b.step
		b.mu.Unlock()
		if !post(step) {
			break
		}
	}

	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
	return nil
}

// StartWith runs the loop using a single predicate as both the pre- and
// post-condition, matching the single-argument `start(p)` overload.
func (b *Backend) StartWith(predicate func(step uint64) bool) error {
	return b.Start(predicate, predicate)
}

// StartForever runs the loop until Stop is called, with no predicate-based
// termination.
func (b *Backend) StartForever() error {
	return b.Start(
		func(uint64) bool { return true },
		func(uint64) bool { return true },
	)
}

// Stop clears the running flag observed by Start's loop. It is safe to
// call from another goroutine.
func (b *Backend) Stop() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// Running reports whether the backend's tick loop is currently active.
func (b *Backend) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
