package engine

import "errors"

// Sentinel errors returned by engine operations. No error is retried
// inside the engine and none propagate across callbacks (spec §7).
var (
	// ErrProcessCapExceeded is returned by LoadProcess when Engine.MaxProcesses
	// is positive and already at capacity.
	ErrProcessCapExceeded = errors.New("simsched: process capacity exceeded")

	// ErrNoPendingIO is returned by WaitNextInterrupt when the I/O-wait
	// structure is empty. The caller (the policy) is responsible for
	// detecting this as a deadlock condition when n_live > 0.
	ErrNoPendingIO = errors.New("simsched: wait_next_interrupt: no pending I/O")
)
