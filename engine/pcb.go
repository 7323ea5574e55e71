package engine

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// CPUState is the small, policy-owned handle that identifies a PCB to
// Restore. It must be initialized by LoadProcess before use. UpToDate is
// true iff the engine has stored, but not yet resumed, the PCB it is bound
// to; Restore clears it, Save (and LoadProcess) set it.
type CPUState struct {
	upToDate bool
	pcb      *pcb
}

// pcb is the engine's per-process control block. It is owned exclusively by
// the engine for the lifetime of the simulated process: created by
// LoadProcess, destroyed just before the exit callback fires.
type pcb struct {
	body   func(p *Proc)
	opaque any

	// state is the CPUState currently bound to this pcb. Save/Restore
	// refresh this link; it is how the engine finds "this" pcb from a
	// policy-owned handle.
	state *CPUState

	// rendezvous is a binary semaphore: weight 1 means parked (no permit
	// available to run), weight 0 means a Restore has posted and the
	// goroutine blocked in Acquire may proceed. See engine/transfer.go.
	rendezvous *semaphore.Weighted

	ioReadyDeadline VTime
	sliceRemaining  VTime // 0 == unlimited

	// seq is the insertion sequence, used only to break ties in iowait
	// ordering (stable: equal deadlines preserve insertion order).
	seq uint64

	// heapIndex is this pcb's index within the iowait heap, or -1 when the
	// pcb is not a member of iowait. Maintained by container/heap via
	// iowaitHeap.Swap.
	heapIndex int
}

func newPCB(body func(p *Proc), opaque any) *pcb {
	p := &pcb{
		body:       body,
		opaque:     opaque,
		rendezvous: semaphore.NewWeighted(1),
		heapIndex:  -1,
	}
	// Consume the single permit so the first Acquire (performed by the
	// process's own goroutine, as its first action) blocks until this pcb
	// is first Restored.
	_ = p.rendezvous.Acquire(context.Background(), 1)
	return p
}

// park blocks the calling goroutine until some other goroutine calls
// unpark on this pcb.
func (p *pcb) park() {
	_ = p.rendezvous.Acquire(context.Background(), 1)
}

// unpark releases exactly one parked goroutine waiting in park. It must be
// paired 1:1 with a park call; calling it twice without an intervening
// park would violate the binary-semaphore contract, which the engine's
// Restore protocol guarantees never happens (spec §4.1).
func (p *pcb) unpark() {
	p.rendezvous.Release(1)
}
