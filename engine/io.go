package engine

// IORequest moves the calling process from active to iowait, with a ready
// deadline of clock+wait, inserted to keep iowait sorted by ascending
// deadline (stable: equal deadlines preserve insertion order, spec §4.3).
// It does not park the caller; that is the policy's job, via a subsequent
// Save+Restore of some other process.
func (p *Proc) IORequest(wait VTime) {
	e := p.engine
	self := p.pcb

	e.mu.Lock()
	e.active.remove(self)
	self.ioReadyDeadline = e.clock + wait
	self.seq = e.seq
	e.seq++
	e.iowait.insert(self)
	e.mu.Unlock()

	e.log.Trace().Str(`event`, `io-request`).Log(`process blocked on io`)
}

// WaitNextInterrupt fast-forwards the virtual clock to the earliest pending
// I/O deadline and fires the I/O-ready callback for it (spec §4.4). It is
// called by the policy when no process is runnable, either from the driver
// (self == nil) or from inside a process's own Schedule context (self is
// that process's *Proc) — self is threaded through unchanged to the
// resulting OnIOReady call, since that is the goroutine the callback
// actually runs on. If iowait is empty it returns ErrNoPendingIO without
// touching the clock; the caller is responsible for treating that as a
// deadlock condition when processes are still live. WaitNextInterrupt does
// not itself resume any process — the callback is expected to do that.
func (e *Engine) WaitNextInterrupt(self *Proc) error {
	e.mu.Lock()
	head := e.iowait.peek()
	if head == nil {
		e.mu.Unlock()
		return ErrNoPendingIO
	}

	e.clock = head.ioReadyDeadline
	e.iowait.removeHead()
	e.active.append(head)
	e.mu.Unlock()

	e.log.Trace().Str(`event`, `io-ready`).Log(`io completion during fast-forward`)
	e.cb.OnIOReady(self, head.opaque)

	return nil
}
