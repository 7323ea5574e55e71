package engine

// CPUBurst advances the virtual clock by up to wait units on behalf of the
// calling process, interleaving I/O-ready completions and slice-runout
// interrupts as they come due (spec §4.2). It returns once wait has been
// fully consumed; a slice-runout interrupt may cause the caller to be
// parked and later resumed (via the policy's own Save+Restore) before
// CPUBurst's loop continues.
func (p *Proc) CPUBurst(wait VTime) {
	e := p.engine
	self := p.pcb

	for wait > 0 {
		e.mu.Lock()

		var budget VTime
		if self.sliceRemaining == 0 || wait < self.sliceRemaining {
			budget = wait
		} else {
			budget = self.sliceRemaining
		}

		head := e.iowait.peek()
		if head != nil && head.ioReadyDeadline < e.clock+budget {
			delta := head.ioReadyDeadline - e.clock
			wait -= delta
			if self.sliceRemaining > 0 {
				self.sliceRemaining -= delta
			}
			e.clock = head.ioReadyDeadline

			e.iowait.removeHead()
			e.active.append(head)
			e.mu.Unlock()

			e.log.Trace().Str(`event`, `io-ready`).Log(`io completion during cpu burst`)
			e.cb.OnIOReady(p, head.opaque)
			continue
		}

		if self.sliceRemaining > 0 && wait > self.sliceRemaining {
			e.clock += self.sliceRemaining
			wait -= self.sliceRemaining
			self.sliceRemaining = 0
			e.mu.Unlock()

			e.log.Trace().Str(`event`, `slice-runout`).Log(`cpu slice exhausted`)
			e.cb.OnSliceRunout(p, self.opaque)
			continue
		}

		e.clock += wait
		if self.sliceRemaining > 0 {
			self.sliceRemaining -= wait
		}
		wait = 0
		e.mu.Unlock()
	}
}
