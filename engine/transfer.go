package engine

// Proc is the handle a running process body uses to call back into the
// engine. It plays the role of the thread-local "current PCB" in the
// original implementation (spec §9, DESIGN.md): since Go has no portable
// goroutine-local storage, the engine instead hands each process body (and
// each interrupt callback fired on that body's goroutine) the *Proc that
// identifies it, via an explicit closure argument.
type Proc struct {
	engine *Engine
	pcb    *pcb
}

// Opaque returns the handle the policy associated with this process at
// LoadProcess time.
func (p *Proc) Opaque() any { return p.pcb.opaque }

// LoadProcess allocates a PCB, binds it to state, registers body to run on
// a new goroutine, and enqueues it in active (spec §4.1). The new goroutine
// parks immediately, as its first action, and will not run body until this
// PCB is first Restored.
func (e *Engine) LoadProcess(body func(p *Proc), state *CPUState, opaque any) error {
	e.mu.Lock()
	if e.MaxProcesses > 0 && int(e.nLive.Load()) >= e.MaxProcesses {
		e.mu.Unlock()
		return ErrProcessCapExceeded
	}

	p := newPCB(body, opaque)
	p.seq = e.seq
	e.seq++

	state.upToDate = true
	state.pcb = p
	p.state = state

	e.active.append(p)
	e.mu.Unlock()

	e.nLive.Add(1)

	proc := &Proc{engine: e, pcb: p}
	go e.runProcess(proc)

	return nil
}

// runProcess is the body of every process goroutine: park until first
// Restored, run the body to completion, then tear down and fire OnExit.
func (e *Engine) runProcess(proc *Proc) {
	p := proc.pcb

	p.park()
	e.markUnparked()

	p.body(proc)

	e.markParked()

	e.mu.Lock()
	e.active.remove(p)
	e.mu.Unlock()

	opaque := p.opaque

	remaining := e.nLive.Add(-1)

	e.log.Trace().Str(`event`, `exit`).Log(`process exited`)

	e.cb.OnExit(opaque)

	if remaining < 1 {
		e.doneOnce.Do(func() { close(e.doneCh) })
	}
}

// Save refreshes the state<->PCB binding for the calling process, so a
// later Restore(state, ...) resolves back to this same PCB (spec §4.1).
func (p *Proc) Save(state *CPUState) {
	e := p.engine
	e.mu.Lock()
	state.upToDate = true
	state.pcb = p.pcb
	p.pcb.state = state
	e.mu.Unlock()
}

// Restore transfers the virtual CPU to the process identified by state,
// setting its slice budget to maxBurst, then parks the caller (spec §4.1:
// "if the caller is itself a PCB"). Fails silently if state is stale.
func (p *Proc) Restore(state *CPUState, maxBurst VTime) {
	p.engine.restore(state, maxBurst, p)
}

// Restore is the driver-facing form of restore: it never self-parks,
// because the caller (by construction) is not itself a simulated process.
// This is the asymmetry spec §9 calls out explicitly and requires be kept:
// only use this from outside any process body (typically once, to start
// the very first process).
func (e *Engine) Restore(state *CPUState, maxBurst VTime) {
	e.restore(state, maxBurst, nil)
}

// restore implements spec §4.1's restore primitive for both the Proc and
// Engine-level entry points. caller is nil from the driver, or the calling
// Proc from inside a process body; only the latter self-parks.
func (e *Engine) restore(state *CPUState, maxBurst VTime, caller *Proc) {
	e.mu.Lock()
	if state == nil || !state.upToDate || state.pcb == nil || state.pcb.state != state {
		e.mu.Unlock()
		return
	}
	target := state.pcb
	state.upToDate = false
	target.sliceRemaining = maxBurst
	e.mu.Unlock()

	e.log.Trace().Str(`event`, `restore`).Log(`transferring cpu`)

	target.unpark()

	if caller != nil {
		e.markParked()
		caller.pcb.park()
		e.markUnparked()
	}
}
