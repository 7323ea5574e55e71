package policy

import (
	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// fifoPolicy implements FCFS when sliceSize == 0 (unlimited burst, spec.md
// §3: "0 means unlimited") and round-robin when sliceSize > 0, grounded in
// original_source/sim_sched_np.c's sched()/sim_createproc()/sim_iorequest(),
// whose only difference between the two modes is the SIM_CPUMAXBURST
// constant passed to sim_cpustate_restore.
type fifoPolicy struct {
	eng       *engine.Engine
	sliceSize engine.VTime
	log       *logiface.Logger[*stumpy.Event]
	ExitHook  ExitHook

	pids    pidAllocator
	ready   readyFIFO
	running *ProcessInfo
}

// FCFS is a first-come-first-served policy: every process runs with an
// unlimited slice until it blocks on I/O or exits.
type FCFS struct{ *fifoPolicy }

// NewFCFS constructs an FCFS policy bound to eng.
func NewFCFS(eng *engine.Engine, opts ...Option) *FCFS {
	return &FCFS{newFIFOPolicy(eng, 0, opts)}
}

// RoundRobin is a preemptive policy: every process runs for at most
// sliceSize virtual-time units before OnSliceRunout re-enqueues it.
type RoundRobin struct{ *fifoPolicy }

// NewRoundRobin constructs a RoundRobin policy with the given slice size
// (must be > 0) bound to eng.
func NewRoundRobin(eng *engine.Engine, sliceSize engine.VTime, opts ...Option) *RoundRobin {
	if sliceSize == 0 {
		panic("policy: RoundRobin requires a positive slice size")
	}
	return &RoundRobin{newFIFOPolicy(eng, sliceSize, opts)}
}

func newFIFOPolicy(eng *engine.Engine, sliceSize engine.VTime, opts []Option) *fifoPolicy {
	p := &fifoPolicy{
		eng:       eng,
		sliceSize: sliceSize,
		log:       stumpy.L.New(stumpy.L.WithLevel(stumpy.L.LevelDisabled())),
	}
	for _, o := range opts {
		o.apply(&p.log, &p.ExitHook)
	}
	return p
}

func (p *fifoPolicy) Load(body func(proc *engine.Proc)) (int, error) {
	info := &ProcessInfo{
		PID:       p.pids.next(),
		CreatedAt: p.eng.Clock(),
	}
	if err := p.eng.LoadProcess(body, &info.State, info); err != nil {
		return 0, err
	}
	p.ready.pushBack(info)
	p.log.Trace().Int(`pid`, info.PID).Log(`process created, ready`)
	return info.PID, nil
}

func (p *fifoPolicy) OnIOReady(proc *engine.Proc, info *ProcessInfo) {
	p.ready.pushBack(info)
	p.log.Trace().Int(`pid`, info.PID).Log(`io ready`)
	if p.running == nil {
		p.Schedule(proc)
	}
}

func (p *fifoPolicy) OnSliceRunout(proc *engine.Proc, info *ProcessInfo) {
	p.log.Trace().Int(`pid`, info.PID).Log(`slice runout`)
	p.Schedule(proc)
}

func (p *fifoPolicy) OnExit(info *ProcessInfo) {
	if p.running == info {
		p.running = nil
	}
	p.ready.remove(info)
	exitClock := p.eng.Clock()
	p.log.Trace().Int(`pid`, info.PID).Log(`process exited`)
	if p.ExitHook != nil {
		p.ExitHook(info, exitClock)
	}
	p.Schedule(nil)
}

func (p *fifoPolicy) Schedule(self *engine.Proc) {
	if p.running != nil {
		if self != nil {
			self.Save(&p.running.State)
		}
		p.ready.pushBack(p.running)
		p.running = nil
	}
	p.dispatch(self)
}

// Yield hands off the CPU without re-enqueueing the currently running
// process; see the Policy interface doc for why this must differ from
// Schedule.
func (p *fifoPolicy) Yield(self *engine.Proc) {
	if p.running != nil && self != nil {
		self.Save(&p.running.State)
	}
	p.running = nil
	p.dispatch(self)
}

func (p *fifoPolicy) dispatch(self *engine.Proc) {
	next := p.ready.popFront()
	if next == nil {
		p.log.Trace().Log(`no ready process, waiting for next interrupt`)
		_ = p.eng.WaitNextInterrupt(self)
		return
	}

	p.running = next
	p.log.Trace().Int(`pid`, next.PID).Log(`dispatching`)
	if self != nil {
		self.Restore(&next.State, p.sliceSize)
	} else {
		p.eng.Restore(&next.State, p.sliceSize)
	}
}
