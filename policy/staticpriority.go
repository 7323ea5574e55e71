package policy

import (
	"sort"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// StaticPriority implements a non-preemptive-by-priority scheduler: distinct
// priority classes, each an insertion-ordered FIFO, scanned from the most
// urgent (lowest Priority number) class down, grounded in
// original_source/sim_sched_advanced.c's sched(), which scans
// proclist[0..MAXPRIO) in order and dispatches the first non-empty queue's
// head. Within a class it is round-robin if sliceSize > 0, otherwise FCFS.
type StaticPriority struct {
	eng       *engine.Engine
	sliceSize engine.VTime
	log       *logiface.Logger[*stumpy.Event]
	ExitHook  ExitHook

	pids    pidAllocator
	classes map[int]*readyFIFO
	running *ProcessInfo
}

// NewStaticPriority constructs a StaticPriority policy bound to eng. A slice
// size of 0 means unlimited (never preempts within a priority class); a
// positive slice size makes each class internally round-robin.
func NewStaticPriority(eng *engine.Engine, sliceSize engine.VTime, opts ...Option) *StaticPriority {
	p := &StaticPriority{
		eng:       eng,
		sliceSize: sliceSize,
		log:       stumpy.L.New(stumpy.L.WithLevel(stumpy.L.LevelDisabled())),
		classes:   make(map[int]*readyFIFO),
	}
	for _, o := range opts {
		o.apply(&p.log, &p.ExitHook)
	}
	return p
}

func (p *StaticPriority) classFor(priority int) *readyFIFO {
	c, ok := p.classes[priority]
	if !ok {
		c = &readyFIFO{}
		p.classes[priority] = c
	}
	return c
}

// Load registers a process at priority 0, the most urgent class; it exists
// to satisfy the Policy interface. Use LoadWithPriority to choose a
// priority (lower is more urgent).
func (p *StaticPriority) Load(body func(proc *engine.Proc)) (int, error) {
	return p.LoadWithPriority(body, 0)
}

// LoadWithPriority registers a process body at the given static priority.
func (p *StaticPriority) LoadWithPriority(body func(proc *engine.Proc), priority int) (int, error) {
	info := &ProcessInfo{
		PID:       p.pids.next(),
		CreatedAt: p.eng.Clock(),
		Priority:  priority,
	}
	if err := p.eng.LoadProcess(body, &info.State, info); err != nil {
		return 0, err
	}
	p.classFor(priority).pushBack(info)
	p.log.Trace().Int(`pid`, info.PID).Int(`priority`, priority).Log(`process created, ready`)
	return info.PID, nil
}

func (p *StaticPriority) OnIOReady(proc *engine.Proc, info *ProcessInfo) {
	p.classFor(info.Priority).pushBack(info)
	p.log.Trace().Int(`pid`, info.PID).Log(`io ready`)
	if p.running == nil {
		p.Schedule(proc)
	}
}

func (p *StaticPriority) OnSliceRunout(proc *engine.Proc, info *ProcessInfo) {
	p.log.Trace().Int(`pid`, info.PID).Log(`slice runout`)
	p.Schedule(proc)
}

func (p *StaticPriority) OnExit(info *ProcessInfo) {
	if p.running == info {
		p.running = nil
	}
	p.classFor(info.Priority).remove(info)
	exitClock := p.eng.Clock()
	p.log.Trace().Int(`pid`, info.PID).Log(`process exited`)
	if p.ExitHook != nil {
		p.ExitHook(info, exitClock)
	}
	p.Schedule(nil)
}

// Schedule saves the currently running process (if any) back into its own
// priority class, then scans classes from lowest priority number upward for
// the first non-empty one and dispatches its head.
func (p *StaticPriority) Schedule(self *engine.Proc) {
	if p.running != nil {
		if self != nil {
			self.Save(&p.running.State)
		}
		p.classFor(p.running.Priority).pushBack(p.running)
		p.running = nil
	}
	p.dispatch(self)
}

// Yield hands off the CPU without re-enqueueing the currently running
// process into its priority class; see the Policy interface doc for why
// this must differ from Schedule.
func (p *StaticPriority) Yield(self *engine.Proc) {
	if p.running != nil && self != nil {
		self.Save(&p.running.State)
	}
	p.running = nil
	p.dispatch(self)
}

func (p *StaticPriority) dispatch(self *engine.Proc) {
	next := p.popHighestPriority()
	if next == nil {
		p.log.Trace().Log(`no ready process, waiting for next interrupt`)
		_ = p.eng.WaitNextInterrupt(self)
		return
	}

	p.running = next
	p.log.Trace().Int(`pid`, next.PID).Int(`priority`, next.Priority).Log(`dispatching`)
	if self != nil {
		self.Restore(&next.State, p.sliceSize)
	} else {
		p.eng.Restore(&next.State, p.sliceSize)
	}
}

func (p *StaticPriority) popHighestPriority() *ProcessInfo {
	priorities := make([]int, 0, len(p.classes))
	for prio, c := range p.classes {
		if len(c.items) > 0 {
			priorities = append(priorities, prio)
		}
	}
	if len(priorities) == 0 {
		return nil
	}
	sort.Ints(priorities)
	return p.classes[priorities[0]].popFront()
}
