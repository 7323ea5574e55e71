// Package workload supplies process bodies — the "host"-provided simulated
// programs spec.md scopes out of the engine package — as declarative step
// sequences, grounded in original_source/sim_sched_advanced.c's
// sim_proc_data_processing/sim_proc_interactive/sim_proc_cpubound/
// sim_proc_iobound, and in original_source/sim_sched_np.c's sim_iorequest,
// which calls sched() immediately after the engine's raw io_request because
// io_request never parks the caller (spec.md §4.3).
package workload

import (
	"fmt"
	"math/rand"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/go-simsched/policy"
)

// StepKind identifies what a Step does when it runs.
type StepKind int

const (
	// Burst runs the virtual CPU for Duration units.
	Burst StepKind = iota
	// IO blocks on a simulated device for Duration units, then hands the
	// CPU to the policy (io_request never self-parks; see package doc).
	IO
)

// Step is one action in a Program.
type Step struct {
	Kind StepKind

	// Duration is the fixed length of the step, used when Jitter is zero.
	Duration engine.VTime

	// Jitter, if non-zero, makes the step's actual duration
	// Duration + rand.Intn(Jitter), matching original_source's
	// "(rand() % 200) + 50" style randomized think-time/burst bodies.
	Jitter int
}

// Program is an ordered sequence of Steps a simulated process runs through
// before returning (and thus exiting, spec.md §4.6).
type Program struct {
	Name  string
	Steps []Step
}

// Repeat returns a new Program whose Steps are this Program's Steps
// repeated n times, the way sim_proc_cpubound/sim_proc_iobound loop a fixed
// request/burst pair.
func (p Program) Repeat(n int) Program {
	out := Program{Name: p.Name}
	for i := 0; i < n; i++ {
		out.Steps = append(out.Steps, p.Steps...)
	}
	return out
}

func (s Step) resolve(rng *rand.Rand) engine.VTime {
	if s.Jitter <= 0 || rng == nil {
		return s.Duration
	}
	return s.Duration + engine.VTime(rng.Intn(s.Jitter))
}

// Body compiles p into a process body runnable via sched.Policy.Load,
// driving the steps through proc, and handing the CPU back to sched after
// every IO step. It calls sched.Yield, not sched.Schedule, because
// engine.Proc.IORequest never parks the caller on its own (spec.md §4.3) and
// the process that just blocked must not be re-enqueued as ready — only
// Schedule's slice-runout callers want that; see the Policy interface doc.
// rng may be nil, in which case steps with Jitter are treated as unjittered.
func (p Program) Body(sched policy.Policy, rng *rand.Rand) func(proc *engine.Proc) {
	return func(proc *engine.Proc) {
		for _, step := range p.Steps {
			d := step.resolve(rng)
			switch step.Kind {
			case Burst:
				proc.CPUBurst(d)
			case IO:
				proc.IORequest(d)
				sched.Yield(proc)
			default:
				panic(fmt.Sprintf("workload: unknown step kind %d in program %q", step.Kind, p.Name))
			}
		}
	}
}

// Preset programs, one per original_source/sim_sched_advanced.c example
// process body. Randomized durations use the supplied *rand.Rand in Body,
// not a global seed, so simulations stay reproducible given a seeded source.

// CPUBound mirrors sim_proc_cpubound: two rounds of a short I/O wait
// followed by a long CPU burst.
var CPUBound = Program{
	Name: "cpubound",
	Steps: []Step{
		{Kind: IO, Duration: 10}, {Kind: Burst, Duration: 1000},
		{Kind: IO, Duration: 10}, {Kind: Burst, Duration: 1000},
	},
}

// IOBound mirrors sim_proc_iobound: three rounds of a long I/O wait
// followed by a short CPU burst.
var IOBound = Program{
	Name: "iobound",
	Steps: []Step{
		{Kind: IO, Duration: 100}, {Kind: Burst, Duration: 10},
		{Kind: IO, Duration: 100}, {Kind: Burst, Duration: 10},
		{Kind: IO, Duration: 100}, {Kind: Burst, Duration: 10},
	},
}

// Interactive mirrors sim_proc_interactive: five rounds of a randomized
// user-think-time I/O wait followed by a short, randomized CPU burst.
var Interactive = Program{
	Name: "interactive",
	Steps: []Step{
		{Kind: IO, Duration: 50, Jitter: 200}, {Kind: Burst, Duration: 5, Jitter: 20},
		{Kind: IO, Duration: 50, Jitter: 200}, {Kind: Burst, Duration: 5, Jitter: 20},
		{Kind: IO, Duration: 50, Jitter: 200}, {Kind: Burst, Duration: 5, Jitter: 20},
		{Kind: IO, Duration: 50, Jitter: 200}, {Kind: Burst, Duration: 5, Jitter: 20},
		{Kind: IO, Duration: 50, Jitter: 200}, {Kind: Burst, Duration: 5, Jitter: 20},
	},
}

// DataProcessing mirrors sim_proc_data_processing: a load I/O, a heavy
// burst, two rounds of store-I/O plus a randomized quick burst plus
// reload-I/O, then a finalize burst and a save I/O.
var DataProcessing = Program{
	Name: "data-processing",
	Steps: []Step{
		{Kind: IO, Duration: 150},
		{Kind: Burst, Duration: 800},
		{Kind: IO, Duration: 50}, {Kind: Burst, Duration: 50, Jitter: 100}, {Kind: IO, Duration: 70},
		{Kind: IO, Duration: 50}, {Kind: Burst, Duration: 50, Jitter: 100}, {Kind: IO, Duration: 70},
		{Kind: Burst, Duration: 400},
		{Kind: IO, Duration: 100},
	},
}

// Presets indexes the preset programs by name, for workload files that
// reference them instead of (or alongside) inline step lists.
var Presets = map[string]Program{
	CPUBound.Name:       CPUBound,
	IOBound.Name:        IOBound,
	Interactive.Name:    Interactive,
	DataProcessing.Name: DataProcessing,
}
