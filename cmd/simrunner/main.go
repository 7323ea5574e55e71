// Command simrunner wires a workload.Scenario, a policy.Policy, an
// engine.Engine, and a report.Recorder into a runnable simulation, the
// "driver" context spec.md's engine package otherwise leaves external.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joeycumines/go-catrate"
	microbatch "github.com/joeycumines/go-microbatch"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	_ "go.uber.org/automaxprocs"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/go-simsched/policy"
	"github.com/joeycumines/go-simsched/report"
	"github.com/joeycumines/go-simsched/workload"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "simrunner:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("simrunner", flag.ContinueOnError)
	var (
		workloadPath = fs.String("workload", "", "path to a TOML workload scenario file")
		policyName   = fs.String("policy", "fcfs", "scheduling policy: fcfs, rr, or priority")
		slice        = fs.Uint64("slice", 100, "time slice, in virtual-time units, for rr/priority policies")
		maxProcs     = fs.Int("max-processes", 0, "cap on live processes (0 = unbounded)")
		verbose      = fs.Bool("verbose", false, "emit trace-level scheduling events")
		seed         = fs.Int64("seed", 1, "seed for jittered workload step durations")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *workloadPath == "" {
		return fmt.Errorf("-workload is required")
	}

	scenario, err := workload.LoadScenarioFile(*workloadPath)
	if err != nil {
		return err
	}

	log := newLogger(*verbose)
	rng := rand.New(rand.NewSource(*seed))

	recorder := report.NewRecorder(&microbatch.BatcherConfig{MaxSize: 16, FlushInterval: 20 * time.Millisecond})

	// traceLimiter throttles verbose per-interrupt trace logging so a
	// workload with thousands of short I/O bursts doesn't flood stdout; it
	// does not affect simulation behavior, only what gets printed.
	traceLimiter := catrate.NewLimiter(map[time.Duration]int{time.Second: 200})

	var sched policy.Policy
	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady: func(proc *engine.Proc, opaque any) {
			logTrace(log, traceLimiter, "io-ready")
			sched.OnIOReady(proc, opaque.(*policy.ProcessInfo))
		},
		OnSliceRunout: func(proc *engine.Proc, opaque any) {
			logTrace(log, traceLimiter, "slice-runout")
			sched.OnSliceRunout(proc, opaque.(*policy.ProcessInfo))
		},
		OnExit: func(opaque any) {
			logTrace(log, traceLimiter, "exit")
			sched.OnExit(opaque.(*policy.ProcessInfo))
		},
	}, engine.WithMaxProcesses(*maxProcs), engine.WithLogger(log))

	sched, err = buildPolicy(*policyName, eng, engine.VTime(*slice), recorder.ExitHook)
	if err != nil {
		return err
	}

	for _, spec := range scenario.Process {
		prog, err := spec.Program()
		if err != nil {
			return err
		}
		body := prog.Body(sched, rng)

		var pid int
		if sp, ok := sched.(*policy.StaticPriority); ok {
			pid, err = sp.LoadWithPriority(body, spec.Priority)
		} else {
			pid, err = sched.Load(body)
		}
		if err != nil {
			return fmt.Errorf("loading process %q: %w", prog.Name, err)
		}
		log.Trace().Int(`pid`, pid).Str(`program`, prog.Name).Log(`process loaded`)
	}

	sched.Schedule(nil)
	eng.WaitAllFinish()

	if err := recorder.Close(); err != nil {
		return err
	}

	fmt.Println(recorder.Summarize())
	return nil
}

func buildPolicy(name string, eng *engine.Engine, slice engine.VTime, hook policy.ExitHook) (policy.Policy, error) {
	switch name {
	case "fcfs":
		return policy.NewFCFS(eng, policy.WithExitHook(hook)), nil
	case "rr":
		return policy.NewRoundRobin(eng, slice, policy.WithExitHook(hook)), nil
	case "priority":
		return policy.NewStaticPriority(eng, slice, policy.WithExitHook(hook)), nil
	default:
		return nil, fmt.Errorf("unknown policy %q (want fcfs, rr, or priority)", name)
	}
}

func newLogger(verbose bool) *logiface.Logger[*stumpy.Event] {
	level := stumpy.L.LevelDisabled()
	if verbose {
		level = stumpy.L.LevelTrace()
	}
	return stumpy.L.New(stumpy.L.WithLevel(level))
}

func logTrace(log *logiface.Logger[*stumpy.Event], limiter *catrate.Limiter, event string) {
	if _, ok := limiter.Allow(event); !ok {
		return
	}
	log.Trace().Str(`event`, event).Log(`engine interrupt`)
}
