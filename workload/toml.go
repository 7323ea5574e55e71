package workload

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/joeycumines/go-simsched/engine"
)

// Priority levels mirrored from original_source/sim_sched_advanced.c's
// PRIORITY_HIGH/PRIORITY_NORMAL/PRIORITY_LOW (lower number, more urgent).
const (
	PriorityHigh   = 1
	PriorityNormal = 2
	PriorityLow    = 3
)

// Scenario is the root of a TOML workload file: a named set of processes to
// load at simulation start, each either referencing a Preset program or
// supplying its own inline step list.
//
//	[[process]]
//	preset = "interactive"
//	priority = 1
//
//	[[process]]
//	name = "custom-batch"
//	priority = 2
//	[[process.step]]
//	kind = "io"
//	duration = 20
//	[[process.step]]
//	kind = "burst"
//	duration = 500
type Scenario struct {
	Process []ProcessSpec `toml:"process"`
}

// ProcessSpec describes one process entry in a Scenario.
type ProcessSpec struct {
	// Preset, if set, names an entry in Presets and Step/Name are ignored.
	Preset string `toml:"preset"`

	Name string     `toml:"name"`
	Step []StepSpec `toml:"step"`

	// Priority is only meaningful when the scenario is run under
	// policy.StaticPriority; other policies ignore it.
	Priority int `toml:"priority"`

	// Repeat, if > 1, repeats the resolved program's steps that many times.
	Repeat int `toml:"repeat"`
}

// StepSpec is the TOML-facing form of Step; Kind is "burst" or "io".
type StepSpec struct {
	Kind     string `toml:"kind"`
	Duration uint64 `toml:"duration"`
	Jitter   int    `toml:"jitter"`
}

// LoadScenarioFile parses a TOML workload file into a Scenario.
func LoadScenarioFile(path string) (Scenario, error) {
	var s Scenario
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Scenario{}, fmt.Errorf("workload: decode %s: %w", path, err)
	}
	return s, nil
}

// Program resolves a ProcessSpec into a runnable Program, either by lookup
// in Presets or by compiling its inline Step list.
func (ps ProcessSpec) Program() (Program, error) {
	var prog Program
	if ps.Preset != "" {
		preset, ok := Presets[ps.Preset]
		if !ok {
			return Program{}, fmt.Errorf("workload: unknown preset %q", ps.Preset)
		}
		prog = preset
	} else {
		prog = Program{Name: ps.Name}
		for _, s := range ps.Step {
			step, err := s.resolve()
			if err != nil {
				return Program{}, fmt.Errorf("workload: process %q: %w", ps.Name, err)
			}
			prog.Steps = append(prog.Steps, step)
		}
	}
	if ps.Repeat > 1 {
		prog = prog.Repeat(ps.Repeat)
	}
	return prog, nil
}

func (s StepSpec) resolve() (Step, error) {
	var kind StepKind
	switch s.Kind {
	case "burst":
		kind = Burst
	case "io":
		kind = IO
	default:
		return Step{}, fmt.Errorf("unknown step kind %q (want \"burst\" or \"io\")", s.Kind)
	}
	return Step{Kind: kind, Duration: engine.VTime(s.Duration), Jitter: s.Jitter}, nil
}
