package workload_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-simsched/engine"
	"github.com/joeycumines/go-simsched/policy"
	"github.com/joeycumines/go-simsched/workload"
)

func TestProgram_Body_IOBoundRunsToCompletion(t *testing.T) {
	var p policy.Policy
	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady:     func(proc *engine.Proc, opaque any) { p.OnIOReady(proc, opaque.(*policy.ProcessInfo)) },
		OnSliceRunout: func(proc *engine.Proc, opaque any) { p.OnSliceRunout(proc, opaque.(*policy.ProcessInfo)) },
		OnExit:        func(opaque any) { p.OnExit(opaque.(*policy.ProcessInfo)) },
	})
	fcfs := policy.NewFCFS(eng)
	p = fcfs

	_, err := fcfs.Load(workload.IOBound.Body(fcfs, nil))
	require.NoError(t, err)

	fcfs.Schedule(nil)
	eng.WaitAllFinish()

	// 3 rounds of (io 100, burst 10): clock advances by each step exactly.
	require.Equal(t, engine.VTime(330), eng.Clock())
}

func TestProgram_Body_JitterStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	var p policy.Policy
	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady:     func(proc *engine.Proc, opaque any) { p.OnIOReady(proc, opaque.(*policy.ProcessInfo)) },
		OnSliceRunout: func(proc *engine.Proc, opaque any) { p.OnSliceRunout(proc, opaque.(*policy.ProcessInfo)) },
		OnExit:        func(opaque any) { p.OnExit(opaque.(*policy.ProcessInfo)) },
	})
	fcfs := policy.NewFCFS(eng)
	p = fcfs

	_, err := fcfs.Load(workload.Interactive.Body(fcfs, rng))
	require.NoError(t, err)

	fcfs.Schedule(nil)
	eng.WaitAllFinish()

	// 5 rounds of (io in [50,250), burst in [5,25)): clock must land inside
	// the tightest and loosest possible totals.
	require.GreaterOrEqual(t, eng.Clock(), engine.VTime(5*(50+5)))
	require.Less(t, eng.Clock(), engine.VTime(5*(250+25)))
}

func TestProcessSpec_Program_ResolvesPresetAndInline(t *testing.T) {
	preset := workload.ProcessSpec{Preset: "cpubound"}
	prog, err := preset.Program()
	require.NoError(t, err)
	require.Equal(t, workload.CPUBound, prog)

	inline := workload.ProcessSpec{
		Name: "custom",
		Step: []workload.StepSpec{
			{Kind: "io", Duration: 20},
			{Kind: "burst", Duration: 500},
		},
	}
	prog, err = inline.Program()
	require.NoError(t, err)
	require.Equal(t, "custom", prog.Name)
	require.Len(t, prog.Steps, 2)
	require.Equal(t, workload.IO, prog.Steps[0].Kind)
	require.Equal(t, engine.VTime(20), prog.Steps[0].Duration)

	_, err = (workload.ProcessSpec{Step: []workload.StepSpec{{Kind: "bogus"}}}).Program()
	require.Error(t, err)
}
