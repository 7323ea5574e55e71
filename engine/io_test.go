package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-simsched/engine"
)

// TestWaitNextInterrupt_NoPendingIOReturnsSentinel confirms the documented
// deadlock signal: calling WaitNextInterrupt with an empty iowait returns
// ErrNoPendingIO and touches neither the clock nor any callback.
func TestWaitNextInterrupt_NoPendingIOReturnsSentinel(t *testing.T) {
	var ioReadys int
	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady:     func(proc *engine.Proc, opaque any) { ioReadys++ },
		OnSliceRunout: func(proc *engine.Proc, opaque any) {},
		OnExit:        func(opaque any) {},
	})

	err := eng.WaitNextInterrupt(nil)
	require.ErrorIs(t, err, engine.ErrNoPendingIO)
	require.Equal(t, 0, ioReadys)
	require.Equal(t, engine.VTime(0), eng.Clock())
}

// TestWaitNextInterrupt_FastForwardsToEarliestDeadline registers a single
// pending I/O deadline and has the driver discover it directly via
// WaitNextInterrupt, matching how a policy falls back to it when the ready
// queue is empty. The process returns (and so exits) right after
// IORequest, leaving its deadline in iowait, so the driver's WaitAllFinish
// synchronizes its later inspection of engine state against that
// registration rather than racing a concurrently-running goroutine.
func TestWaitNextInterrupt_FastForwardsToEarliestDeadline(t *testing.T) {
	var readyOpaque any
	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady:     func(proc *engine.Proc, opaque any) { readyOpaque = opaque },
		OnSliceRunout: func(proc *engine.Proc, opaque any) {},
		OnExit:        func(opaque any) {},
	})

	var state engine.CPUState
	require.NoError(t, eng.LoadProcess(func(proc *engine.Proc) {
		proc.IORequest(30)
	}, &state, "p1"))

	eng.Restore(&state, 0)
	eng.WaitAllFinish()

	require.NoError(t, eng.WaitNextInterrupt(nil))
	require.Equal(t, engine.VTime(30), eng.Clock())
	require.Equal(t, "p1", readyOpaque)
}

// TestIORequest_MultipleDeadlinesOrderedAscending confirms the iowait heap
// surfaces the earliest deadline first regardless of registration order.
// "long" is dispatched (and registers its farther-out deadline) before
// "short", yet WaitNextInterrupt must still fire for "short" first. Each
// process closes its own channel immediately after IORequest, giving the
// driver a synchronization point before it dispatches the next one or
// inspects engine state, so no two goroutines ever race on shared state.
func TestIORequest_MultipleDeadlinesOrderedAscending(t *testing.T) {
	var order []string
	longRegistered := make(chan struct{})
	shortRegistered := make(chan struct{})

	eng := engine.NewEngine(engine.Callbacks{
		OnIOReady:     func(proc *engine.Proc, opaque any) { order = append(order, opaque.(string)) },
		OnSliceRunout: func(proc *engine.Proc, opaque any) {},
		OnExit:        func(opaque any) {},
	})

	var stateLong, stateShort engine.CPUState
	require.NoError(t, eng.LoadProcess(func(proc *engine.Proc) {
		proc.IORequest(100)
		close(longRegistered)
	}, &stateLong, "long"))
	require.NoError(t, eng.LoadProcess(func(proc *engine.Proc) {
		proc.IORequest(10)
		close(shortRegistered)
	}, &stateShort, "short"))

	eng.Restore(&stateLong, 0)
	<-longRegistered

	eng.Restore(&stateShort, 0)
	<-shortRegistered

	require.NoError(t, eng.WaitNextInterrupt(nil))
	require.Equal(t, engine.VTime(10), eng.Clock())
	require.Equal(t, []string{"short"}, order)

	require.NoError(t, eng.WaitNextInterrupt(nil))
	require.Equal(t, engine.VTime(100), eng.Clock())
	require.Equal(t, []string{"short", "long"}, order)
}
