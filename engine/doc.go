// Package engine implements the core of a discrete-event operating-system
// scheduler simulator: a virtual clock, a process-control-block store, and
// the rendezvous discipline that hands a simulated CPU between goroutines
// that each play the role of one simulated process.
//
// A scheduling policy (see the sibling package "policy") loads process
// bodies with LoadProcess, then drives execution by calling Restore to hand
// the CPU to a chosen process. Process bodies run as ordinary sequential
// Go code, calling CPUBurst, IORequest, Save and Restore themselves; the
// engine suspends and resumes the calling goroutine around those calls so
// that, from the policy's point of view, exactly one simulated process is
// ever "on the CPU" at a given instant of virtual time.
//
// The engine never schedules anything itself. It exposes three callbacks
// (I/O-ready, slice-runout, process-exit) that a policy implements; the
// policy alone decides which ready process to restore next.
package engine
