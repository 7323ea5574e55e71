package engine

// VTime is a virtual-clock reading: simulated time units since the
// simulation started. It never decreases for the lifetime of an Engine.
type VTime uint64
