// Package server wraps a pallet application with the driver-side
// lifecycle checks: it enforces call ordering, serialises block
// execution and routes the optional Simulator capability.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// phase is a state of the application lifecycle.
type phase uint32

const (
	// phaseInit: waiting for Handshake.
	phaseInit phase = iota
	// phaseIdle: handshake done, no block in flight. CheckTx, Query and
	// Simulate may run at any time from here on.
	phaseIdle
	// phaseExecuting: ExecuteBlock is running.
	phaseExecuting
	// phaseExecuted: a block is staged; only Commit may follow.
	phaseExecuted
	// phaseCommitting: Commit is running.
	phaseCommitting
)

var phaseNames = [...]string{
	phaseInit:       "Init",
	phaseIdle:       "Ready",
	phaseExecuting:  "Executing",
	phaseExecuted:   "Executed",
	phaseCommitting: "Committing",
}

func (p phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("unknown(%d)", uint32(p))
}

// LifecycleGuard enforces the call order
// Handshake, then (ExecuteBlock, Commit)*. Out-of-order calls are driver
// bugs and panic.
type LifecycleGuard struct {
	phase atomic.Uint32
	// Held from Acquire* to Complete*/Fail* of a sequential call.
	seqMu sync.Mutex
	ready atomic.Bool
}

// NewLifecycleGuard creates a guard waiting for Handshake.
func NewLifecycleGuard() *LifecycleGuard {
	return &LifecycleGuard{}
}

// State returns the name of the current phase.
func (g *LifecycleGuard) State() string {
	return g.current().String()
}

func (g *LifecycleGuard) current() phase {
	return phase(g.phase.Load())
}

// enter moves from one phase to the next under seqMu, releasing it and
// panicking if the guard is elsewhere.
func (g *LifecycleGuard) enter(op string, from, to phase) {
	g.seqMu.Lock()
	if cur := g.current(); cur != from {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("pallets: %s called in state %s (expected %s)", op, cur, from))
	}
	g.phase.Store(uint32(to))
}

func (g *LifecycleGuard) leave(to phase) {
	g.phase.Store(uint32(to))
	g.seqMu.Unlock()
}

// AcquireHandshake starts the handshake. Panics unless in Init.
func (g *LifecycleGuard) AcquireHandshake() {
	if !g.phase.CompareAndSwap(uint32(phaseInit), uint32(phaseIdle)) {
		panic(fmt.Sprintf("pallets: Handshake called in state %s (expected Init)", g.current()))
	}
}

// CompleteHandshake opens the guard for concurrent calls.
func (g *LifecycleGuard) CompleteHandshake() {
	g.ready.Store(true)
}

// FailHandshake returns to Init so the handshake can be retried.
func (g *LifecycleGuard) FailHandshake() {
	g.phase.Store(uint32(phaseInit))
}

// AcquireExecute blocks until no sequential call is running, then moves
// to Executing. Panics unless Ready.
func (g *LifecycleGuard) AcquireExecute() {
	g.enter("ExecuteBlock", phaseIdle, phaseExecuting)
}

// CompleteExecute stages the block; Commit must follow.
func (g *LifecycleGuard) CompleteExecute() {
	g.leave(phaseExecuted)
}

// FailExecute returns to Ready. Nothing is staged, so no Commit follows.
func (g *LifecycleGuard) FailExecute() {
	g.leave(phaseIdle)
}

// AcquireCommit moves to Committing. Panics unless Executed.
func (g *LifecycleGuard) AcquireCommit() {
	g.enter("Commit", phaseExecuted, phaseCommitting)
}

// CompleteCommit returns to Ready.
func (g *LifecycleGuard) CompleteCommit() {
	g.leave(phaseIdle)
}

// CheckConcurrent panics if Handshake has not completed.
func (g *LifecycleGuard) CheckConcurrent() {
	if !g.ready.Load() {
		panic("pallets: concurrent call before Handshake completed")
	}
}

// HandshakeDone reports whether Handshake has completed.
func (g *LifecycleGuard) HandshakeDone() bool {
	return g.ready.Load()
}

// IsReady reports whether no block is in flight.
func (g *LifecycleGuard) IsReady() bool {
	return g.current() == phaseIdle
}
