// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package moccarduino

import "fmt"

// Consumer is a stage in an event pipeline. Every pipeline stage (a
// TimeSeries, a FutureStore, a Demultiplexer, ...) implements it.
//
// OnEvent consumes an event that must respect causality (its time must not
// precede the time of the last OnEvent/OnTimeAdvance call). OnTimeAdvance
// notifies the consumer that logical time has moved on, without an
// associated value; this is what lets deferred-release consumers (like
// FutureStore) or windowed filters (Demultiplexer, Aggregator) flush state
// even when no new event arrives. OnClear empties any buffered state but,
// per spec, never resets the causality watermark.
type Consumer[V any] interface {
	OnEvent(t Time, v V) error
	OnTimeAdvance(t Time) error
	OnClear() error
}

// chain is embedded by every concrete Consumer implementation. It provides
// the non-owning single-successor link and the shared causality bookkeeping
// so that each concrete type only has to implement its own logic, not the
// forwarding boilerplate.
type chain[V any] struct {
	next     Consumer[V]
	lastTime Time
}

// Next returns the attached next consumer, or nil.
func (c *chain[V]) Next() Consumer[V] { return c.next }

// LastTime returns the last time observed by this consumer.
func (c *chain[V]) LastTime() Time { return c.lastTime }

// Attach wires next right after this consumer. Attaching an already
// attached slot is an error.
func (c *chain[V]) Attach(next Consumer[V]) error {
	if c.next != nil {
		return newError(ChainAlreadyAttached, "next consumer is already attached")
	}
	c.next = next
	return nil
}

// Detach removes the next consumer. Detaching an empty slot is an error.
func (c *chain[V]) Detach() error {
	if c.next == nil {
		return newError(ChainNotAttached, "no next consumer is attached")
	}
	c.next = nil
	return nil
}

func (c *chain[V]) checkCausality(t Time) error {
	if t < c.lastTime {
		return newError(CausalityViolation, fmt.Sprintf("time %d precedes last observed time %d", t, c.lastTime))
	}
	return nil
}

func (c *chain[V]) advance(t Time) { c.lastTime = t }

func (c *chain[V]) forwardEvent(t Time, v V) error {
	if c.next == nil {
		return nil
	}
	return c.next.OnEvent(t, v)
}

func (c *chain[V]) forwardTimeAdvance(t Time) error {
	if c.next == nil {
		return nil
	}
	return c.next.OnTimeAdvance(t)
}

func (c *chain[V]) forwardClear() error {
	if c.next == nil {
		return nil
	}
	return c.next.OnClear()
}

// forkedChain is embedded by consumers that additionally produce events of a
// different value type W on a secondary "sprout" output (§4.2, §9). The
// sprout is not mirrored automatically: the owning consumer decides when to
// emit on it. Time advances and clears do propagate to the sprout.
type forkedChain[V, W any] struct {
	chain[V]
	sprout Consumer[W]
}

// Sprout returns the attached sprout consumer, or nil.
func (f *forkedChain[V, W]) Sprout() Consumer[W] { return f.sprout }

// AttachSprout wires a sprout consumer. Attaching an already attached slot
// is an error.
func (f *forkedChain[V, W]) AttachSprout(c Consumer[W]) error {
	if f.sprout != nil {
		return newError(ChainAlreadyAttached, "sprout consumer is already attached")
	}
	f.sprout = c
	return nil
}

// DetachSprout removes the sprout consumer. Detaching an empty slot is an
// error.
func (f *forkedChain[V, W]) DetachSprout() error {
	if f.sprout == nil {
		return newError(ChainNotAttached, "no sprout consumer is attached")
	}
	f.sprout = nil
	return nil
}

func (f *forkedChain[V, W]) forwardSproutTimeAdvance(t Time) error {
	if f.sprout == nil {
		return nil
	}
	return f.sprout.OnTimeAdvance(t)
}

func (f *forkedChain[V, W]) forwardSproutClear() error {
	if f.sprout == nil {
		return nil
	}
	return f.sprout.OnClear()
}

// Analyzer is a pass-through consumer wrapping two callables: onEvent is
// invoked on every event AND on every time advance (with the last value
// seen so far), onClear is invoked on clear. It lets an observer react at
// every clock tick, not just when a new value arrives.
type Analyzer[V any] struct {
	chain[V]
	onEvent  func(t Time, v V)
	onClear  func()
	lastVal  V
	hasValue bool
}

// NewAnalyzer builds an Analyzer invoking onEvent and onClear as described
// above. Either callback may be nil.
func NewAnalyzer[V any](onEvent func(t Time, v V), onClear func()) *Analyzer[V] {
	return &Analyzer[V]{onEvent: onEvent, onClear: onClear}
}

// OnEvent implements Consumer.
func (a *Analyzer[V]) OnEvent(t Time, v V) error {
	if err := a.checkCausality(t); err != nil {
		return err
	}
	a.lastVal = v
	a.hasValue = true
	if a.onEvent != nil {
		a.onEvent(t, v)
	}
	if err := a.forwardEvent(t, v); err != nil {
		return err
	}
	a.advance(t)
	return nil
}

// OnTimeAdvance implements Consumer. It additionally invokes onEvent with
// the last value seen, so observers can react at every clock tick.
func (a *Analyzer[V]) OnTimeAdvance(t Time) error {
	if err := a.checkCausality(t); err != nil {
		return err
	}
	if a.hasValue && a.onEvent != nil {
		a.onEvent(t, a.lastVal)
	}
	if err := a.forwardTimeAdvance(t); err != nil {
		return err
	}
	a.advance(t)
	return nil
}

// OnClear implements Consumer. last_time is preserved, per spec.
func (a *Analyzer[V]) OnClear() error {
	if a.onClear != nil {
		a.onClear()
	}
	return a.forwardClear()
}
