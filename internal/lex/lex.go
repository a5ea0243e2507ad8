// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex is a small state-function-driven tokenizer, in the style of
// text/template's lexer: a StateFn reads runes and emits zero or more Items,
// then returns the state to run next (nil meaning "restart from the initial
// state").
package lex

import (
	"fmt"
	"io"
)

// Type identifies the kind of a lexed Item. Callers define their own Type
// values starting above EOF.
type Type int

// EOF is the Type emitted once the input is exhausted. A lexer that reaches
// EOF keeps emitting it on every subsequent Lex call.
const EOF Type = 0

// Pos is a rune offset into the lexer's input.
type Pos int

// Item is a single lexed token.
type Item struct {
	Type  Type
	Value interface{}
	Pos   Pos
}

// String renders the item for use in error messages.
func (i Item) String() string {
	if i.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%v", i.Value)
}

// StateFn is one state of the lexer's state machine: it consumes input,
// emits zero or more Items, and returns the next state to run. Returning nil
// restarts the machine from its initial state.
type StateFn func(*Lexer) StateFn

// Interface is what callers drive.
type Interface interface {
	Lex() Item
}

// RuneEOF is the sentinel rune returned by Next once input is exhausted.
const RuneEOF rune = -1

const runeEOF = RuneEOF

// Lexer is the concrete, rune-at-a-time state machine.
type Lexer struct {
	r     io.RuneScanner
	pos   Pos
	cur   rune
	buf   []Item
	init  StateFn
	state StateFn
}

// New returns a Lexer over r, starting in state init.
func New(r io.RuneScanner, init StateFn) Interface {
	return &Lexer{r: r, init: init, state: init, pos: -1}
}

// Next consumes and returns the next rune, or runeEOF at end of input.
func (l *Lexer) Next() rune {
	ch, _, err := l.r.ReadRune()
	if err != nil {
		l.cur = runeEOF
		return runeEOF
	}
	l.pos++
	l.cur = ch
	return ch
}

// Backup pushes the rune last returned by Next back onto the input. It may
// only be called once per Next call.
func (l *Lexer) Backup() {
	if l.cur == runeEOF {
		return
	}
	_ = l.r.UnreadRune()
	l.pos--
}

// Current returns the rune last returned by Next.
func (l *Lexer) Current() rune { return l.cur }

// AcceptWhile consumes runes while pred holds, leaving the lexer positioned
// right after the accepted run.
func (l *Lexer) AcceptWhile(pred func(rune) bool) {
	for {
		r := l.Next()
		if r == runeEOF {
			return
		}
		if !pred(r) {
			l.Backup()
			return
		}
	}
}

// Emit appends an Item of the given type and value, positioned at the
// lexer's current offset.
func (l *Lexer) Emit(t Type, v interface{}) {
	l.buf = append(l.buf, Item{Type: t, Value: v, Pos: l.pos})
}

// Lex drives the state machine until an Item is available and returns it.
func (l *Lexer) Lex() Item {
	for len(l.buf) == 0 {
		next := l.state(l)
		if next == nil {
			next = l.init
		}
		l.state = next
	}
	it := l.buf[0]
	l.buf = l.buf[1:]
	return it
}
