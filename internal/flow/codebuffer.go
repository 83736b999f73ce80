package flow

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// CodeLength is the number of digit slots on the code-entry screen.
const CodeLength = 6

// completionDebounce lets the last digit render before the completion
// callback fires.
const completionDebounce = 150 * time.Millisecond

var (
	ErrNotDigit     = errors.New("slot accepts a single digit")
	ErrSlotOutRange = errors.New("slot index out of range")
)

// CodeBuffer models the six single-character inputs: per-slot focus,
// digit-only entry, backspace handling and exactly-once completion.
type CodeBuffer struct {
	mu        sync.Mutex
	slots     [CodeLength]string
	focus     int
	completed bool
	cancel    func() bool // stops a scheduled completion

	onComplete func(code string)
	schedule   func(d time.Duration, fn func()) func() bool
}

// NewCodeBuffer wires the completion callback. The callback runs once
// per filled buffer, debounced, and never again until Reset.
func NewCodeBuffer(onComplete func(code string)) *CodeBuffer {
	return &CodeBuffer{
		onComplete: onComplete,
		schedule: func(d time.Duration, fn func()) func() bool {
			t := time.AfterFunc(d, fn)
			return t.Stop
		},
	}
}

func (b *CodeBuffer) Focus() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focus
}

func (b *CodeBuffer) Code() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codeLocked()
}

func (b *CodeBuffer) codeLocked() string {
	return strings.Join(b.slots[:], "")
}

func (b *CodeBuffer) fullLocked() bool {
	for _, s := range b.slots {
		if s == "" {
			return false
		}
	}
	return true
}

// Input writes a digit into the focused slot.
func (b *CodeBuffer) Input(ch rune) error {
	b.mu.Lock()
	i := b.focus
	b.mu.Unlock()
	return b.InputAt(i, ch)
}

// InputAt writes a digit into slot i. Non-last slots advance focus;
// filling the buffer schedules completion after a short debounce so
// the last digit is visible before the screen moves on.
func (b *CodeBuffer) InputAt(i int, ch rune) error {
	if i < 0 || i >= CodeLength {
		return ErrSlotOutRange
	}
	if ch < '0' || ch > '9' {
		return ErrNotDigit
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.slots[i] = string(ch)
	if i < CodeLength-1 {
		b.focus = i + 1
	}

	if b.fullLocked() && !b.completed {
		b.completed = true
		code := b.codeLocked()
		b.cancel = b.schedule(completionDebounce, func() {
			if b.onComplete != nil {
				b.onComplete(code)
			}
		})
	}
	return nil
}

// Backspace implements the two observed behaviors: a non-empty focused
// slot is cleared in place, an empty one (above slot 0) regresses
// focus without touching the previous slot's content.
func (b *CodeBuffer) Backspace() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.slots[b.focus] != "" {
		b.slots[b.focus] = ""
		// a cleared slot un-fills the buffer: pull back a completion
		// that has not fired yet
		if b.completed && b.cancel != nil && b.cancel() {
			b.completed = false
			b.cancel = nil
		}
		return
	}
	if b.focus > 0 {
		b.focus--
	}
}

// Reset clears all slots and re-arms completion, e.g. after a failed
// verification re-enables input.
func (b *CodeBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.slots = [CodeLength]string{}
	b.focus = 0
	b.completed = false
}

// Close cancels any pending completion; call it when the owning screen
// is torn down.
func (b *CodeBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.completed = true // nothing may fire after close
}
