package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// immediate replaces the debounce timer with a synchronous call.
func immediate(b *CodeBuffer) {
	b.schedule = func(d time.Duration, fn func()) func() bool {
		fn()
		return func() bool { return false }
	}
}

// manual captures the scheduled function so the test decides when (or
// whether) it fires.
func manual(b *CodeBuffer) *func() {
	var pending func()
	b.schedule = func(d time.Duration, fn func()) func() bool {
		pending = fn
		return func() bool {
			fired := pending == nil
			pending = nil
			return !fired
		}
	}
	return &pending
}

func TestCodeBufferCompletesExactlyOnce(t *testing.T) {
	var calls []string
	b := NewCodeBuffer(func(code string) { calls = append(calls, code) })
	immediate(b)

	for _, ch := range "123456" {
		require.NoError(t, b.Input(ch))
	}

	require.Equal(t, []string{"123456"}, calls)

	// overwriting a slot on a full buffer must not re-fire
	require.NoError(t, b.InputAt(3, '9'))
	assert.Equal(t, []string{"123456"}, calls)
	assert.Equal(t, "123956", b.Code())
}

func TestCodeBufferCompletesAfterBackspaceRetype(t *testing.T) {
	var calls int
	b := NewCodeBuffer(func(string) { calls++ })
	pending := manual(b)

	for _, ch := range "12345" {
		require.NoError(t, b.Input(ch))
	}
	require.NoError(t, b.Input('6'))
	require.NotNil(t, *pending)

	// user spots a typo before the debounce elapses
	b.Backspace()
	assert.Equal(t, "12345", b.Code())

	require.NoError(t, b.Input('7'))
	require.NotNil(t, *pending)
	(*pending)()

	assert.Equal(t, 1, calls)
	assert.Equal(t, "123457", b.Code())
}

func TestCodeBufferRejectsNonDigits(t *testing.T) {
	b := NewCodeBuffer(nil)
	immediate(b)

	assert.ErrorIs(t, b.Input('a'), ErrNotDigit)
	assert.ErrorIs(t, b.Input(' '), ErrNotDigit)
	assert.ErrorIs(t, b.InputAt(6, '1'), ErrSlotOutRange)
	assert.ErrorIs(t, b.InputAt(-1, '1'), ErrSlotOutRange)
	assert.Equal(t, "", b.Code())
	assert.Equal(t, 0, b.Focus())
}

func TestCodeBufferBackspaceSemantics(t *testing.T) {
	b := NewCodeBuffer(nil)
	immediate(b)

	require.NoError(t, b.Input('1'))
	require.NoError(t, b.Input('2'))
	require.Equal(t, 2, b.Focus())

	// focused slot 2 is empty: focus regresses, slot 1 keeps its digit
	b.Backspace()
	assert.Equal(t, 1, b.Focus())
	assert.Equal(t, "12", b.Code())

	// focused slot 1 holds "2": it clears in place
	b.Backspace()
	assert.Equal(t, 1, b.Focus())
	assert.Equal(t, "1", b.Code())

	b.Backspace()
	assert.Equal(t, 0, b.Focus())
	b.Backspace()
	assert.Equal(t, 0, b.Focus())
	assert.Equal(t, "1", b.Code())
}

func TestCodeBufferResetRearmsCompletion(t *testing.T) {
	var calls int
	b := NewCodeBuffer(func(string) { calls++ })
	immediate(b)

	for _, ch := range "111111" {
		require.NoError(t, b.Input(ch))
	}
	require.Equal(t, 1, calls)

	b.Reset()
	assert.Equal(t, "", b.Code())
	assert.Equal(t, 0, b.Focus())

	for _, ch := range "222222" {
		require.NoError(t, b.Input(ch))
	}
	assert.Equal(t, 2, calls)
}

func TestCodeBufferCloseSuppressesPendingCompletion(t *testing.T) {
	var calls int
	b := NewCodeBuffer(func(string) { calls++ })
	pending := manual(b)

	for _, ch := range "123456" {
		require.NoError(t, b.Input(ch))
	}
	require.NotNil(t, *pending)

	b.Close()
	assert.Nil(t, *pending)
	assert.Equal(t, 0, calls)
}
