package flow

import (
	"errors"
	"fmt"
	"sync"
)

// Flow discriminates a login verification pass from a registration one.
// It is the only field code entry consults to pick its post-completion
// destination.
type Flow string

const (
	FlowLogin    Flow = "login"
	FlowRegister Flow = "register"
)

// Normalize maps an absent discriminator to registration, which is how
// code entry has always treated it.
func (f Flow) Normalize() Flow {
	if f == FlowLogin {
		return FlowLogin
	}
	return FlowRegister
}

// Screen identifies a step of the app's navigation graph.
type Screen string

const (
	ScreenWelcome      Screen = "welcome"
	ScreenLogin        Screen = "login"
	ScreenSignup       Screen = "signup"
	ScreenMethodSelect Screen = "method_select"
	ScreenCodeEntry    Screen = "code_entry"
	ScreenPersonalInfo Screen = "personal_info"
	ScreenDocuments    Screen = "documents"
	ScreenPayment      Screen = "payment"
	ScreenExplore      Screen = "explore"
	ScreenHome         Screen = "home"
)

// transitions is the central definition of which screen may follow
// which. Every hop of the wizard goes through this table instead of
// each screen hardcoding its successor.
var transitions = map[Screen][]Screen{
	ScreenWelcome:      {ScreenLogin, ScreenSignup},
	ScreenLogin:        {ScreenSignup, ScreenCodeEntry},
	ScreenSignup:       {ScreenLogin, ScreenMethodSelect},
	ScreenMethodSelect: {ScreenCodeEntry},
	ScreenCodeEntry:    {ScreenPersonalInfo, ScreenHome},
	ScreenPersonalInfo: {ScreenDocuments},
	ScreenDocuments:    {ScreenPayment},
	ScreenPayment:      {ScreenExplore},
	ScreenExplore:      {ScreenHome},
	ScreenHome:         {},
}

var ErrIllegalTransition = errors.New("navigation not allowed from this screen")

// CanNavigate reports whether the table allows moving from one screen
// to another.
func CanNavigate(from, to Screen) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Router tracks the current screen and a back stack, enforcing the
// transition table. Verification completes on a timer goroutine, so
// navigation is guarded.
type Router struct {
	mu      sync.Mutex
	current Screen
	stack   []Screen
}

func NewRouter(initial Screen) *Router {
	return &Router{current: initial}
}

func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Go pushes the current screen onto the back stack and moves forward.
func (r *Router) Go(to Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !CanNavigate(r.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.current, to)
	}
	r.stack = append(r.stack, r.current)
	r.current = to
	return nil
}

// Replace swaps the whole stack for the destination. Used after login
// so the user can never navigate back into verification.
func (r *Router) Replace(to Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !CanNavigate(r.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.current, to)
	}
	r.current = to
	r.stack = nil
	return nil
}

// Back pops the previous screen; it reports false at the stack root.
func (r *Router) Back() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) == 0 {
		return false
	}
	r.current = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return true
}

func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack)
}
