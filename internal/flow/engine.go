package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripsify/internal/domain"
)

var (
	ErrNoDraft         = errors.New("no sign-up draft to verify")
	ErrResendTooSoon   = errors.New("resend not available yet")
	ErrNoVerification  = errors.New("no verification in progress")
	ErrChannelRequired = errors.New("delivery channel is required")
)

const verifyTimeout = 15 * time.Second

// VerifyResult is what the backend returns for a correct code: a
// session token for login, a one-time registration ticket otherwise.
type VerifyResult struct {
	Token  string
	Ticket string
}

// Gateway is the backend surface the engine drives. The HTTP client
// implements it; tests swap in fakes.
type Gateway interface {
	SendLoginCode(ctx context.Context, contact ContactMethod, channel domain.Channel) error
	SendRegisterCode(ctx context.Context, draft FormData, channel domain.Channel) error
	VerifyCode(ctx context.Context, f Flow, target, code string) (VerifyResult, error)
}

// Engine runs the verification wizard: it owns the router, the code
// buffer and the resend countdown, and reacts to buffer completion by
// calling the backend and navigating by flow kind.
type Engine struct {
	mu      sync.Mutex
	router  *Router
	gateway Gateway
	log     *zap.Logger

	vc        *VerificationContext
	buffer    *CodeBuffer
	countdown *Countdown

	draft     *FormData
	ticket    string
	verifying bool
	lastErr   error

	onAuthenticated func(token string)
	onTick          func(remaining int)
	onResendReady   func()
}

func NewEngine(router *Router, gateway Gateway, log *zap.Logger, onAuthenticated func(token string)) *Engine {
	return &Engine{
		router:          router,
		gateway:         gateway,
		log:             log,
		onAuthenticated: onAuthenticated,
	}
}

// OnCountdown registers the resend-timer callbacks before any code is
// sent.
func (e *Engine) OnCountdown(tick func(remaining int), ready func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = tick
	e.onResendReady = ready
}

func (e *Engine) Router() *Router { return e.router }

// Buffer exposes the active code buffer, nil outside code entry.
func (e *Engine) Buffer() *CodeBuffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

// Context returns the verification parameters of the current pass.
func (e *Engine) Context() *VerificationContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vc
}

// Ticket returns the registration ticket minted by a successful
// register-flow verification.
func (e *Engine) Ticket() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticket
}

// LastError reports the most recent verification failure; it clears on
// the next attempt.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// StartLogin submits the login form, asks the backend for a code and
// opens code entry in the login flow.
func (e *Engine) StartLogin(ctx context.Context, form *LoginForm) error {
	vc, err := form.Submit()
	if err != nil {
		return err
	}
	if err := e.gateway.SendLoginCode(ctx, vc.Contact, vc.Channel); err != nil {
		return err
	}
	if err := e.router.Go(ScreenCodeEntry); err != nil {
		return err
	}
	e.openCodeEntry(vc)
	return nil
}

// SubmitSignup validates the sign-up form and carries its draft to
// method select. Nothing reaches the backend yet.
func (e *Engine) SubmitSignup(form *SignupForm) (FieldErrors, error) {
	draft, errs := form.Submit()
	if errs != nil {
		return errs, nil
	}
	if err := e.router.Go(ScreenMethodSelect); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.draft = draft
	e.mu.Unlock()
	return nil, nil
}

// ChooseChannel is the method-select action: it sends the first code
// over the chosen channel and opens code entry in the register flow
// with the draft attached.
func (e *Engine) ChooseChannel(ctx context.Context, channel domain.Channel) error {
	if !channel.Valid() {
		return ErrChannelRequired
	}

	e.mu.Lock()
	draft := e.draft
	e.mu.Unlock()
	if draft == nil {
		return ErrNoDraft
	}

	if err := e.gateway.SendRegisterCode(ctx, *draft, channel); err != nil {
		return err
	}
	if err := e.router.Go(ScreenCodeEntry); err != nil {
		return err
	}

	e.openCodeEntry(&VerificationContext{
		Contact: ContactMethod{
			Kind:        ContactPhone,
			PhoneCode:   draft.PhoneCode,
			PhoneNumber: draft.PhoneNumber,
		},
		Channel:     channel,
		Flow:        FlowRegister,
		CurrentStep: registerCodeStep,
		TotalSteps:  registerTotalSteps,
		Draft:       draft,
	})
	return nil
}

func (e *Engine) openCodeEntry(vc *VerificationContext) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()
	e.vc = vc
	e.lastErr = nil
	e.buffer = NewCodeBuffer(e.complete)
	e.startCountdownLocked()
}

func (e *Engine) startCountdownLocked() {
	tick, ready := e.onTick, e.onResendReady
	e.countdown = NewCountdown(ResendDelay, tick, ready)
	e.countdown.Start()
}

// Resend re-sends the code over the original channel once the
// countdown has lapsed, then restarts it.
func (e *Engine) Resend(ctx context.Context) error {
	e.mu.Lock()
	vc := e.vc
	if vc == nil {
		e.mu.Unlock()
		return ErrNoVerification
	}
	if e.countdown != nil && e.countdown.Active() {
		e.mu.Unlock()
		return ErrResendTooSoon
	}
	draft := vc.Draft
	e.mu.Unlock()

	var err error
	if vc.Flow.Normalize() == FlowLogin {
		err = e.gateway.SendLoginCode(ctx, vc.Contact, vc.Channel)
	} else {
		if draft == nil {
			return ErrNoDraft
		}
		err = e.gateway.SendRegisterCode(ctx, *draft, vc.Channel)
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer != nil {
		e.buffer.Reset()
	}
	e.startCountdownLocked()
	return nil
}

// complete runs when the buffer fills. The flow discriminator, not the
// screen that sent us here, decides where a correct code leads.
func (e *Engine) complete(code string) {
	e.mu.Lock()
	if e.verifying || e.vc == nil {
		e.mu.Unlock()
		return
	}
	e.verifying = true
	vc := e.vc
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	res, err := e.gateway.VerifyCode(ctx, vc.Flow.Normalize(), vc.Contact.Target(), code)

	e.mu.Lock()
	e.verifying = false
	if err != nil {
		e.lastErr = err
		if e.buffer != nil {
			e.buffer.Reset()
		}
		e.mu.Unlock()
		e.log.Warn("code verification failed",
			zap.String("flow", string(vc.Flow.Normalize())),
			zap.Error(err))
		return
	}
	e.lastErr = nil
	e.mu.Unlock()

	if vc.Flow.Normalize() == FlowLogin {
		e.finishLogin(res.Token)
		return
	}
	e.advanceRegistration(vc, res.Ticket)
}

func (e *Engine) finishLogin(token string) {
	e.mu.Lock()
	e.teardownLocked()
	e.mu.Unlock()

	// session first, then navigation, so home renders authenticated
	if e.onAuthenticated != nil {
		e.onAuthenticated(token)
	}
	// login replaces the stack so back can never reopen code entry
	if err := e.router.Replace(ScreenHome); err != nil {
		e.log.Error("login navigation rejected", zap.Error(err))
	}
}

func (e *Engine) advanceRegistration(vc *VerificationContext, ticket string) {
	e.mu.Lock()
	e.ticket = ticket
	e.teardownLocked()
	e.vc = &VerificationContext{
		Contact:     vc.Contact,
		Channel:     vc.Channel,
		Flow:        FlowRegister,
		CurrentStep: registerPersonalStep,
		TotalSteps:  registerTotalSteps,
		Draft:       vc.Draft,
	}
	e.mu.Unlock()

	if err := e.router.Go(ScreenPersonalInfo); err != nil {
		e.log.Error("registration navigation rejected", zap.Error(err))
	}
}

func (e *Engine) teardownLocked() {
	if e.buffer != nil {
		e.buffer.Close()
		e.buffer = nil
	}
	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown = nil
	}
}

// Close releases timers when the engine goes away, e.g. on app exit or
// when the user backs out of verification.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
	e.vc = nil
}
