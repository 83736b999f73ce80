package flow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripsify/internal/domain"
)

type verifyCall struct {
	flow   Flow
	target string
	code   string
}

type fakeGateway struct {
	mu            sync.Mutex
	loginSends    int
	registerSends int
	lastChannel   domain.Channel
	lastDraft     FormData
	verifies      []verifyCall
	result        VerifyResult
	verifyErr     error
}

func (g *fakeGateway) SendLoginCode(ctx context.Context, contact ContactMethod, channel domain.Channel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loginSends++
	g.lastChannel = channel
	return nil
}

func (g *fakeGateway) SendRegisterCode(ctx context.Context, draft FormData, channel domain.Channel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registerSends++
	g.lastChannel = channel
	g.lastDraft = draft
	return nil
}

func (g *fakeGateway) VerifyCode(ctx context.Context, f Flow, target, code string) (VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifies = append(g.verifies, verifyCall{flow: f, target: target, code: code})
	if g.verifyErr != nil {
		return VerifyResult{}, g.verifyErr
	}
	return g.result, nil
}

// typeCode enters all six digits and then fires the debounced
// completion by hand, keeping the verification call synchronous.
func typeCode(t *testing.T, e *Engine, code string) {
	t.Helper()
	b := e.Buffer()
	require.NotNil(t, b)
	pending := manual(b)
	for _, ch := range code {
		require.NoError(t, b.Input(ch))
	}
	require.NotNil(t, *pending)
	(*pending)()
}

func TestEngineLoginFlowEndsAtHome(t *testing.T) {
	gw := &fakeGateway{result: VerifyResult{Token: "session-token"}}
	router := NewRouter(ScreenWelcome)
	require.NoError(t, router.Go(ScreenLogin))

	var token string
	e := NewEngine(router, gw, zap.NewNop(), func(tok string) { token = tok })
	defer e.Close()

	form := NewLoginForm()
	form.PhoneCode = "US"
	form.PhoneNumber = "5012345"
	require.NoError(t, e.StartLogin(context.Background(), form))
	require.Equal(t, ScreenCodeEntry, router.Current())
	assert.Equal(t, 1, gw.loginSends)
	assert.Equal(t, domain.ChannelSMS, gw.lastChannel)

	typeCode(t, e, "482913")

	require.Len(t, gw.verifies, 1)
	assert.Equal(t, verifyCall{flow: FlowLogin, target: "+US 5012345", code: "482913"}, gw.verifies[0])
	assert.Equal(t, ScreenHome, router.Current())
	assert.Equal(t, "session-token", token)
	// login must not leave verification on the back stack
	assert.False(t, router.Back())
}

func TestEngineRegisterFlowContinuesOnboarding(t *testing.T) {
	gw := &fakeGateway{result: VerifyResult{Ticket: "reg-ticket"}}
	router := NewRouter(ScreenWelcome)
	require.NoError(t, router.Go(ScreenSignup))

	e := NewEngine(router, gw, zap.NewNop(), nil)
	defer e.Close()

	form, _ := newSignupFixture()
	require.NoError(t, form.SelectCountry(context.Background(), 1, "US"))
	require.True(t, form.SelectCity("Paris"))
	form.Email = "driver@example.com"
	form.PhoneNumber = "5012345"
	form.Agreed = true

	errs, err := e.SubmitSignup(form)
	require.NoError(t, err)
	require.Nil(t, errs)
	require.Equal(t, ScreenMethodSelect, router.Current())

	require.NoError(t, e.ChooseChannel(context.Background(), domain.ChannelWhatsApp))
	require.Equal(t, ScreenCodeEntry, router.Current())
	assert.Equal(t, 1, gw.registerSends)
	assert.Equal(t, "Paris", gw.lastDraft.City)

	vc := e.Context()
	require.NotNil(t, vc)
	assert.Equal(t, FlowRegister, vc.Flow)
	assert.Equal(t, 2, vc.CurrentStep)
	assert.Equal(t, 6, vc.TotalSteps)
	require.NotNil(t, vc.Draft)

	typeCode(t, e, "482913")

	require.Len(t, gw.verifies, 1)
	assert.Equal(t, FlowRegister, gw.verifies[0].flow)
	assert.Equal(t, "+US 5012345", gw.verifies[0].target)
	assert.Equal(t, ScreenPersonalInfo, router.Current())
	assert.Equal(t, "reg-ticket", e.Ticket())

	vc = e.Context()
	assert.Equal(t, 3, vc.CurrentStep)
	assert.Equal(t, 6, vc.TotalSteps)
}

func TestEngineWrongCodeResetsBuffer(t *testing.T) {
	gw := &fakeGateway{verifyErr: errors.New("code mismatch")}
	router := NewRouter(ScreenWelcome)
	require.NoError(t, router.Go(ScreenLogin))

	e := NewEngine(router, gw, zap.NewNop(), nil)
	defer e.Close()

	form := NewLoginForm()
	form.PhoneNumber = "5012345"
	require.NoError(t, e.StartLogin(context.Background(), form))

	typeCode(t, e, "000000")

	assert.Equal(t, ScreenCodeEntry, router.Current())
	assert.Error(t, e.LastError())
	assert.Equal(t, "", e.Buffer().Code())
	assert.Equal(t, 0, e.Buffer().Focus())

	// second attempt with the right code goes through
	gw.mu.Lock()
	gw.verifyErr = nil
	gw.result = VerifyResult{Token: "tok"}
	gw.mu.Unlock()

	typeCode(t, e, "482913")
	assert.Equal(t, ScreenHome, router.Current())
	assert.NoError(t, e.LastError())
}

func TestEngineResendBlockedWhileCountingDown(t *testing.T) {
	gw := &fakeGateway{}
	router := NewRouter(ScreenWelcome)
	require.NoError(t, router.Go(ScreenLogin))

	e := NewEngine(router, gw, zap.NewNop(), nil)
	defer e.Close()

	form := NewLoginForm()
	form.PhoneNumber = "5012345"
	require.NoError(t, e.StartLogin(context.Background(), form))

	err := e.Resend(context.Background())
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Equal(t, 1, gw.loginSends)
}

func TestEngineChooseChannelGuards(t *testing.T) {
	gw := &fakeGateway{}
	router := NewRouter(ScreenWelcome)
	require.NoError(t, router.Go(ScreenSignup))

	e := NewEngine(router, gw, zap.NewNop(), nil)
	defer e.Close()

	assert.ErrorIs(t, e.ChooseChannel(context.Background(), domain.Channel("pigeon")), ErrChannelRequired)
	assert.ErrorIs(t, e.ChooseChannel(context.Background(), domain.ChannelSMS), ErrNoDraft)
	assert.Equal(t, 0, gw.registerSends)
}
