package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowNormalize(t *testing.T) {
	assert.Equal(t, FlowLogin, FlowLogin.Normalize())
	assert.Equal(t, FlowRegister, FlowRegister.Normalize())
	// an absent or mangled discriminator falls back to registration
	assert.Equal(t, FlowRegister, Flow("").Normalize())
	assert.Equal(t, FlowRegister, Flow("signup").Normalize())
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, CanNavigate(ScreenCodeEntry, ScreenHome))
	assert.True(t, CanNavigate(ScreenCodeEntry, ScreenPersonalInfo))
	assert.True(t, CanNavigate(ScreenSignup, ScreenMethodSelect))
	assert.True(t, CanNavigate(ScreenSignup, ScreenLogin))

	assert.False(t, CanNavigate(ScreenCodeEntry, ScreenDocuments))
	assert.False(t, CanNavigate(ScreenWelcome, ScreenHome))
	assert.False(t, CanNavigate(ScreenHome, ScreenWelcome))
}

func TestRouterGoAndBack(t *testing.T) {
	r := NewRouter(ScreenWelcome)

	require.NoError(t, r.Go(ScreenSignup))
	require.NoError(t, r.Go(ScreenMethodSelect))
	require.NoError(t, r.Go(ScreenCodeEntry))
	assert.Equal(t, ScreenCodeEntry, r.Current())
	assert.Equal(t, 3, r.Depth())

	assert.True(t, r.Back())
	assert.Equal(t, ScreenMethodSelect, r.Current())
	assert.True(t, r.Back())
	assert.True(t, r.Back())
	assert.Equal(t, ScreenWelcome, r.Current())
	assert.False(t, r.Back())
}

func TestRouterRejectsIllegalHop(t *testing.T) {
	r := NewRouter(ScreenWelcome)

	err := r.Go(ScreenCodeEntry)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, ScreenWelcome, r.Current())
	assert.Equal(t, 0, r.Depth())
}

func TestRouterReplaceClearsStack(t *testing.T) {
	r := NewRouter(ScreenWelcome)
	require.NoError(t, r.Go(ScreenLogin))
	require.NoError(t, r.Go(ScreenCodeEntry))

	require.NoError(t, r.Replace(ScreenHome))
	assert.Equal(t, ScreenHome, r.Current())
	assert.False(t, r.Back())
}
