package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tripsify/internal/apiclient"
	"tripsify/internal/database"
	"tripsify/internal/domain"
	"tripsify/internal/flow"
	"tripsify/internal/middleware"
	"tripsify/internal/modules/appversion"
	"tripsify/internal/modules/auth"
	"tripsify/internal/modules/geo"
	"tripsify/internal/modules/notify"
	"tripsify/internal/modules/tours"
	"tripsify/internal/otp"
	jwtsvc "tripsify/internal/pkg/jwt"
	"tripsify/internal/repository"
)

// captureSender records every delivered code so tests can type them
// into the flow like a user reading their phone.
type captureSender struct {
	mu      sync.Mutex
	codes   map[string]string
	targets []string
	channel map[string]domain.Channel
}

func newCaptureSender() *captureSender {
	return &captureSender{
		codes:   map[string]string{},
		channel: map[string]domain.Channel{},
	}
}

func (s *captureSender) forChannel(ch domain.Channel) otp.Sender {
	return channelSender{ch: ch, capture: s}
}

type channelSender struct {
	ch      domain.Channel
	capture *captureSender
}

func (c channelSender) Send(_ context.Context, target, code string) error {
	c.capture.mu.Lock()
	defer c.capture.mu.Unlock()
	c.capture.codes[target] = code
	c.capture.targets = append(c.capture.targets, target)
	c.capture.channel[target] = c.ch
	return nil
}

func (s *captureSender) codeFor(target string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[target]
}

func (s *captureSender) channelFor(target string) domain.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel[target]
}

type suite struct {
	server *httptest.Server
	db     *gorm.DB
	sender *captureSender
	hub    *notify.Hub

	countryUS domain.Country
	countryFR domain.Country
	cityParis domain.City
}

func setup(t *testing.T) *suite {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sender := newCaptureSender()
	dispatcher := otp.NewDispatcher()
	for _, ch := range []domain.Channel{domain.ChannelSMS, domain.ChannelWhatsApp, domain.ChannelCall} {
		dispatcher.Register(ch, sender.forChannel(ch))
	}

	codes := otp.NewStore(rdb, 5*time.Minute, time.Minute, 5)
	j := jwtsvc.New("test_secret_key_32_characters_min", time.Hour)

	userRepo := repository.NewUserRepository(db)
	geoRepo := repository.NewGeoRepository(db)
	tourRepo := repository.NewTourRepository(db)

	hub := notify.NewHub()
	t.Cleanup(hub.Close)

	logger := zap.NewNop()
	authService := auth.NewService(userRepo, geoRepo, codes, dispatcher, j, logger).
		WithNotifier(func(userID int64, event string, payload map[string]any) {
			hub.SendToUser(userID, notify.NewEvent(notify.EventType(event), payload))
		})
	authHandler := auth.NewHandler(authService)
	geoHandler := geo.NewHandler(geo.NewService(geoRepo))
	tourHandler := tours.NewHandler(tours.NewService(tourRepo))
	versionHandler := appversion.NewHandler(appversion.VersionInfo{
		MinSupportedBuild: 3,
		LatestBuild:       7,
		UpdateURL:         "https://example.com/update",
	})
	notifyHandler := notify.NewHandler(hub, logger)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)
	geoHandler.RegisterRoutes(v1)
	tourHandler.RegisterRoutes(v1)
	versionHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j))
	{
		authHandler.RegisterProtectedRoutes(protected)
		notifyHandler.RegisterRoutes(protected)
	}

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	s := &suite{server: server, db: db, sender: sender, hub: hub}
	s.seedGeo(t)
	return s
}

func (s *suite) seedGeo(t *testing.T) {
	t.Helper()

	s.countryUS = domain.Country{ISO2: "US", PhoneCode: "1", Name: domain.NameOf("United States"), IsActive: true}
	s.countryFR = domain.Country{ISO2: "FR", PhoneCode: "33", Name: domain.LocalizedNameOf(map[string]string{
		"en": "France",
		"fr": "France",
	}), IsActive: true}
	require.NoError(t, s.db.Create(&s.countryUS).Error)
	require.NoError(t, s.db.Create(&s.countryFR).Error)

	s.cityParis = domain.City{CountryID: s.countryFR.ID, Name: domain.NameOf("Paris"), IsActive: true}
	require.NoError(t, s.db.Create(&s.cityParis).Error)
	require.NoError(t, s.db.Create(&domain.City{
		CountryID: s.countryFR.ID, Name: domain.NameOf("Lyon"), IsActive: true,
	}).Error)
	require.NoError(t, s.db.Create(&domain.City{
		CountryID: s.countryUS.ID, Name: domain.NameOf("Miami"), IsActive: true,
	}).Error)
}

// typeCode enters all six digits; completion and verification then run
// on the real debounce timer.
func typeCode(t *testing.T, buffer *flow.CodeBuffer, code string) {
	t.Helper()
	require.Len(t, code, 6)
	for _, ch := range code {
		require.NoError(t, buffer.Input(ch))
	}
}

func TestRegistrationJourney(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)
	ctx := context.Background()

	router := flow.NewRouter(flow.ScreenWelcome)
	engine := flow.NewEngine(router, client, zap.NewNop(), nil)
	defer engine.Close()

	require.NoError(t, router.Go(flow.ScreenSignup))

	form := flow.NewSignupForm(client)
	form.Email = "jane@example.com"
	form.PhoneNumber = "5012345"
	form.Agreed = true
	require.NoError(t, form.SelectCountry(ctx, s.countryFR.ID, s.countryFR.PhoneCode))
	require.True(t, form.SelectCity("Paris"))

	fieldErrs, err := engine.SubmitSignup(form)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	require.Equal(t, flow.ScreenMethodSelect, router.Current())

	require.NoError(t, engine.ChooseChannel(ctx, domain.ChannelWhatsApp))
	require.Equal(t, flow.ScreenCodeEntry, router.Current())

	vc := engine.Context()
	require.NotNil(t, vc)
	assert.Equal(t, flow.FlowRegister, vc.Flow)
	assert.Equal(t, 2, vc.CurrentStep)
	assert.Equal(t, 6, vc.TotalSteps)

	// the code went to the draft's phone in display form
	target := "+33 5012345"
	code := s.sender.codeFor(target)
	require.Len(t, code, 6)
	assert.Equal(t, domain.ChannelWhatsApp, s.sender.channelFor(target))

	typeCode(t, engine.Buffer(), code)
	require.Eventually(t, func() bool {
		return router.Current() == flow.ScreenPersonalInfo
	}, 2*time.Second, 10*time.Millisecond)

	require.NotEmpty(t, engine.Ticket())
	vc = engine.Context()
	assert.Equal(t, 3, vc.CurrentStep)
	assert.Equal(t, 6, vc.TotalSteps)

	payload, err := client.Register(ctx, engine.Ticket(), *vc.Draft, "Jane Doe")
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "driver", payload.User.Role)
	assert.True(t, payload.User.PhoneVerified)
	assert.Equal(t, "phone_verified", payload.User.OnboardingStage)
	assert.Equal(t, s.cityParis.ID, payload.User.CityID)

	// the ticket is single-use
	_, err = client.Register(ctx, engine.Ticket(), *vc.Draft, "Jane Doe")
	assert.True(t, apiclient.IsCode(err, "NOT_VERIFIED"))

	me, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)
}

func TestLoginJourney(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)

	require.NoError(t, s.db.Create(&domain.User{
		Email:       "driver@example.com",
		PhoneCode:   "1",
		PhoneNumber: "5012345",
		Role:        domain.RoleDriver,
		CountryID:   s.countryUS.ID,
	}).Error)

	router := flow.NewRouter(flow.ScreenWelcome)
	require.NoError(t, router.Go(flow.ScreenLogin))

	var token string
	engine := flow.NewEngine(router, client, zap.NewNop(), func(tok string) { token = tok })
	defer engine.Close()

	form := flow.NewLoginForm()
	form.PhoneCode = "1"
	form.PhoneNumber = "5012345"
	require.NoError(t, engine.StartLogin(context.Background(), form))

	code := s.sender.codeFor("+1 5012345")
	require.Len(t, code, 6)
	assert.Equal(t, domain.ChannelSMS, s.sender.channelFor("+1 5012345"))

	typeCode(t, engine.Buffer(), code)
	require.Eventually(t, func() bool {
		return router.Current() == flow.ScreenHome
	}, 2*time.Second, 10*time.Millisecond)

	require.NotEmpty(t, token)
	// the stack was replaced, back cannot reach code entry
	assert.False(t, router.Back())

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "driver@example.com", me.Email)
	assert.True(t, me.PhoneVerified)
}

func TestWrongCodeAndResendCooldown(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&domain.User{
		Email:       "driver@example.com",
		PhoneCode:   "1",
		PhoneNumber: "5012345",
		Role:        domain.RoleDriver,
	}).Error)

	contact := flow.ContactMethod{Kind: flow.ContactPhone, PhoneCode: "1", PhoneNumber: "5012345"}
	require.NoError(t, client.SendLoginCode(ctx, contact, domain.ChannelSMS))

	_, err := client.VerifyCode(ctx, flow.FlowLogin, "+1 5012345", "000000")
	require.Error(t, err)
	if s.sender.codeFor("+1 5012345") == "000000" {
		t.Skip("generated code collided with the guess")
	}
	assert.True(t, apiclient.IsCode(err, "CODE_MISMATCH"))

	// an immediate resend is refused while the cooldown runs
	err = client.SendLoginCode(ctx, contact, domain.ChannelSMS)
	assert.True(t, apiclient.IsCode(err, "RESEND_COOLDOWN"))

	// the original code still works after the failed guess
	_, err = client.VerifyCode(ctx, flow.FlowLogin, "+1 5012345", s.sender.codeFor("+1 5012345"))
	assert.NoError(t, err)
}

func TestRegisterValidationReportsEveryField(t *testing.T) {
	s := setup(t)

	body, _ := json.Marshal(map[string]interface{}{
		"email": "not-an-email",
	})
	resp, err := http.Post(s.server.URL+"/api/v1/auth/otp/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)

	// every failing field is reported at once
	for _, field := range []string{"email", "country", "city", "phone_code", "phone_number", "agreed", "channel"} {
		assert.Contains(t, envelope.Error.Details, field, "missing field %s", field)
	}
}

func TestGeoNamesAreNormalized(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)

	countries, err := client.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)

	var fr apiclient.Country
	for _, c := range countries {
		if c.ISO2 == "FR" {
			fr = c
		}
	}
	// stored as a locale map, served as one display string
	assert.Equal(t, "France", fr.Name)
	assert.Equal(t, "33", fr.PhoneCode)
}

func TestVersionEndpoint(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)

	info, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, info.MinSupportedBuild)
	assert.Equal(t, 7, info.LatestBuild)
}

func TestOnboardingEventPushedOverSocket(t *testing.T) {
	s := setup(t)
	client := apiclient.New(s.server.URL)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&domain.User{
		Email:       "driver@example.com",
		PhoneCode:   "1",
		PhoneNumber: "5012345",
		Role:        domain.RoleDriver,
	}).Error)

	require.NoError(t, client.SendLoginCode(ctx, flow.ContactMethod{
		Kind: flow.ContactPhone, PhoneCode: "1", PhoneNumber: "5012345",
	}, domain.ChannelSMS))
	res, err := client.VerifyCode(ctx, flow.FlowLogin, "+1 5012345", s.sender.codeFor("+1 5012345"))
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/v1/events/ws"
	header := http.Header{"Authorization": []string{"Bearer " + res.Token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	_, err = client.UpdateProfile(ctx, "", "documents")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event notify.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, notify.EventStageAdvanced, event.Type)
	assert.Equal(t, "documents", event.Payload["stage"])
}
