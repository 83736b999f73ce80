package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"tripsify/internal/domain"
	"tripsify/internal/otp"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ticketTTL = 30 * time.Minute

// Service contains the OTP login/registration business logic.
type Service struct {
	users  UserRepositoryInterface
	geo    GeoReader
	codes  CodeStore
	sender CodeSender
	jwt    jwtService
	log    *zap.Logger

	// optional push-event hook, see WithNotifier
	notify func(userID int64, event string, payload map[string]any)
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(
	users UserRepositoryInterface,
	geo GeoReader,
	codes CodeStore,
	sender CodeSender,
	jwt jwtService,
	log *zap.Logger,
) *Service {
	return &Service{
		users:  users,
		geo:    geo,
		codes:  codes,
		sender: sender,
		jwt:    jwt,
		log:    log,
	}
}

// WithNotifier installs a hook that pushes account events to connected
// clients. Absent by default; tests run without it.
func (s *Service) WithNotifier(fn func(userID int64, event string, payload map[string]any)) *Service {
	s.notify = fn
	return s
}

func (s *Service) publish(userID int64, event string, payload map[string]any) {
	if s.notify != nil {
		s.notify(userID, event, payload)
	}
}

// SendLoginCode issues and delivers a login challenge for an existing
// account. The login flow never offers a channel choice in the app, so
// an empty channel falls back to SMS.
func (s *Service) SendLoginCode(ctx context.Context, req SendLoginCodeRequest) (*domain.OTPChallenge, error) {
	target, err := loginTarget(req.Method, req.PhoneCode, req.PhoneNumber, req.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.findUser(ctx, req.Method, req.PhoneCode, req.PhoneNumber, req.Email); err != nil {
		return nil, err
	}

	channel := domain.Channel(req.Channel)
	if channel == "" {
		channel = domain.ChannelSMS
	}
	if !channel.Valid() {
		return nil, ErrInvalidChannel
	}

	return s.issueAndDeliver(ctx, target, channel, domain.PurposeLogin)
}

// SendRegisterCode validates the registration draft, checks uniqueness
// and delivers a code over the channel picked on the method-select
// screen. The draft itself stays client-side until Register.
func (s *Service) SendRegisterCode(ctx context.Context, req SendRegisterCodeRequest) (*domain.OTPChallenge, error) {
	channel := domain.Channel(req.Channel)
	if !channel.Valid() {
		return nil, ErrInvalidChannel
	}

	if err := s.checkDraftGeo(ctx, req.Country, req.City); err != nil {
		return nil, err
	}

	if exists, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailAlreadyExists
	}
	if exists, err := s.users.ExistsByPhone(ctx, req.PhoneCode, req.PhoneNumber); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrPhoneAlreadyExists
	}

	target := phoneTarget(req.PhoneCode, req.PhoneNumber)
	return s.issueAndDeliver(ctx, target, channel, domain.PurposeRegister)
}

// VerifyLoginCode checks the entered code and, on success, opens a
// session for the matching account.
func (s *Service) VerifyLoginCode(ctx context.Context, req VerifyCodeRequest) (*LoginResult, error) {
	target, err := loginTarget(req.Method, req.PhoneCode, req.PhoneNumber, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Verify(ctx, target, domain.PurposeLogin, req.Code); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, req.Method, req.PhoneCode, req.PhoneNumber, req.Email)
	if err != nil {
		return nil, err
	}

	if !user.PhoneVerified {
		user.PhoneVerified = true
		if err := s.users.Update(ctx, user); err != nil {
			s.log.Warn("marking phone verified failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

// VerifyRegisterCode checks the code sent to a draft's phone and
// returns the ticket Register must present. No account exists yet at
// this point.
func (s *Service) VerifyRegisterCode(ctx context.Context, req VerifyCodeRequest) (string, error) {
	if req.PhoneNumber == "" {
		return "", ErrInvalidContact
	}
	target := phoneTarget(req.PhoneCode, req.PhoneNumber)

	if err := s.codes.Verify(ctx, target, domain.PurposeRegister, req.Code); err != nil {
		return "", err
	}
	return s.codes.IssueTicket(ctx, target, ticketTTL)
}

// Register creates the driver account once the draft's phone has a
// consumed verification ticket.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	target := phoneTarget(req.PhoneCode, req.PhoneNumber)
	if err := s.codes.ConsumeTicket(ctx, target, req.Ticket); err != nil {
		return nil, ErrNotVerified
	}

	if err := s.checkDraftGeo(ctx, req.Country, req.City); err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneCode:       strings.TrimSpace(req.PhoneCode),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		FullName:        strings.TrimSpace(req.FullName),
		Role:            domain.RoleDriver,
		CountryID:       req.Country,
		CityID:          req.City,
		PhoneVerified:   true,
		OnboardingStage: domain.StagePhoneVerified,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.publish(user.ID, "account_created", map[string]any{
		"email": user.Email,
		"phone": user.Phone(),
	})
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	stageChanged := req.Stage != "" && domain.OnboardingStage(req.Stage) != user.OnboardingStage
	if req.Stage != "" {
		user.OnboardingStage = domain.OnboardingStage(req.Stage)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if stageChanged {
		s.publish(user.ID, "onboarding_stage_advanced", map[string]any{
			"stage": string(user.OnboardingStage),
		})
	}
	return user, nil
}

// ResendAvailableIn reports the remaining cooldown for a target so the
// code-entry screen can seed its countdown from the server's clock.
func (s *Service) ResendAvailableIn(ctx context.Context, target string, purpose domain.OTPPurpose) (time.Duration, error) {
	return s.codes.CooldownRemaining(ctx, target, purpose)
}

func (s *Service) issueAndDeliver(ctx context.Context, target string, channel domain.Channel, purpose domain.OTPPurpose) (*domain.OTPChallenge, error) {
	challenge, code, err := s.codes.Issue(ctx, target, channel, purpose)
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, channel, target, code); err != nil {
		// The challenge stays valid: the user can wait out the
		// cooldown and resend instead of being locked out.
		s.log.Error("otp delivery failed",
			zap.String("channel", string(channel)),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		return nil, err
	}
	return challenge, nil
}

func (s *Service) checkDraftGeo(ctx context.Context, countryID, cityID int64) error {
	if _, err := s.geo.CountryByID(ctx, countryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownCountryCity
		}
		return err
	}
	city, err := s.geo.CityByID(ctx, cityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownCountryCity
		}
		return err
	}
	if city.CountryID != countryID {
		return ErrUnknownCountryCity
	}
	return nil
}

func (s *Service) findUser(ctx context.Context, method ContactKind, phoneCode, phoneNumber, email string) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	switch method {
	case ContactPhone:
		user, err = s.users.GetByPhone(ctx, phoneCode, phoneNumber)
	case ContactEmail:
		user, err = s.users.GetByEmail(ctx, email)
	default:
		return nil, ErrInvalidContact
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// loginTarget builds the challenge key for a contact method. Phone
// targets use the display form "+<code> <number>" the app threads
// through the flow.
func loginTarget(method ContactKind, phoneCode, phoneNumber, email string) (string, error) {
	switch method {
	case ContactPhone:
		if strings.TrimSpace(phoneNumber) == "" {
			return "", ErrInvalidContact
		}
		return phoneTarget(phoneCode, phoneNumber), nil
	case ContactEmail:
		if strings.TrimSpace(email) == "" {
			return "", ErrInvalidContact
		}
		return strings.ToLower(strings.TrimSpace(email)), nil
	}
	return "", ErrInvalidContact
}

func phoneTarget(phoneCode, phoneNumber string) string {
	return "+" + strings.TrimSpace(phoneCode) + " " + strings.TrimSpace(phoneNumber)
}

// ensure the concrete store satisfies the narrow interface
var _ CodeStore = (*otp.Store)(nil)
