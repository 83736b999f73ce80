package auth

import (
	"context"
	"errors"
	"net/http"

	"tripsify/internal/domain"

	"tripsify/internal/otp"
	"tripsify/internal/pkg/response"
	"tripsify/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/otp/login", h.SendLoginCode)
		authGroup.POST("/otp/register", h.SendRegisterCode)
		authGroup.POST("/otp/verify", h.VerifyCode)
		authGroup.POST("/register", h.Register)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateProfile)
	}
}

// SendLoginCode delivers a login code to an existing account's phone or
// email. The login screen has no channel selector, so this defaults to
// SMS.
func (h *Handler) SendLoginCode(c *gin.Context) {
	var req SendLoginCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	challenge, err := h.service.SendLoginCode(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "No account for this contact method")
		case errors.Is(err, ErrInvalidContact), errors.Is(err, ErrInvalidChannel):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, otp.ErrCooldownActive):
			response.Error(c, http.StatusTooManyRequests, "RESEND_COOLDOWN", "A code was sent recently, wait before resending")
		default:
			response.Error(c, http.StatusInternalServerError, "OTP_SEND_FAILED", "Failed to send verification code")
		}
		return
	}

	response.Success(c, http.StatusOK, challengePayload(challenge, h.service))
}

// SendRegisterCode validates the sign-up draft and delivers a code over
// the chosen channel. Validation reports every failing field at once so
// the form can highlight them together.
func (h *Handler) SendRegisterCode(c *gin.Context) {
	var req SendRegisterCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	challenge, err := h.service.SendRegisterCode(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrPhoneAlreadyExists):
			response.Error(c, http.StatusConflict, "PHONE_EXISTS", "This phone is already registered")
		case errors.Is(err, ErrUnknownCountryCity):
			response.Error(c, http.StatusBadRequest, "INVALID_GEO", "City does not belong to the selected country")
		case errors.Is(err, ErrInvalidChannel):
			response.Error(c, http.StatusBadRequest, "INVALID_CHANNEL", "Channel must be sms, whatsapp or call")
		case errors.Is(err, otp.ErrCooldownActive):
			response.Error(c, http.StatusTooManyRequests, "RESEND_COOLDOWN", "A code was sent recently, wait before resending")
		default:
			response.Error(c, http.StatusInternalServerError, "OTP_SEND_FAILED", "Failed to send verification code")
		}
		return
	}

	response.Success(c, http.StatusOK, challengePayload(challenge, h.service))
}

// VerifyCode is the completion collaborator behind the code-entry
// screen. It branches on the flow discriminator: "login" opens a
// session, anything else is treated as registration and yields the
// ticket the final register call must carry.
func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Code must be 6 digits")
		return
	}

	if req.Flow == "login" {
		result, err := h.service.VerifyLoginCode(c.Request.Context(), req)
		if err != nil {
			h.verifyError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"token": result.AccessToken,
			"user":  result.User,
		})
		return
	}

	ticket, err := h.service.VerifyRegisterCode(c.Request.Context(), req)
	if err != nil {
		h.verifyError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": ticket})
}

func (h *Handler) verifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, otp.ErrCodeMismatch):
		response.Error(c, http.StatusUnauthorized, "CODE_MISMATCH", "The code is incorrect")
	case errors.Is(err, otp.ErrTooManyAttempts):
		response.Error(c, http.StatusUnauthorized, "TOO_MANY_ATTEMPTS", "Too many attempts, request a new code")
	case errors.Is(err, otp.ErrNotFound):
		response.Error(c, http.StatusUnauthorized, "CODE_EXPIRED", "The code expired, request a new one")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "No account for this contact method")
	case errors.Is(err, ErrInvalidContact):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "VERIFY_FAILED", "Failed to verify code")
	}
}

// Register creates the driver account from the accumulated draft once
// its phone carries a verification ticket.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotVerified):
			response.Error(c, http.StatusForbidden, "NOT_VERIFIED", "Phone has not passed verification")
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrUnknownCountryCity):
			response.Error(c, http.StatusBadRequest, "INVALID_GEO", "City does not belong to the selected country")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": result.AccessToken,
		"user":  result.User,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FieldErrors(c, http.StatusBadRequest, fields)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func challengePayload(ch *domain.OTPChallenge, svc *Service) gin.H {
	resend := 0
	if d, err := svc.ResendAvailableIn(context.Background(), ch.Target, ch.Purpose); err == nil {
		resend = int(d.Seconds())
	}
	return gin.H{
		"challenge": ChallengeResponse{
			ChallengeID: ch.ID,
			Target:      ch.Target,
			Channel:     string(ch.Channel),
			ExpiresAt:   ch.ExpiresAt,
			ResendAfter: resend,
		},
	}
}
