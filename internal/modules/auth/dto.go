package auth

import "time"

// ContactKind mirrors the login form tabs: phone XOR email.
type ContactKind string

const (
	ContactPhone ContactKind = "phone"
	ContactEmail ContactKind = "email"
)

type SendLoginCodeRequest struct {
	Method      ContactKind `json:"method" binding:"required,oneof=phone email"`
	PhoneCode   string      `json:"phone_code"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	Channel     string      `json:"channel"`
}

type SendRegisterCodeRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Country     int64  `json:"country" validate:"required"`
	City        int64  `json:"city" validate:"required"`
	PhoneCode   string `json:"phone_code" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Agreed      bool   `json:"agreed" validate:"required"`
	Channel     string `json:"channel" validate:"required,oneof=sms whatsapp call"`
}

type VerifyCodeRequest struct {
	Flow        string      `json:"flow"` // "login" or "register"; absent means register
	Method      ContactKind `json:"method"`
	PhoneCode   string      `json:"phone_code"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	Code        string      `json:"code" binding:"required,len=6,numeric"`
}

type RegisterRequest struct {
	Ticket      string `json:"ticket" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Country     int64  `json:"country" binding:"required"`
	City        int64  `json:"city" binding:"required"`
	PhoneCode   string `json:"phone_code" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	FullName    string `json:"full_name"`
}

type UpdateProfileRequest struct {
	FullName  string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Stage     string `json:"onboarding_stage,omitempty" validate:"omitempty,oneof=personal_info documents payment complete"`
}

type ChallengeResponse struct {
	ChallengeID string    `json:"challenge_id"`
	Target      string    `json:"target"`
	Channel     string    `json:"channel"`
	ExpiresAt   time.Time `json:"expires_at"`
	ResendAfter int       `json:"resend_after_seconds"`
}
