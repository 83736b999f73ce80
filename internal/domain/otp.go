package domain

import "time"

// Channel is the delivery method for a one-time code.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelCall     Channel = "call"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelCall:
		return true
	}
	return false
}

// OTPPurpose separates login challenges from registration ones so a
// code sent for one can never verify the other.
type OTPPurpose string

const (
	PurposeLogin    OTPPurpose = "login"
	PurposeRegister OTPPurpose = "register"
)

func (p OTPPurpose) Valid() bool {
	return p == PurposeLogin || p == PurposeRegister
}

// OTPChallenge is what the store keeps per outstanding code. The code
// itself is never stored, only its bcrypt hash.
type OTPChallenge struct {
	ID        string     `json:"id"`
	Target    string     `json:"target"` // phone in display form, or email
	Channel   Channel    `json:"channel"`
	Purpose   OTPPurpose `json:"purpose"`
	CodeHash  string     `json:"-"`
	Attempts  int        `json:"attempts"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}
