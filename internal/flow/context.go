package flow

import (
	"strings"

	"tripsify/internal/domain"
)

// ContactKind matches the two tabs of the login form.
type ContactKind string

const (
	ContactPhone ContactKind = "phone"
	ContactEmail ContactKind = "email"
)

// ContactMethod is the single contact the user verified against.
// Exactly one of phone/email is populated, per Kind.
type ContactMethod struct {
	Kind        ContactKind `json:"method"`
	PhoneCode   string      `json:"phone_code,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	Email       string      `json:"email,omitempty"`
}

// Target is the display form threaded through the flow and used as the
// challenge key server-side: "+<code> <number>" for phone, the
// lowercased address for email.
func (m ContactMethod) Target() string {
	if m.Kind == ContactEmail {
		return strings.ToLower(strings.TrimSpace(m.Email))
	}
	return "+" + strings.TrimSpace(m.PhoneCode) + " " + strings.TrimSpace(m.PhoneNumber)
}

// FormData is the accumulated sign-up draft handed to the
// method-select screen, field for field.
type FormData struct {
	Email       string `json:"email"`
	Country     int64  `json:"country"`
	City        string `json:"city"`
	PhoneCode   string `json:"phone_code"`
	PhoneNumber string `json:"phone_number"`
}

// VerificationContext is the immutable parameter bag every screen
// initiating verification must populate and code entry must honor.
type VerificationContext struct {
	Contact     ContactMethod
	Channel     domain.Channel
	Flow        Flow
	CurrentStep int
	TotalSteps  int
	Draft       *FormData // registration only
}

// step counters the app hardcodes per flow
const (
	loginStep       = 2
	loginTotalSteps = 2

	registerCodeStep     = 2
	registerPersonalStep = 3
	registerTotalSteps   = 6
)
