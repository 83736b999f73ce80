package flow

import (
	"errors"
	"strings"

	"tripsify/internal/domain"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrEmailRequired = errors.New("email is required")
)

// LoginForm models the login screen: two tabs (phone / email) of which
// only the active one is submitted.
type LoginForm struct {
	Tab         ContactKind
	PhoneCode   string
	PhoneNumber string
	Email       string
}

func NewLoginForm() *LoginForm {
	return &LoginForm{Tab: ContactPhone, PhoneCode: "US"}
}

// SwitchTab changes the active tab without clearing the inactive one,
// so flipping back restores what was typed.
func (f *LoginForm) SwitchTab(tab ContactKind) {
	if tab == ContactPhone || tab == ContactEmail {
		f.Tab = tab
	}
}

// Submit validates the active tab and produces the verification
// context for code entry: login flow, step 2 of 2, no draft.
func (f *LoginForm) Submit() (*VerificationContext, error) {
	contact, err := f.contact()
	if err != nil {
		return nil, err
	}
	return &VerificationContext{
		Contact:     contact,
		Channel:     domain.ChannelSMS,
		Flow:        FlowLogin,
		CurrentStep: loginStep,
		TotalSteps:  loginTotalSteps,
	}, nil
}

func (f *LoginForm) contact() (ContactMethod, error) {
	if f.Tab == ContactEmail {
		email := strings.ToLower(strings.TrimSpace(f.Email))
		if email == "" {
			return ContactMethod{}, ErrEmailRequired
		}
		if !emailPattern.MatchString(email) {
			return ContactMethod{}, ErrInvalidEmail
		}
		return ContactMethod{Kind: ContactEmail, Email: email}, nil
	}

	number := strings.TrimSpace(f.PhoneNumber)
	if number == "" {
		return ContactMethod{}, ErrPhoneRequired
	}
	return ContactMethod{
		Kind:        ContactPhone,
		PhoneCode:   strings.TrimSpace(f.PhoneCode),
		PhoneNumber: number,
	}, nil
}
