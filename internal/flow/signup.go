package flow

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
)

// emailPattern mirrors the check used on the forms: something@domain.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var ErrInvalidEmail = errors.New("email address is not valid")

// CityOption is one entry of the city dropdown.
type CityOption struct {
	ID   int64
	Name string
}

// CityLoader fetches the cities of a country, usually over the API.
type CityLoader interface {
	Cities(ctx context.Context, countryID int64) ([]CityOption, error)
}

// FieldErrors maps form field names to their validation message. All
// failing fields are reported together on submit, not just the first.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// SignupForm holds the sign-up screen's inputs and the dependent
// country/city dropdown state.
type SignupForm struct {
	mu sync.Mutex

	Email       string
	CountryID   int64
	CountryCode string // dial prefix of the selected country
	City        string
	PhoneNumber string
	Agreed      bool

	cities CityLoader

	cityOptions []CityOption
	// generation stamps every city fetch; responses from a superseded
	// country selection are dropped
	generation uint64
}

func NewSignupForm(cities CityLoader) *SignupForm {
	return &SignupForm{cities: cities}
}

// SelectCountry switches the country: the chosen city and its options
// are cleared immediately, then the new country's cities load in the
// background. A fetch that comes back after another SelectCountry call
// is discarded.
func (f *SignupForm) SelectCountry(ctx context.Context, countryID int64, dialCode string) error {
	f.mu.Lock()
	f.CountryID = countryID
	f.CountryCode = dialCode
	f.City = ""
	f.cityOptions = nil
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	options, err := f.cities.Cities(ctx, countryID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		// a newer selection owns the dropdown now
		return nil
	}
	f.cityOptions = options
	return nil
}

// CityOptions returns the current dropdown contents.
func (f *SignupForm) CityOptions() []CityOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CityOption, len(f.cityOptions))
	copy(out, f.cityOptions)
	return out
}

// SelectCity picks a city by name; it must be one of the loaded
// options.
func (f *SignupForm) SelectCity(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, opt := range f.cityOptions {
		if opt.Name == name {
			f.City = name
			return true
		}
	}
	return false
}

// Validate checks every field and returns the full error map, or nil
// when the form is submittable.
func (f *SignupForm) Validate() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := FieldErrors{}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Enter a valid email address"
	}

	if f.CountryID == 0 {
		errs["country"] = "Select a country"
	}
	if f.City == "" {
		errs["city"] = "Select a city"
	}
	if strings.TrimSpace(f.PhoneNumber) == "" {
		errs["phone"] = "Phone number is required"
	}
	if !f.Agreed {
		errs["agreed"] = "You must accept the terms"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates and assembles the draft carried to method select.
// Nothing is sent to the server here; that happens after the code is
// verified.
func (f *SignupForm) Submit() (*FormData, FieldErrors) {
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return &FormData{
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		Country:     f.CountryID,
		City:        f.City,
		PhoneCode:   strings.TrimSpace(f.CountryCode),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
	}, nil
}
