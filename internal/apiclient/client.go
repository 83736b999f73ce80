package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"tripsify/internal/domain"
	"tripsify/internal/flow"
)

// ErrUnknownCity means a draft names a city the client never loaded
// into its dropdown, so no ID can be submitted for it.
var ErrUnknownCity = errors.New("city not present in loaded options")

// APIError is a non-2xx response decoded from the standard error
// envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// Client talks to the backend. It implements both the verification
// gateway and the city loader the flow package expects.
type Client struct {
	base string
	http *http.Client

	mu    sync.Mutex
	token string
	// city name -> id per country, filled by Cities; drafts carry
	// names while the API wants ids
	cityIDs map[int64]map[string]int64
}

func New(baseURL string) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cityIDs: map[int64]map[string]int64{},
	}
}

// SetToken installs the bearer token used on protected calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("api: bad response (%d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Country is a geo catalog entry with its name already normalized to a
// single display string.
type Country struct {
	ID        int64  `json:"id"`
	ISO2      string `json:"iso2"`
	PhoneCode string `json:"phone_code"`
	Name      string `json:"name"`
}

// User mirrors the account object the auth endpoints return.
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	PhoneCode       string `json:"phone_code"`
	PhoneNumber     string `json:"phone_number"`
	FullName        string `json:"full_name,omitempty"`
	Role            string `json:"role"`
	CountryID       int64  `json:"country_id,omitempty"`
	CityID          int64  `json:"city_id,omitempty"`
	PhoneVerified   bool   `json:"phone_verified"`
	OnboardingStage string `json:"onboarding_stage,omitempty"`
}

// AuthPayload is the token+user pair login and registration produce.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VersionInfo mirrors the update-check endpoint.
type VersionInfo struct {
	MinSupportedBuild int    `json:"min_supported_build"`
	LatestBuild       int    `json:"latest_build"`
	UpdateURL         string `json:"update_url,omitempty"`
}

func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var data struct {
		Countries []Country `json:"countries"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/geo/countries", nil, &data); err != nil {
		return nil, err
	}
	return data.Countries, nil
}

// Cities loads a country's cities and remembers their ids so drafts
// can later be submitted by city name.
func (c *Client) Cities(ctx context.Context, countryID int64) ([]flow.CityOption, error) {
	var data struct {
		Cities []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"cities"`
	}
	path := fmt.Sprintf("/api/v1/geo/countries/%d/cities", countryID)
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	options := make([]flow.CityOption, 0, len(data.Cities))
	ids := make(map[string]int64, len(data.Cities))
	for _, city := range data.Cities {
		options = append(options, flow.CityOption{ID: city.ID, Name: city.Name})
		ids[city.Name] = city.ID
	}

	c.mu.Lock()
	c.cityIDs[countryID] = ids
	c.mu.Unlock()
	return options, nil
}

func (c *Client) cityID(countryID int64, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.cityIDs[countryID][name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCity, name)
}

func (c *Client) SendLoginCode(ctx context.Context, contact flow.ContactMethod, channel domain.Channel) error {
	payload := map[string]interface{}{
		"method":  string(contact.Kind),
		"channel": string(channel),
	}
	if contact.Kind == flow.ContactEmail {
		payload["email"] = contact.Email
	} else {
		payload["phone_code"] = contact.PhoneCode
		payload["phone_number"] = contact.PhoneNumber
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/otp/login", payload, nil)
}

func (c *Client) SendRegisterCode(ctx context.Context, draft flow.FormData, channel domain.Channel) error {
	cityID, err := c.cityID(draft.Country, draft.City)
	if err != nil {
		return err
	}
	payload := map[string]interface{}{
		"email":        draft.Email,
		"country":      draft.Country,
		"city":         cityID,
		"phone_code":   draft.PhoneCode,
		"phone_number": draft.PhoneNumber,
		"agreed":       true,
		"channel":      string(channel),
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/otp/register", payload, nil)
}

// VerifyCode submits the entered code. The flow discriminator decides
// the response shape: a session token for login, a registration ticket
// otherwise.
func (c *Client) VerifyCode(ctx context.Context, f flow.Flow, target, code string) (flow.VerifyResult, error) {
	payload := map[string]interface{}{
		"flow": string(f.Normalize()),
		"code": code,
	}
	if strings.Contains(target, "@") {
		payload["method"] = "email"
		payload["email"] = target
	} else {
		phoneCode, phoneNumber := splitPhoneTarget(target)
		payload["method"] = "phone"
		payload["phone_code"] = phoneCode
		payload["phone_number"] = phoneNumber
	}

	if f.Normalize() == flow.FlowLogin {
		var data AuthPayload
		if err := c.do(ctx, http.MethodPost, "/api/v1/auth/otp/verify", payload, &data); err != nil {
			return flow.VerifyResult{}, err
		}
		c.SetToken(data.Token)
		return flow.VerifyResult{Token: data.Token}, nil
	}

	var data struct {
		Ticket string `json:"ticket"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/otp/verify", payload, &data); err != nil {
		return flow.VerifyResult{}, err
	}
	return flow.VerifyResult{Ticket: data.Ticket}, nil
}

// splitPhoneTarget undoes the "+<code> <number>" display form.
func splitPhoneTarget(target string) (string, string) {
	target = strings.TrimPrefix(target, "+")
	if code, number, ok := strings.Cut(target, " "); ok {
		return code, number
	}
	return "", target
}

// Register finalizes the account from the verified draft and its
// ticket, installing the returned token.
func (c *Client) Register(ctx context.Context, ticket string, draft flow.FormData, fullName string) (*AuthPayload, error) {
	cityID, err := c.cityID(draft.Country, draft.City)
	if err != nil {
		return nil, err
	}
	payload := map[string]interface{}{
		"ticket":       ticket,
		"email":        draft.Email,
		"country":      draft.Country,
		"city":         cityID,
		"phone_code":   draft.PhoneCode,
		"phone_number": draft.PhoneNumber,
		"full_name":    fullName,
	}

	var data AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", payload, &data); err != nil {
		return nil, err
	}
	c.SetToken(data.Token)
	return &data, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var data struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fullName, stage string) (*User, error) {
	payload := map[string]interface{}{}
	if fullName != "" {
		payload["full_name"] = fullName
	}
	if stage != "" {
		payload["onboarding_stage"] = stage
	}

	var data struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/users/me", payload, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var data struct {
		Version VersionInfo `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/version", nil, &data); err != nil {
		return nil, err
	}
	return &data.Version, nil
}

var (
	_ flow.Gateway    = (*Client)(nil)
	_ flow.CityLoader = (*Client)(nil)
)
