package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrBaseURLRequired is returned by New without a server URL.
var ErrBaseURLRequired = errors.New("api: base url is required")

const maxResponseBytes = 1 << 20

// Client calls the otpgate server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a Client for baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*ChallengeSent, error) {
	var out ChallengeSent
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", in, &out, msgRegisterFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyRegistration(ctx context.Context, email, code string) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", "", emailCode{Email: email, OTP: code}, &out, msgVerifyFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendRegistration(ctx context.Context, email string) (*ChallengeSent, error) {
	var out ChallengeSent
	if err := c.do(ctx, http.MethodPost, "/auth/resend-otp", "", emailOnly{Email: email}, &out, msgResendFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{Email: email, Password: password}, &out, msgLoginFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, in Profile) (*ProfileResult, error) {
	var out ProfileResult
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, in, &out, msgUpdateFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestLogout(ctx context.Context, email string) (*ChallengeSent, error) {
	var out ChallengeSent
	if err := c.do(ctx, http.MethodPost, "/auth/logout-otp", "", emailOnly{Email: email}, &out, msgLogoutSendFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLogout confirms a logout. A non-empty token is sent so the server
// can revoke it.
func (c *Client) VerifyLogout(ctx context.Context, token, email, code string) (*LogoutResult, error) {
	var out LogoutResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify-logout-otp", token, emailCode{Email: email, OTP: code}, &out, msgLogoutVerifyFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any, fallback string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Message: fallback, cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Message: fallback, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: fallback, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		msg := fallback
		if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
		return &Error{
			Status:  resp.StatusCode,
			Message: msg,
			Fields:  eb.Error,
			cause:   fmt.Errorf("%s %s: %s", method, path, resp.Status),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fallback, cause: err}
	}

	return nil
}
