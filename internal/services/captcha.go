package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultRecaptchaEndpoint is Google's siteverify URL.
const DefaultRecaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks the captcha token sent with a login request.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type recaptchaVerifier struct {
	secret   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// NewRecaptchaVerifier returns a verifier backed by the reCAPTCHA siteverify API.
func NewRecaptchaVerifier(secret, endpoint string, logger *zap.Logger) CaptchaVerifier {
	if endpoint == "" {
		endpoint = DefaultRecaptchaEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recaptchaVerifier{
		secret:   secret,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (v *recaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("captcha request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("captcha endpoint returned status %d", resp.StatusCode)
	}

	var body recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode captcha response: %w", err)
	}
	if !body.Success {
		v.logger.Info("captcha rejected", zap.Strings("error_codes", body.ErrorCodes))
		return ErrCaptchaFailed
	}
	return nil
}
