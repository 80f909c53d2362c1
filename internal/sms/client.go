// Package sms delivers one-time passwords through the MSG91 flow API.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bechdu/buyback-backend/pkg/config"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

// Sender dispatches an OTP to a mobile number.
type Sender interface {
	SendOTP(ctx context.Context, mobile, otp string) error
}

// Client is the MSG91 flow-API sender.
type Client struct {
	httpClient *http.Client
	cfg        config.SMSConfig
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds an SMS client from gateway configuration.
func NewClient(cfg config.SMSConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AuthKey) == "" {
		return nil, fmt.Errorf("sms auth key is required")
	}
	if strings.TrimSpace(cfg.TemplateID) == "" {
		return nil, fmt.Errorf("sms template id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type flowRecipient struct {
	Mobiles string `json:"mobiles"`
	OTP     string `json:"otp"`
}

type flowRequest struct {
	TemplateID string          `json:"template_id"`
	ShortURL   string          `json:"short_url"`
	Recipients []flowRecipient `json:"recipients"`
}

type flowResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SendOTP posts the OTP template to the gateway. The mobile number is
// prefixed with the configured country code.
func (c *Client) SendOTP(ctx context.Context, mobile, otp string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "sms client not configured")
	}
	if strings.TrimSpace(mobile) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mobile number is required")
	}

	payload, err := json.Marshal(flowRequest{
		TemplateID: c.cfg.TemplateID,
		ShortURL:   "0",
		Recipients: []flowRecipient{{
			Mobiles: c.cfg.CountryCode + mobile,
			OTP:     otp,
		}},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal sms request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sms request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", c.cfg.AuthKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sms request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"sms request failed")
	}

	var apiResp flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sms response")
	}
	if apiResp.Type != "success" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("gateway response %q: %s", apiResp.Type, apiResp.Message),
			"sms delivery rejected")
	}
	return nil
}
