package accesssdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the careshare access service. It performs the
// anonymous operations and hands out typed views for the other callers.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Headers are added to every request, e.g. X-Forwarded-For in tests.
	Headers map[string]string
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AsOwner returns a view authenticated with an owner bearer token.
func (c *Client) AsOwner(token string) *OwnerClient {
	return &OwnerClient{c: c, token: token}
}

// AsViewer returns a view authenticated with a viewer grant token.
func (c *Client) AsViewer(grantToken string) *ViewerClient {
	return &ViewerClient{c: c, token: grantToken}
}

// AsInternal returns a view authenticated with the internal service token.
func (c *Client) AsInternal(token string) *InternalClient {
	return &InternalClient{c: c, token: token}
}

// do sends a request with an optional JSON body and bearer token.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// call performs a request and decodes the expected status into target.
// A nil target only checks the status.
func (c *Client) call(ctx context.Context, method, path, token string, body, target any, expectedStatus int) error {
	resp, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// decodeJSON decodes a JSON response into target, or returns an *APIError
// when the status is not the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if target == nil || len(bodyBytes) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ============================================================================
// Anonymous operations
// ============================================================================

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// IssueOTP starts a challenge. A failed delivery is not an error; check
// Delivered on the response.
func (c *Client) IssueOTP(ctx context.Context, req IssueOTPRequest) (*IssueOTPResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/otp/challenges", "", req)
	if err != nil {
		return nil, err
	}

	// 201 when delivered, 202 when the challenge exists but delivery failed.
	expected := http.StatusCreated
	if resp.StatusCode == http.StatusAccepted {
		expected = http.StatusAccepted
	}

	var out IssueOTPResponse
	if err := decodeJSON(resp, &out, expected); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP submits a code.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	if err := c.call(ctx, http.MethodPost, "/v1/otp/verify", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemAccessCode exchanges a code and identity claim for a grant token.
func (c *Client) RedeemAccessCode(ctx context.Context, req RedeemAccessCodeRequest) (*RedeemAccessCodeResponse, error) {
	var out RedeemAccessCodeResponse
	if err := c.call(ctx, http.MethodPost, "/v1/access-codes/redeem", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
