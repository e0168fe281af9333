package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com"

// TwilioCall mirrors the call resource returned by the Twilio REST API
type TwilioCall struct {
	Sid       string `json:"sid"`
	Direction string `json:"direction"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Duration  string `json:"duration"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TwilioClient is a minimal REST client for the call operations the agent
// needs: placing outbound calls, redirecting or hanging up live calls, and
// listing recent call history for the dashboard.
type TwilioClient struct {
	accountSID string
	authToken  string
	apiBase    string
	httpClient *http.Client
}

// NewTwilioClient creates a client for the given account credentials.
// apiBase overrides the public Twilio endpoint when non-empty (tests point it
// at a local fake).
func NewTwilioClient(accountSID, authToken, apiBase string) *TwilioClient {
	if apiBase == "" {
		apiBase = twilioAPIBase
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCall places an outbound call that fetches its TwiML from voiceURL
func (c *TwilioClient) CreateCall(ctx context.Context, to, from, voiceURL string) (*TwilioCall, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Url", voiceURL)
	form.Set("Method", "POST")

	var call TwilioCall
	if err := c.do(ctx, http.MethodPost, "/Calls.json", form, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// RedirectCall points a live call's signaling target at voiceURL. Twilio
// interrupts whatever the call is doing (here: the hold loop) and fetches
// fresh TwiML from the new URL.
func (c *TwilioClient) RedirectCall(ctx context.Context, callSid, voiceURL string) error {
	form := url.Values{}
	form.Set("Url", voiceURL)
	form.Set("Method", "POST")
	return c.do(ctx, http.MethodPost, "/Calls/"+callSid+".json", form, nil)
}

// CompleteCall hangs up a live call
func (c *TwilioClient) CompleteCall(ctx context.Context, callSid string) error {
	form := url.Values{}
	form.Set("Status", "completed")
	return c.do(ctx, http.MethodPost, "/Calls/"+callSid+".json", form, nil)
}

// ListCalls returns up to limit recent calls, newest first
func (c *TwilioClient) ListCalls(ctx context.Context, limit int) ([]TwilioCall, error) {
	var page struct {
		Calls []TwilioCall `json:"calls"`
	}
	path := fmt.Sprintf("/Calls.json?PageSize=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Calls, nil
}

// do performs one authenticated API exchange against the account subresource
func (c *TwilioClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s%s", c.apiBase, c.accountSID, path)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Twilio API error: %s - %s", resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse Twilio response: %w", err)
		}
	}
	return nil
}
