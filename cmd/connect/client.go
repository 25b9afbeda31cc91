package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/handshake"

	"github.com/google/go-querystring/query"
)

// apiClient talks to the orchestration API on behalf of one user token.
type apiClient struct {
	http  *http.Client
	base  string
	token string
}

func newAPIClient(base, token string) *apiClient {
	return &apiClient{http: &http.Client{}, base: strings.TrimRight(base, "/"), token: token}
}

func (c *apiClient) headers() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
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
	req.Header = c.headers()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Details != "" {
			return fmt.Errorf("%s %s: %d %s: %s", method, path, resp.StatusCode, apiErr.Error, apiErr.Details)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *apiClient) Setup(ctx context.Context, demo bool) (*dto.OAuthSetupResponse, error) {
	var res dto.OAuthSetupResponse
	if err := c.do(ctx, http.MethodPost, "/api/youtube/oauth/setup", dto.OAuthSetupRequest{DemoMode: demo}, &res); err != nil {
		return nil, err
	}
	if res.AuthURL == "" || res.SessionID == "" {
		return nil, fmt.Errorf("setup returned no consent URL")
	}
	return &res, nil
}

func (c *apiClient) Status(ctx context.Context) (handshake.ConnectionStatus, error) {
	var res dto.OAuthStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/youtube/oauth/status", nil, &res); err != nil {
		return handshake.ConnectionStatus{}, err
	}
	st := handshake.ConnectionStatus{Connected: res.Connected}
	if res.ChannelName != nil {
		st.ChannelName = *res.ChannelName
	}
	if res.UpdatedAt != nil {
		st.UpdatedAt = *res.UpdatedAt
	}
	return st, nil
}

type waitQuery struct {
	SessionID string `url:"session_id"`
	Timeout   int    `url:"timeout,omitempty"`
}

// waitChannel long-polls the server wait endpoint, which races the server side
// channels for the same session.
type waitChannel struct {
	api     *apiClient
	timeout time.Duration
}

func (w *waitChannel) Name() string { return "server" }

func (w *waitChannel) Listen(ctx context.Context, sessionID string, deliver func(model.OAuthOutcome)) error {
	v, err := query.Values(waitQuery{SessionID: sessionID, Timeout: int(w.timeout.Seconds())})
	if err != nil {
		return err
	}
	path := "/api/youtube/oauth/wait?" + v.Encode()
	for ctx.Err() == nil {
		var res dto.OAuthWaitResponse
		if err := w.api.do(ctx, http.MethodGet, path, nil, &res); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch res.Status {
		case "success":
			deliver(model.OAuthOutcome{SessionID: sessionID, Success: true, ChannelName: res.Message, Timestamp: time.Now().UnixMilli()})
			return nil
		case "error":
			if res.Kind == string(handshake.KindProvider) {
				deliver(model.OAuthOutcome{SessionID: sessionID, Error: res.Message, Timestamp: time.Now().UnixMilli()})
				return nil
			}
		}
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
	}
	return nil
}
