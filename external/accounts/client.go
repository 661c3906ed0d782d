package accounts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridline/spreadpool/internal/domain/identity"
	"github.com/gridline/spreadpool/internal/platform/logging"
	"github.com/gridline/spreadpool/internal/usecase"
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client talks to the account service. It serves both as the token verifier
// for the HTTP layer and as the display-name directory for aggregation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (identity.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return identity.Principal{}, fmt.Errorf("%w: access token is required", usecase.ErrUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tokens/verify", nil)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: verify access token: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identity.Principal{}, fmt.Errorf("read verify response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return identity.Principal{}, fmt.Errorf("%w: access token rejected", usecase.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return identity.Principal{}, fmt.Errorf("%w: account service status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var envelope verifyEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return identity.Principal{}, fmt.Errorf("decode verify response: %w", err)
	}
	if strings.TrimSpace(envelope.Data.UserID) == "" {
		return identity.Principal{}, fmt.Errorf("%w: verify response missing user id", usecase.ErrUnauthorized)
	}

	return identity.Principal{
		UserID: envelope.Data.UserID,
		Email:  envelope.Data.Email,
		Admin:  envelope.Data.Admin,
	}, nil
}

func (c *Client) ListUsers(ctx context.Context, ids []string) (map[string]identity.User, error) {
	out := make(map[string]identity.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values := url.Values{}
	values.Set("ids", strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/users?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list users request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read list users response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("account service status=%d", resp.StatusCode)
	}

	var envelope usersEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode list users response: %w", err)
	}

	for _, row := range envelope.Data {
		if strings.TrimSpace(row.ID) == "" {
			continue
		}
		out[row.ID] = identity.User{
			ID:          row.ID,
			DisplayName: strings.TrimSpace(row.DisplayName),
		}
	}

	return out, nil
}

type verifyEnvelope struct {
	Data struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Admin  bool   `json:"admin"`
	} `json:"data"`
}

type usersEnvelope struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}
