package paymentledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridline/spreadpool/internal/domain/payment"
	"github.com/gridline/spreadpool/internal/platform/logging"
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// Client reads entry-fee records from the payment ledger service. Statuses
// come back raw; normalization happens in the aggregator.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
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
		httpClient.Timeout = 15 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (c *Client) ListBySeason(ctx context.Context, season int) ([]payment.LedgerEntry, error) {
	if season <= 0 {
		return nil, fmt.Errorf("season must be greater than zero")
	}

	raw, err := c.get(ctx, fmt.Sprintf("/v1/ledger/seasons/%d/entries", season))
	if err != nil {
		return nil, fmt.Errorf("fetch ledger entries season=%d: %w", season, err)
	}

	var envelope ledgerEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode ledger payload: %w", err)
	}

	out := make([]payment.LedgerEntry, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		if strings.TrimSpace(row.UserID) == "" {
			continue
		}
		out = append(out, payment.LedgerEntry{
			UserID:        row.UserID,
			Season:        season,
			RawStatus:     row.Status,
			LedgerMatched: row.LedgerMatched,
		})
	}

	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send request: %w", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("read response body: %w", readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				lastErr = fmt.Errorf("ledger status=%d", resp.StatusCode)
			} else {
				return nil, fmt.Errorf("ledger status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("ledger request failed")
	}
	c.logger.WarnContext(ctx, "payment ledger request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

type ledgerEnvelope struct {
	Data []struct {
		UserID        string `json:"user_id"`
		Status        string `json:"status"`
		LedgerMatched bool   `json:"ledger_matched"`
	} `json:"data"`
}
