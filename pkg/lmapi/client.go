package lmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lmops/lmstate/pkg/config"
	"github.com/lmops/lmstate/pkg/log"
	"github.com/lmops/lmstate/pkg/metrics"
)

// Client is the authenticated transport to the LogicMonitor REST API.
// It signs every request with the LMv1 scheme, classifies failures and
// retries transient ones with bounded exponential backoff. The client
// holds no resource state; it is safe for concurrent use.
type Client struct {
	baseURL     string
	accessID    string
	accessKey   string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	logger      zerolog.Logger
}

// New creates a client for the given account.
func New(acct *config.Account) *Client {
	return &Client{
		baseURL:     acct.ResolvedBaseURL(),
		accessID:    acct.AccessID,
		accessKey:   acct.AccessKey,
		httpClient:  &http.Client{Timeout: acct.GetTimeout()},
		maxAttempts: acct.GetMaxAttempts(),
		backoffBase: acct.GetBackoffBase(),
		logger:      log.WithComponent("lmapi"),
	}
}

// listResult is the portal's list envelope.
type listResult[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// envelope is the v2-style response wrapper. Some endpoints still return
// it even when the client requests v3; the decoder unwraps it when
// present and treats an embedded non-200 status as the real outcome.
type envelope struct {
	Status *int            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// portalError is the v3 error body.
type portalError struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Do issues one signed request and returns the decoded response payload.
// query parameters are appended to the URL but excluded from the signed
// resource path, per the LMv1 contract. Transient failures (network,
// 5xx, 429) are retried up to the attempt budget; definitive rejections
// are returned immediately as a classified *Error.
func (c *Client) Do(ctx context.Context, method, resourcePath string, query url.Values, body interface{}) (json.RawMessage, error) {
	op := method + " " + resourcePath

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("encode request body: %v", err), cause: err}
		}
	}

	reqURL := c.baseURL + resourcePath
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr *Error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.APIRetriesTotal.Inc()
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, lastErr
			}
		}

		data, apiErr := c.doOnce(ctx, method, resourcePath, reqURL, payload, op)
		if apiErr == nil {
			return data, nil
		}
		lastErr = apiErr
		if !apiErr.Retryable() {
			return nil, apiErr
		}
		c.logger.Warn().
			Str("op", op).
			Int("attempt", attempt).
			Int("status", apiErr.Status).
			Msg("Transient API failure, will retry")
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, resourcePath, reqURL string, payload []byte, op string) (json.RawMessage, *Error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.APIRequestDuration, method)

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Message: err.Error(), cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Version", "3")
	req.Header.Set("Authorization", AuthHeader(c.accessID, c.accessKey, method, string(payload), resourcePath, time.Now()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &Error{Kind: KindNetwork, Op: op, Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Op: op, Message: err.Error(), cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe portalError
		_ = json.Unmarshal(raw, &pe)
		msg := pe.ErrorMessage
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{
			Kind:    classify(resp.StatusCode, pe.ErrorCode),
			Status:  resp.StatusCode,
			Code:    pe.ErrorCode,
			Op:      op,
			Message: msg,
		}
	}

	// Unwrap the v2 envelope when present. An embedded non-200 status is
	// a failure even though the transport-level status was 2xx.
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Status != nil {
		if *env.Status != http.StatusOK {
			return nil, &Error{
				Kind:    classify(*env.Status, 0),
				Status:  *env.Status,
				Op:      op,
				Message: fmt.Sprintf("portal reported status %d", *env.Status),
			}
		}
		return env.Data, nil
	}
	return raw, nil
}

// sleep waits out the backoff for the given attempt, doubling from the
// configured base, and returns early if the context is cancelled.
func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoffBase << (attempt - 2)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
