// Package gateway is a client for the Kong admin API consumer and key-auth resources.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var errRetryableStatus = errors.New("transient gateway status")

// Client talks to the gateway admin API. It is safe for concurrent use and
// should be constructed once and shared.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     uint
	initialBackoff time.Duration
}

type response struct {
	status int
	body   []byte
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the admin API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateConsumer creates a consumer. At least one of Username or CustomID must be set.
func (c *Client) CreateConsumer(ctx context.Context, req CreateConsumerRequest) (*Consumer, error) {
	if req.Username == "" && req.CustomID == "" {
		return nil, ErrMissingIdentifier
	}
	consumer := &Consumer{}
	if err := c.doJSON(ctx, http.MethodPost, "/consumers", req, consumer); err != nil {
		return nil, err
	}
	return consumer, nil
}

// GetConsumer fetches a consumer by username or id.
func (c *Client) GetConsumer(ctx context.Context, usernameOrID string) (*Consumer, error) {
	consumer := &Consumer{}
	if err := c.doJSON(ctx, http.MethodGet, consumerPath(usernameOrID), nil, consumer); err != nil {
		return nil, err
	}
	return consumer, nil
}

// FindConsumer looks up a consumer, reporting absence as found == false with a nil error.
// Any other failure is returned as an *APIError.
func (c *Client) FindConsumer(ctx context.Context, usernameOrID string) (consumer *Consumer, found bool, err error) {
	consumer, err = c.GetConsumer(ctx, usernameOrID)
	switch {
	case err == nil:
		return consumer, true, nil
	case IsNotFound(err):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// ConsumerExists reports whether a consumer exists. Errors other than 404 are returned unchanged.
func (c *Client) ConsumerExists(ctx context.Context, usernameOrID string) (bool, error) {
	_, found, err := c.FindConsumer(ctx, usernameOrID)
	return found, err
}

func (c *Client) DeleteConsumer(ctx context.Context, usernameOrID string) error {
	return c.doJSON(ctx, http.MethodDelete, consumerPath(usernameOrID), nil, nil)
}

// ListConsumers returns one page of consumers. An empty offset starts from the beginning.
func (c *Client) ListConsumers(ctx context.Context, size int, offset string) (*ConsumerPage, error) {
	query := url.Values{}
	query.Set("size", strconv.Itoa(size))
	if offset != "" {
		query.Set("offset", offset)
	}
	page := &ConsumerPage{}
	if err := c.doJSON(ctx, http.MethodGet, "/consumers?"+query.Encode(), nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateConsumerKey adds a key-auth credential. An empty key lets the gateway generate one.
func (c *Client) CreateConsumerKey(ctx context.Context, usernameOrID, key string) (*APIKey, error) {
	apiKey := &APIKey{}
	if err := c.doJSON(ctx, http.MethodPost, keysPath(usernameOrID), createKeyRequest{Key: key}, apiKey); err != nil {
		return nil, err
	}
	return apiKey, nil
}

func (c *Client) GetConsumerKeys(ctx context.Context, usernameOrID string) ([]APIKey, error) {
	list := &keyList{}
	if err := c.doJSON(ctx, http.MethodGet, keysPath(usernameOrID), nil, list); err != nil {
		return nil, err
	}
	if list.Data == nil {
		return []APIKey{}, nil
	}
	return list.Data, nil
}

func (c *Client) DeleteConsumerKey(ctx context.Context, usernameOrID, keyID string) error {
	return c.doJSON(ctx, http.MethodDelete, keysPath(usernameOrID)+"/"+url.PathEscape(keyID), nil, nil)
}

// HealthCheck returns the gateway node status.
func (c *Client) HealthCheck(ctx context.Context) (Status, error) {
	status := Status{}
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

func consumerPath(usernameOrID string) string {
	return "/consumers/" + url.PathEscape(usernameOrID)
}

func keysPath(usernameOrID string) string {
	return consumerPath(usernameOrID) + "/key-auth"
}

// doJSON performs the call and decodes a successful body into out. A body that
// is not JSON is normalized to {"message": ...} when out is a Status.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if !json.Valid(resp.body) {
		if status, ok := out.(*Status); ok {
			*status = normalizeBody(resp.body)
			return nil
		}
		return fmt.Errorf("[gateway doJSON] %s %s: response body is not JSON", method, path)
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("[gateway doJSON] %s %s: decode response: %w", method, path, err)
	}
	return nil
}

// do sends one logical request, retrying transport failures and 502/503/504
// responses with exponential backoff. Every attempt carries the same X-Request-ID.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encoding request: %v", err), Body: map[string]any{}}
		}
	}

	endpoint := c.baseURL + path
	requestID := uuid.NewString()
	log.Info().Str("method", method).Str("url", endpoint).Str("request_id", requestID).Msg("gateway request")
	if payload != nil {
		log.Debug().Str("request_id", requestID).Interface("payload", maskPayload(payload)).Msg("gateway request payload")
	}

	attempt := func() (*response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-Request-ID", requestID)

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer httpResp.Body.Close()

		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		resp := &response{status: httpResp.StatusCode, body: raw}
		if retryableStatus(httpResp.StatusCode) {
			return resp, errRetryableStatus
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).Str("request_id", requestID).Dur("wait", wait).Msg("retrying gateway request")
		}),
	)
	if err != nil && !(errors.Is(err, errRetryableStatus) && resp != nil) {
		apiErr := newTransportError(err)
		log.Error().Str("request_id", requestID).Str("method", method).Str("url", endpoint).Msg(apiErr.Message)
		return nil, apiErr
	}

	log.Info().Int("status", resp.status).Str("method", method).Str("url", endpoint).Str("request_id", requestID).Msg("gateway response")
	log.Debug().Str("request_id", requestID).Interface("body", maskPayload(normalizeBody(resp.body))).Msg("gateway response body")

	if resp.status < 200 || resp.status > 299 {
		apiErr := newStatusError(resp.status, normalizeBody(resp.body))
		event := log.Warn()
		if resp.status == http.StatusNotFound {
			event = log.Info()
		}
		event.Int("status", resp.status).Str("request_id", requestID).Msg(apiErr.Message)
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.initialBackoff << c.maxRetries
	return b
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// normalizeBody decodes a JSON object body. Anything else becomes {"message": <text>}.
func normalizeBody(raw []byte) map[string]any {
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err == nil {
		return body
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		text = "Empty response"
	}
	return map[string]any{"message": text}
}

// MaskKey shortens an API key for logging.
func MaskKey(key string) string {
	if len(key) > 8 {
		key = key[:8]
	}
	return key + "***"
}

func maskPayload(payload any) any {
	switch p := payload.(type) {
	case createKeyRequest:
		if p.Key != "" {
			p.Key = MaskKey(p.Key)
		}
		return p
	case map[string]any:
		if key, ok := p["key"].(string); ok && key != "" {
			masked := make(map[string]any, len(p))
			for k, v := range p {
				masked[k] = v
			}
			masked["key"] = MaskKey(key)
			return masked
		}
	}
	return payload
}
