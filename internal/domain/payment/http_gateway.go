// internal/domain/payment/http_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/commerce-core/internal/config"
)

// HTTPGateway talks to the payment provider's REST API. Requests carry
// basic auth credentials and an Idempotency-Key header so the provider
// can dedupe retries.
type HTTPGateway struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPGateway creates a new HTTP gateway from payment configuration
func NewHTTPGateway(cfg *config.Config, logger *logrus.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   cfg.Payment.BaseURL,
		keyID:     cfg.Payment.KeyID,
		keySecret: cfg.Payment.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Payment.RequestTimeout,
		},
		logger: logger,
	}
}

// apiError is the provider's error envelope.
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type captureRequest struct {
	Amount int64 `json:"amount"`
}

// Authorize implements Gateway.
func (g *HTTPGateway) Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	body, err := g.makeAPICall(ctx, http.MethodPost, "/authorizations", req, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var auth Authorization
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("failed to parse authorization response: %w", err)
	}
	return &auth, nil
}

// Capture implements Gateway.
func (g *HTTPGateway) Capture(ctx context.Context, authRef string, amount int64, idempotencyKey string) (*Capture, error) {
	endpoint := fmt.Sprintf("/authorizations/%s/capture", authRef)
	body, err := g.makeAPICall(ctx, http.MethodPost, endpoint, captureRequest{Amount: amount}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	var capture Capture
	if err := json.Unmarshal(body, &capture); err != nil {
		return nil, fmt.Errorf("failed to parse capture response: %w", err)
	}
	return &capture, nil
}

// Void implements Gateway.
func (g *HTTPGateway) Void(ctx context.Context, authRef string, idempotencyKey string) error {
	endpoint := fmt.Sprintf("/authorizations/%s/void", authRef)
	_, err := g.makeAPICall(ctx, http.MethodPost, endpoint, nil, idempotencyKey)
	return err
}

// makeAPICall makes HTTP calls to the provider API and maps provider
// failures onto the package sentinels.
func (g *HTTPGateway) makeAPICall(ctx context.Context, method, endpoint string, data interface{}, idempotencyKey string) ([]byte, error) {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Payment provider call")

	if resp.StatusCode < 400 {
		return respBody.Bytes(), nil
	}

	var provider apiError
	_ = json.Unmarshal(respBody.Bytes(), &provider)

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("%w: %s", ErrDeclined, provider.Error.Description)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrAuthorizationNotFound, endpoint)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned status %d", ErrProviderUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("provider call failed with status %d: %s", resp.StatusCode, respBody.String())
	}
}
