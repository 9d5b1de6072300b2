package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/dealwatch/internal/errors"
	"github.com/tropicaldog17/dealwatch/internal/logger"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

const defaultBackendTimeout = 10 * time.Second

// HTTPBackendClient talks to the deals backend over its JSON REST API.
type HTTPBackendClient struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPBackendClient creates a client for the API rooted at baseURL
// (e.g. http://localhost:9000/api). userKey may be a Bark device key or a full
// Bark URL; it is sent as X-User-ID.
func NewHTTPBackendClient(baseURL, userKey string, timeout time.Duration, log *zap.Logger) BackendClient {
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	return &HTTPBackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  NormalizeUserKey(userKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.OrNop(log),
	}
}

// NormalizeUserKey extracts the device key from a Bark URL; plain keys are only trimmed.
func NormalizeUserKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if strings.HasPrefix(trimmed, "http") {
		parts := strings.Split(trimmed, "/")
		if last := parts[len(parts)-1]; last != "" {
			return last
		}
	}
	return trimmed
}

// ListProducts returns the products matching filter (nil for all).
func (c *HTTPBackendClient) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	var products []*models.Product
	if err := c.do(ctx, http.MethodGet, "/products", filter.Query(), nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetPriceTrend returns the raw trend samples of a product.
func (c *HTTPBackendClient) GetPriceTrend(ctx context.Context, activityID string) ([]models.PriceTrendPoint, error) {
	var points []models.PriceTrendPoint
	path := "/products/" + url.PathEscape(activityID) + "/trend"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &points); err != nil {
		return nil, fmt.Errorf("failed to get price trend for %s: %w", activityID, err)
	}
	return points, nil
}

func (c *HTTPBackendClient) BlockProduct(ctx context.Context, activityID string) error {
	if err := c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(activityID)+"/block", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to block %s: %w", activityID, err)
	}
	return nil
}

func (c *HTTPBackendClient) UnblockProduct(ctx context.Context, activityID string) error {
	if err := c.do(ctx, http.MethodPost, "/products/unblock/"+url.PathEscape(activityID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to unblock %s: %w", activityID, err)
	}
	return nil
}

func (c *HTTPBackendClient) ListBlockedProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	if err := c.do(ctx, http.MethodGet, "/products/blocked", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list blocked products: %w", err)
	}
	return products, nil
}

func (c *HTTPBackendClient) CreateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	body := models.CreateNotificationRequest{ActivityID: activityID, TargetPrice: targetPrice}
	if err := c.do(ctx, http.MethodPost, "/products/notifications", nil, body, nil); err != nil {
		return fmt.Errorf("failed to create notification for %s: %w", activityID, err)
	}
	return nil
}

func (c *HTTPBackendClient) UpdateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	body := models.UpdateNotificationRequest{TargetPrice: targetPrice}
	if err := c.do(ctx, http.MethodPut, "/products/notifications/"+url.PathEscape(activityID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update notification for %s: %w", activityID, err)
	}
	return nil
}

func (c *HTTPBackendClient) DeleteNotification(ctx context.Context, activityID string) error {
	if err := c.do(ctx, http.MethodDelete, "/products/notifications/"+url.PathEscape(activityID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete notification for %s: %w", activityID, err)
	}
	return nil
}

func (c *HTTPBackendClient) GetSystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	status := &models.SystemStatus{}
	if err := c.do(ctx, http.MethodGet, "/status", nil, nil, status); err != nil {
		return nil, fmt.Errorf("failed to get system status: %w", err)
	}
	return status, nil
}

// TestPush asks the backend to send a test push to the given Bark key.
func (c *HTTPBackendClient) TestPush(ctx context.Context, userKey string) error {
	body := map[string]string{"barkKey": strings.TrimSpace(userKey)}
	if err := c.do(ctx, http.MethodPost, "/admin/test-notification", nil, body, nil); err != nil {
		return fmt.Errorf("failed to send test push: %w", err)
	}
	return nil
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *HTTPBackendClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope models.APIResponse
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &envelope)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apperrors.ErrAPI{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
		if decodeErr != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if envelope.Code >= 400 {
		return &apperrors.ErrAPI{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}

	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
