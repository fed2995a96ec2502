// Package upstream implements the typed client for the Receiptly analytics
// API. All calls carry a bearer token, retry on rate limiting, and normalize
// duck-typed payload shapes before anything else sees them.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	retryBaseDelay    = time.Second
	maxErrorBody      = 4 << 10
)

// Client talks to the Receiptly backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	backoff    func() retry.Backoff
	onRetry    func()
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBackoff overrides the retry backoff factory, mainly for tests.
func WithBackoff(factory func() retry.Backoff) Option {
	return func(c *Client) {
		if factory != nil {
			c.backoff = factory
		}
	}
}

// WithRetryHook registers a callback invoked once per rate-limit retry.
func WithRetryHook(fn func()) Option {
	return func(c *Client) {
		if fn != nil {
			c.onRetry = fn
		}
	}
}

// NewClient constructs a client for the given API base URL.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		logger:     logger,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(defaultMaxRetries, retry.NewExponential(retryBaseDelay))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query carries the identity and global filters applied to analytics calls.
type Query struct {
	UserID        string
	StoreName     string
	StoreCategory string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.UserID != "" {
		v.Set("user_id", q.UserID)
	}
	if q.StoreName != "" {
		v.Set("store_name", q.StoreName)
	}
	if q.StoreCategory != "" {
		v.Set("store_category", q.StoreCategory)
	}
	return v
}

// Spend fetches the spend-over-time series. Interval is daily, weekly or monthly.
func (c *Client) Spend(ctx context.Context, q Query, interval string) (SpendResult, error) {
	v := q.values()
	v.Set("interval", interval)
	var out SpendResult
	err := c.getJSON(ctx, "/api/analytics/spend", v, &out)
	return out, err
}

// BillStats fetches receipt count and average bill. Interval is M or All.
func (c *Client) BillStats(ctx context.Context, q Query, interval string) (BillStats, error) {
	v := q.values()
	v.Set("interval", interval)
	var out BillStats
	err := c.getJSON(ctx, "/api/analytics/bill-stats", v, &out)
	return out, err
}

// ExpensesByCategory fetches the category breakdown. Period is week, month or all.
func (c *Client) ExpensesByCategory(ctx context.Context, q Query, period string) (CategoryResult, error) {
	v := q.values()
	v.Set("period", period)
	var out CategoryResult
	err := c.getJSON(ctx, "/api/analytics/expenses-by-category", v, &out)
	return out, err
}

// TopProducts fetches the most frequently bought products. Period is month,
// year or all.
func (c *Client) TopProducts(ctx context.Context, q Query, period string, limit int) (ProductsResult, error) {
	v := q.values()
	v.Set("period", period)
	v.Set("limit", strconv.Itoa(limit))
	var out ProductsResult
	err := c.getJSON(ctx, "/api/analytics/top-products", v, &out)
	return out, err
}

// MostExpensiveProducts fetches products ranked by maximum unit price.
func (c *Client) MostExpensiveProducts(ctx context.Context, q Query, period string, limit int) (ProductsResult, error) {
	v := q.values()
	v.Set("period", period)
	v.Set("limit", strconv.Itoa(limit))
	var out ProductsResult
	err := c.getJSON(ctx, "/api/analytics/most-expensive-products", v, &out)
	return out, err
}

// ShoppingDays fetches the weekday histogram. Period is month or all.
func (c *Client) ShoppingDays(ctx context.Context, q Query, period string) (ShoppingDaysResult, error) {
	v := q.values()
	v.Set("period", period)
	var out ShoppingDaysResult
	err := c.getJSON(ctx, "/api/analytics/shopping-days", v, &out)
	return out, err
}

// DietComposition fetches diet percentages over time. Interval is month,
// 3months or 6months.
func (c *Client) DietComposition(ctx context.Context, q Query, interval string) (DietResult, error) {
	v := q.values()
	v.Set("interval", interval)
	var out DietResult
	err := c.getJSON(ctx, "/api/analytics/diet-composition", v, &out)
	return out, err
}

// ProductsByCategory fetches the drill-down list behind a category slice.
func (c *Client) ProductsByCategory(ctx context.Context, q Query, category, period string) (CategoryItemsResult, error) {
	v := q.values()
	v.Set("category", category)
	v.Set("period", period)
	var out CategoryItemsResult
	err := c.getJSON(ctx, "/api/analytics/products-by-category", v, &out)
	return out, err
}

// ReceiptsByDate fetches the receipts behind a spend bucket.
func (c *Client) ReceiptsByDate(ctx context.Context, q Query, date, interval string) (ReceiptsResult, error) {
	v := q.values()
	v.Set("date", date)
	v.Set("interval", interval)
	var out ReceiptsResult
	err := c.getJSON(ctx, "/api/analytics/receipts-by-date", v, &out)
	return out, err
}

// StoreNames lists distinct store names for the filter sidebar.
func (c *Client) StoreNames(ctx context.Context) (StoreNamesResult, error) {
	var out StoreNamesResult
	err := c.getJSON(ctx, "/store-names", nil, &out)
	return out, err
}

// StoreCategories lists distinct store categories for the filter sidebar.
func (c *Client) StoreCategories(ctx context.Context) (StoreCategoriesResult, error) {
	var out StoreCategoriesResult
	err := c.getJSON(ctx, "/store-categories", nil, &out)
	return out, err
}

// WidgetOrder fetches the persisted dashboard widget order.
func (c *Client) WidgetOrder(ctx context.Context, q Query) ([]string, error) {
	var out WidgetOrderResult
	if err := c.getJSON(ctx, "/api/analytics/widget-order", q.values(), &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

// SaveWidgetOrder persists a reordered dashboard layout.
func (c *Client) SaveWidgetOrder(ctx context.Context, q Query, order []string) error {
	body := map[string]any{"order": order}
	_, err := c.send(ctx, http.MethodPost, "/api/analytics/widget-order", q.values(), body)
	return err
}

// GetReceipt fetches one receipt by ID.
func (c *Client) GetReceipt(ctx context.Context, receiptID int64) (Receipt, error) {
	var out Receipt
	err := c.getJSON(ctx, fmt.Sprintf("/api/receipts/%d", receiptID), nil, &out)
	return out, err
}

// UpdateItemPrice patches the price of one line item on a receipt.
func (c *Client) UpdateItemPrice(ctx context.Context, receiptID int64, itemIndex int, price float64) (ReceiptMutationResult, error) {
	path := fmt.Sprintf("/api/receipts/%d/item-price", receiptID)
	body := map[string]any{"item_index": itemIndex, "price": price}
	raw, err := c.send(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return ReceiptMutationResult{}, err
	}
	var out ReceiptMutationResult
	c.decode(raw, &out, path)
	return out, nil
}

// UpdateReceiptField patches a scalar receipt field (store, date, category, total).
func (c *Client) UpdateReceiptField(ctx context.Context, receiptID int64, field, value string) (ReceiptMutationResult, error) {
	path := fmt.Sprintf("/api/receipts/%d/update-field", receiptID)
	body := map[string]any{"field": field, "value": value}
	raw, err := c.send(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return ReceiptMutationResult{}, err
	}
	var out ReceiptMutationResult
	c.decode(raw, &out, path)
	return out, nil
}

// ExportPDF posts the aggregate analytics payload to the server-side renderer
// and returns the PDF bytes.
func (c *Client) ExportPDF(ctx context.Context, payload ExportPayload) ([]byte, error) {
	return c.send(ctx, http.MethodPost, "/api/analytics/export-pdf", nil, payload)
}

// getJSON performs a GET through the retry wrapper and decodes the response.
// A payload that fails to decode degrades to the zero value of dest rather
// than propagating, so widgets render an empty state instead of an error.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	raw, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	c.decode(raw, dest, path)
	return nil
}

func (c *Client) decode(raw []byte, dest any, path string) {
	if err := json.Unmarshal(raw, dest); err != nil {
		if c.logger != nil {
			c.logger.Warn("unexpected payload shape, treating as empty",
				slog.String("path", path), slog.Any("error", fmt.Errorf("%w: %v", ErrInvalidShape, err)))
		}
	}
}

// send executes one logical request, retrying rate-limited attempts with
// exponential backoff (1s base, doubling, 3 retries). Any other failure, or a
// 429 that survives all retries, propagates to the caller.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var out []byte
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		raw, err := c.attempt(ctx, method, path, query, body)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				if c.onRetry != nil {
					c.onRetry()
				}
				if c.logger != nil {
					c.logger.Warn("rate limited, backing off", slog.String("path", path))
				}
				return retry.RetryableError(err)
			}
			return err
		}
		out = raw
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, fmt.Errorf("still rate limited after %d retries: %w", defaultMaxRetries, errors.Join(ErrServer, err))
		}
		return nil, err
	}
	return out, nil
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("upstream: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConnectivity, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return io.ReadAll(resp.Body)
}
