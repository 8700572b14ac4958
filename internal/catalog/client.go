// Package catalog wraps the remote e-commerce API the storefront proxies:
// products, categories, brands, wishlist, and the password-reset endpoints.
package catalog

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

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
)

const (
	tokenHeader                 = "token"
	responseBodyReadLimit int64 = 1 << 20
)

// Client talks to the upstream e-commerce REST API. No call is retried; a
// failure is terminal for that user action.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a gateway client for the given API base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// ListProducts fetches the full product listing.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getCollection(ctx, "products", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCategories fetches all top-level categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.getCollection(ctx, "categories", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategory fetches a single category by its upstream id.
func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	var out Category
	if err := c.getSingle(ctx, "categories/"+url.PathEscape(trimmed), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategorySubcategories fetches the subcategories nested under a category.
func (c *Client) ListCategorySubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	trimmed := strings.TrimSpace(categoryID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	var out []Subcategory
	if err := c.getCollection(ctx, "categories/"+url.PathEscape(trimmed)+"/subcategories", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSubcategories fetches all subcategories.
func (c *Client) ListSubcategories(ctx context.Context) ([]Subcategory, error) {
	var out []Subcategory
	if err := c.getCollection(ctx, "subcategories", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBrands fetches all brands.
func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	var out []Brand
	if err := c.getCollection(ctx, "brands", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWishlist fetches the products the authenticated user has liked.
func (c *Client) GetWishlist(ctx context.Context, token string) ([]Product, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "wishlist requires an auth token")
	}
	var out []Product
	if err := c.getCollection(ctx, "wishlist", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleWishlist flips a product's liked state upstream. The remote endpoint
// is a toggle: the same call adds or removes depending on current state.
func (c *Client) ToggleWishlist(ctx context.Context, token, productID string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "wishlist requires an auth token")
	}
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return c.postMessage(ctx, "wishlist", token, map[string]string{"productId": trimmed})
}

// ForgotPassword asks the upstream API to email a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	return c.postMessage(ctx, "auth/forgotPasswords", "", map[string]string{"email": trimmed})
}

// VerifyResetCode submits the emailed reset code for verification.
func (c *Client) VerifyResetCode(ctx context.Context, code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "reset code is required")
	}
	return c.postMessage(ctx, "auth/verifyResetCode", "", map[string]string{"resetCode": trimmed})
}

func (c *Client) getCollection(ctx context.Context, path, token string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+path+" response")
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+path+" data")
	}
	return nil
}

func (c *Client) getSingle(ctx context.Context, path string, out any) error {
	return c.getCollection(ctx, path, "", out)
}

func (c *Client) postMessage(ctx context.Context, path, token string, payload any) (string, error) {
	body, err := c.do(ctx, http.MethodPost, path, token, payload)
	if err != nil {
		return "", err
	}
	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+path+" response")
	}
	if envelope.Message != "" {
		return envelope.Message, nil
	}
	return envelope.Status, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+path+" request")
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+path+" request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+path+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := readBody(resp)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+path+" response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, remoteError(resp.StatusCode, raw, path)
	}
	return raw, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
}

// remoteError maps an upstream failure onto the error taxonomy. A remote
// message body is surfaced verbatim so the user sees what the API said.
func remoteError(status int, body []byte, path string) error {
	message := ""
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = strings.TrimSpace(envelope.Message)
	}

	switch {
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "authentication required"
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case status == http.StatusNotFound:
		if message == "" {
			message = "resource not found"
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("%s request rejected", path)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body))),
			path+" request failed")
	}
}
