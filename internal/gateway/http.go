package gateway

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
	"strings"
	"time"

	"github.com/inovacc/cookbook/internal/model"
)

const (
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read into a message.
	maxErrorBody = 64 << 10
)

// Compile-time interface checks.
var (
	_ Gateway = (*HTTPClient)(nil)
	_ Getter  = (*HTTPClient)(nil)
)

// HTTPClient talks to the recipe API over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *HTTPClient) {
		if log != nil {
			c.log = log
		}
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL,
// e.g. "http://localhost:8080".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Create posts a new recipe.
func (c *HTTPClient) Create(ctx context.Context, recipe model.Recipe) error {
	if recipe.ID != "" {
		return &RejectedError{Op: "create", Status: http.StatusBadRequest, Message: "new recipe must not carry an id"}
	}

	_, err := c.request(ctx, "create", http.MethodPost, "/api/recipe", recipe)

	return err
}

// ReadAll fetches the whole collection.
func (c *HTTPClient) ReadAll(ctx context.Context) ([]model.Recipe, error) {
	body, err := c.request(ctx, "read all", http.MethodGet, "/api/recipes", nil)
	if err != nil {
		return nil, err
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}

	if recipes == nil {
		recipes = []model.Recipe{}
	}

	return recipes, nil
}

// Get fetches a single recipe.
func (c *HTTPClient) Get(ctx context.Context, id string) (model.Recipe, error) {
	body, err := c.request(ctx, "get", http.MethodGet, recipePath(id), nil)
	if err != nil {
		return model.Recipe{}, err
	}

	var recipe model.Recipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		return model.Recipe{}, fmt.Errorf("failed to parse recipe %s: %w", id, err)
	}

	return recipe, nil
}

// searchRequest is the body of a name search.
type searchRequest struct {
	Name string `json:"recipename"`
}

// Search asks the server for recipes whose name contains query.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]model.Recipe, error) {
	body, err := c.request(ctx, "search", http.MethodPost, "/api/recipe/search", searchRequest{Name: query})
	if err != nil {
		return nil, err
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(body, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	return recipes, nil
}

// Update replaces the recipe stored under id.
func (c *HTTPClient) Update(ctx context.Context, id string, recipe model.Recipe) error {
	if id == "" {
		return &RejectedError{Op: "update", Status: http.StatusBadRequest, Message: "missing recipe id"}
	}

	_, err := c.request(ctx, "update", http.MethodPut, recipePath(id), recipe)

	return err
}

// Delete removes the recipe stored under id.
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &RejectedError{Op: "delete", Status: http.StatusBadRequest, Message: "missing recipe id"}
	}

	_, err := c.request(ctx, "delete", http.MethodDelete, recipePath(id), nil)

	return err
}

func recipePath(id string) string {
	return "/api/recipe/" + url.PathEscape(id)
}

// request sends one HTTP request and classifies any failure.
func (c *HTTPClient) request(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op, ctxErr)
		}

		return nil, &TransientError{Op: op, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("recipe api request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(op, resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return respBody, nil
}

// errorBody is the error envelope written by the recipe server.
type errorBody struct {
	Error         string   `json:"error"`
	InvalidFields []string `json:"invalidFields"`
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		msg = eb.Error
	}

	if transientStatus(resp.StatusCode) {
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}

		return &TransientError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	return &RejectedError{Op: op, Status: resp.StatusCode, Message: msg, Fields: eb.InvalidFields}
}
