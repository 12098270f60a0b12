// Package inventory is an HTTP client for the inventory service's product lookup API.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrProductNotFound is returned when the inventory service answers 404.
	ErrProductNotFound = errors.New("inventory product not found")
	// ErrUnavailable is returned on transport failures and 5xx answers.
	ErrUnavailable = errors.New("inventory service unavailable")
)

const defaultTimeout = 3 * time.Second

// Product is the inventory service's product representation.
type Product struct {
	Codigo      int64           `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Color       string          `json:"color,omitempty"`
	Talla       string          `json:"talla,omitempty"`
	Descripcion string          `json:"descripcion,omitempty"`
	Precio      decimal.Decimal `json:"precio"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Client calls GET /inventarios/{codigo}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against baseURL. A nil httpClient gets a traced client with the default timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("inventory base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse inventory base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(defaultTimeout)
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// NewHTTPClient returns an http.Client whose transport emits client spans.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// GetProduct fetches a product by its code.
func (c *Client) GetProduct(ctx context.Context, code int64) (*Product, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("inventory client not configured")
	}
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "codigo", runtime.ParamLocationPath, code)
	if err != nil {
		return nil, fmt.Errorf("style codigo parameter: %w", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "inventarios", pathParam)
	if err != nil {
		return nil, fmt.Errorf("build inventory URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var product Product
		if err := json.Unmarshal(body, &product); err != nil {
			return nil, fmt.Errorf("decode inventory product %d: %w", code, err)
		}
		return &product, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, detailOf(body, fmt.Sprintf("code %d", code)))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, detailOf(body, resp.Status))
	default:
		return nil, fmt.Errorf("inventory API unexpected status %s: %s", resp.Status, detailOf(body, ""))
	}
}

func detailOf(body []byte, fallback string) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Detail); msg != "" {
			return msg
		}
	}
	return fallback
}
