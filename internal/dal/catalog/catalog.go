package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/product"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const defaultTimeout = 10 * time.Second

// Client is an HTTP client for the product catalog service.
// Lookups are a single attempt without retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// productResponse is the envelope the catalog wraps products in.
type productResponse struct {
	Response *product.Product `json:"response"`
}

// MustNewClient creates a catalog client from config.
func MustNewClient() *Client {
	baseURL := viper.GetString("catalog.base_url")
	if baseURL == "" {
		panic("catalog.base_url is not set in config")
	}

	timeout := time.Duration(viper.GetInt("catalog.timeout_seconds")) * time.Second
	client := NewClient(baseURL, timeout)

	slog.Info("Catalog client configured", "base_url", client.baseURL, "timeout", timeout)

	return client
}

// NewClient creates a catalog client for baseURL. A non-positive timeout falls back to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FindByID fetches a product by id.
// found is false when the catalog answers 404 or any 2xx other than 200, or returns no product.
// Transport failures, undecodable bodies and every other status are returned as errors.
func (c *Client) FindByID(ctx context.Context, productID int64) (product.Product, bool, error) {
	ctx, span := otel.Tracer("catalog-client").Start(ctx, "Client.FindByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	url := c.baseURL + "/product/" + strconv.FormatInt(productID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return product.Product{}, false, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return product.Product{}, false, fmt.Errorf("failed to call catalog: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode >= 200 && resp.StatusCode < 300:
		return product.Product{}, false, nil
	default:
		return product.Product{}, false, fmt.Errorf("catalog returned status %d for product %d", resp.StatusCode, productID)
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return product.Product{}, false, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	if body.Response == nil {
		return product.Product{}, false, nil
	}

	return *body.Response, true, nil
}
