package inventory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aurashop/internal/clientx"
)

// Client: wrapper tipis ke inventory service, dipakai order & kasir service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	url := fmt.Sprintf("%s/api/inventory/%s", c.BaseURL, id)
	err := clientx.Do(ctx, c.HTTP, http.MethodGet, url, nil, &p, "inventory")
	return p, err
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var ps []Product
	err := clientx.Do(ctx, c.HTTP, http.MethodGet, c.BaseURL+"/api/inventory", nil, &ps, "inventory")
	return ps, err
}

func (c *Client) ReduceStock(ctx context.Context, id string, qty int) error {
	url := fmt.Sprintf("%s/api/inventory/%s/reduce-stok", c.BaseURL, id)
	return clientx.Do(ctx, c.HTTP, http.MethodPatch, url, map[string]int{"quantity": qty}, nil, "inventory")
}
