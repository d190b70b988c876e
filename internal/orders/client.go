package orders

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aurashop/internal/clientx"
)

// Client: wrapper tipis ke order service, dipakai kasir.
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

func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	var o Order
	url := fmt.Sprintf("%s/api/orders/%s", c.BaseURL, id)
	err := clientx.Do(ctx, c.HTTP, http.MethodGet, url, nil, &o, "order")
	return o, err
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status Status) error {
	url := fmt.Sprintf("%s/api/orders/%s/status", c.BaseURL, id)
	body := map[string]string{"order_status": string(status)}
	return clientx.Do(ctx, c.HTTP, http.MethodPut, url, body, nil, "order")
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/orders/%s", c.BaseURL, id)
	return clientx.Do(ctx, c.HTTP, http.MethodDelete, url, nil, nil, "order")
}
