package payments

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"aurashop/internal/clientx"
	"aurashop/internal/orders"
)

// Client: wrapper tipis ke kasir service.
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

func (c *Client) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	var ps []Payment
	url := fmt.Sprintf("%s/api/orders/%s/payments", c.BaseURL, orderID)
	err := clientx.Do(ctx, c.HTTP, http.MethodGet, url, nil, &ps, "kasir")
	return ps, err
}

// PaymentsByOrder membuat *Client memenuhi orders.PaymentSource (invoice).
func (c *Client) PaymentsByOrder(ctx context.Context, orderID string) ([]orders.PaymentRecord, error) {
	ps, err := c.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]orders.PaymentRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, orders.PaymentRecord{
			ID:          p.ID,
			Method:      p.Method,
			AmountCents: p.AmountCents,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out, nil
}
