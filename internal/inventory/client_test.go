package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"aurashop/internal/apperr"
)

func inventoryStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/inventory/prod-a":
			_ = json.NewEncoder(w).Encode(Product{ID: "prod-a", Name: "Teh Hitam", PriceCents: 1000, Stock: 5})
		case r.Method == http.MethodGet && r.URL.Path == "/api/inventory/prod-x":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "message": "produk tidak ditemukan"})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/inventory/prod-a/reduce-stok":
			var req struct {
				Quantity int `json:"quantity"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Quantity > 5 {
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "conflict", "message": "stok tidak cukup (tersisa 5, diminta 6)"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "stok berhasil dikurangi"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/inventory":
			_ = json.NewEncoder(w).Encode([]Product{{ID: "prod-a"}, {ID: "prod-b"}})
		default:
			http.NotFound(w, r)
		}
	})
	return httptest.NewServer(mux)
}

func TestClientGetProduct(t *testing.T) {
	srv := inventoryStub(t)
	defer srv.Close()
	c := NewClient(srv.URL)

	p, err := c.GetProduct(context.Background(), "prod-a")
	require.NoError(t, err)
	require.Equal(t, int64(1000), p.PriceCents)

	_, err = c.GetProduct(context.Background(), "prod-x")
	require.True(t, apperr.Is(err, apperr.KindNotFound))
	require.Equal(t, "produk tidak ditemukan", apperr.Message(err))
}

func TestClientReduceStock(t *testing.T) {
	srv := inventoryStub(t)
	defer srv.Close()
	c := NewClient(srv.URL)

	require.NoError(t, c.ReduceStock(context.Background(), "prod-a", 2))

	err := c.ReduceStock(context.Background(), "prod-a", 6)
	require.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestClientListProducts(t *testing.T) {
	srv := inventoryStub(t)
	defer srv.Close()
	c := NewClient(srv.URL)

	ps, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
}

func TestClientUnreachableIsUpstream(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // tidak ada yang listen
	_, err := c.GetProduct(context.Background(), "prod-a")
	require.True(t, apperr.Is(err, apperr.KindUpstream))
}
