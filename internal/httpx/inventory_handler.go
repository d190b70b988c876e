package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"aurashop/internal/apperr"
	"aurashop/internal/events"
	"aurashop/internal/inventory"
)

// ProductStore: subset repo inventory yang dipakai handler.
type ProductStore interface {
	List(ctx context.Context, category inventory.Category) ([]inventory.Product, error)
	Get(ctx context.Context, id string) (inventory.Product, error)
	Create(ctx context.Context, p inventory.Product) (inventory.Product, error)
	Update(ctx context.Context, p inventory.Product) error
	Delete(ctx context.Context, id string) error
	ReduceStock(ctx context.Context, id string, qty int) error
	SetImage(ctx context.Context, id string, data []byte, mime string) error
	GetImage(ctx context.Context, id string) ([]byte, string, error)
}

type InventoryHandler struct {
	Repo        ProductStore
	Producer    events.Publisher
	ServiceName string
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Patch("/{id}/reduce-stok", h.reduceStock)
		r.Post("/{id}/image", h.uploadImage)
		r.Get("/{id}/image", h.image)
	})
}

// imageURL: client dapat URL, bukan blob (kebiasaan API lama dipertahankan).
func imageURL(r *http.Request, id string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/inventory/%s/image", scheme, r.Host, id)
}

func withImageURL(r *http.Request, p inventory.Product) inventory.Product {
	if p.ImageMime != "" {
		p.ImageURL = imageURL(r, p.ID)
	}
	return p
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	cat := inventory.Category(r.URL.Query().Get("category"))
	if cat != "" && !inventory.ValidCategory(cat) {
		writeError(w, apperr.Newf(apperr.KindInvalid, "kategori tidak dikenal: %s", cat))
		return
	}
	ps, err := h.Repo.List(r.Context(), cat)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]inventory.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, withImageURL(r, p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withImageURL(r, p))
}

type productReq struct {
	Name        string             `json:"name"`
	Category    inventory.Category `json:"category"`
	PriceCents  int64              `json:"price_cents"`
	Stock       int                `json:"stock"`
	Description string             `json:"description"`
}

func (pr productReq) validate() error {
	if pr.Name == "" {
		return apperr.Invalid("name wajib diisi")
	}
	if !inventory.ValidCategory(pr.Category) {
		return apperr.Newf(apperr.KindInvalid, "kategori tidak dikenal: %s", pr.Category)
	}
	if pr.PriceCents < 0 {
		return apperr.Invalid("price_cents tidak boleh negatif")
	}
	if pr.Stock < 0 {
		return apperr.Invalid("stock tidak boleh negatif")
	}
	return nil
}

func (h *InventoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Repo.Create(r.Context(), inventory.Product{
		Name:        req.Name,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *InventoryHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	err := h.Repo.Update(r.Context(), inventory.Product{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withImageURL(r, p))
}

func (h *InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "produk berhasil dihapus"})
}

func (h *InventoryHandler) reduceStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Repo.ReduceStock(r.Context(), id, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	events.Emit(h.Producer, h.ServiceName, events.EventStockReduced, id, middleware.GetReqID(r.Context()),
		events.StockReducedPayload{ProductID: id, Quantity: req.Quantity})
	writeJSON(w, http.StatusOK, map[string]string{"message": "stok berhasil dikurangi"})
}

const maxImageBytes = 10 << 20

func (h *InventoryHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, apperr.Wrap(apperr.KindInvalid, "form upload tidak valid", err))
		return
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.Invalid("file tidak ditemukan, pakai field name 'image'"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindInvalid, "gagal membaca file", err))
		return
	}
	mime := hdr.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	id := chi.URLParam(r, "id")
	if err := h.Repo.SetImage(r.Context(), id, data, mime); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": imageURL(r, id)})
}

func (h *InventoryHandler) image(w http.ResponseWriter, r *http.Request) {
	data, mime, err := h.Repo.GetImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
