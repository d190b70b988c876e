package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aurashop/internal/apperr"
	"aurashop/internal/orders"
)

type OrdersHandler struct {
	Svc *orders.Service
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/user/{userId}", h.listByUser)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Get("/{id}/status", h.status)
		r.Put("/{id}/status", h.updateStatus)
		r.Get("/{id}/invoice", h.invoice)
	})
}

type createOrderResp struct {
	Message    string       `json:"message"`
	Data       orders.Order `json:"data"`
	Idempotent bool         `json:"idempotent,omitempty"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, existed, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, createOrderResp{Message: "pesanan berhasil dibuat", Data: o, Idempotent: existed})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	os, err := h.Svc.List(r.Context(), orders.Status(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	os, err := h.Svc.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var req orders.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.Svc.UpdateFields(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "pesanan berhasil dihapus"})
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]orders.Status{"order_status": st})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"order_status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Status == "" {
		writeError(w, apperr.Invalid("order_status wajib diisi"))
		return
	}
	if err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]orders.Status{"order_status": req.Status})
}

func (h *OrdersHandler) invoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
