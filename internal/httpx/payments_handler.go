package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aurashop/internal/payments"
)

type PaymentsHandler struct {
	WF *payments.Workflow
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/orders/{id}/pay", h.pay)
	r.Get("/api/orders/{id}/payments", h.paymentsByOrder)
	r.Get("/api/payments", h.list)
	r.Delete("/api/payments/{id}", h.delete)
}

type payResp struct {
	Message  string             `json:"message"`
	Data     payments.Payment   `json:"data"`
	Warnings []payments.Warning `json:"warnings,omitempty"`
}

func (h *PaymentsHandler) pay(w http.ResponseWriter, r *http.Request) {
	var req payments.PayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, warnings, err := h.WF.Pay(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	msg := "pembayaran berhasil dan stok produk diperbarui"
	if len(warnings) > 0 {
		msg = "pembayaran berhasil, sebagian stok gagal diperbarui (lihat warnings)"
	}
	writeJSON(w, http.StatusCreated, payResp{Message: msg, Data: p, Warnings: warnings})
}

func (h *PaymentsHandler) paymentsByOrder(w http.ResponseWriter, r *http.Request) {
	ps, err := h.WF.PaymentsForOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []payments.Payment{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *PaymentsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	ps, err := h.WF.Repo.List(r.Context(), payments.ListFilter{
		Status:  q.Get("status"),
		Method:  q.Get("paymentMethod"),
		OrderID: q.Get("orderId"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []payments.Payment{}
	}
	writeJSON(w, http.StatusOK, ps)
}

type deletePayResp struct {
	Message  string             `json:"message"`
	Warnings []payments.Warning `json:"warnings,omitempty"`
}

func (h *PaymentsHandler) delete(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.WF.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletePayResp{Message: "pembayaran dan pesanan terkait dihapus", Warnings: warnings})
}
