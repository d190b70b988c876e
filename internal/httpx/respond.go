package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"aurashop/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError memetakan taxonomy apperr ke status HTTP. Penyebab internal
// cuma masuk log, tidak pernah bocor ke client.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	code := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindInvalid:
		code = http.StatusBadRequest
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindUpstream:
		code = http.StatusBadGateway
	}
	if code >= 500 {
		log.Printf("http %d: %v", code, err)
	}
	writeJSON(w, code, errBody{Error: kind.String(), Message: apperr.Message(err)})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalid, "invalid json body", err)
	}
	return nil
}
