// Package clientx: plumbing bersama untuk client antar-service
// (JSON request/response + mapping error balik ke taxonomy apperr).
package clientx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"aurashop/internal/apperr"
)

// Do mengirim request JSON dan decode response ke out (boleh nil).
// svc hanya dipakai untuk pesan error.
func Do(ctx context.Context, hc *http.Client, method, url string, in, out any, svc string) error {
	var body = bytes.NewReader(nil)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return apperr.Upstream(fmt.Sprintf("%s service tidak bisa dihubungi", svc), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return FromResponse(resp, svc)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperr.Upstream(fmt.Sprintf("response %s tidak valid", svc), err)
		}
	}
	return nil
}

// FromResponse menerjemahkan body error {error,message} jadi apperr sesuai
// status code, supaya kegagalan downstream tidak jadi 500 polos.
func FromResponse(resp *http.Response, svc string) error {
	var eb struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := eb.Message
	if msg == "" {
		msg = fmt.Sprintf("%s service: HTTP %d", svc, resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperr.NotFound(msg)
	case http.StatusBadRequest:
		return apperr.Invalid(msg)
	case http.StatusConflict:
		return apperr.Conflict(msg)
	default:
		return apperr.Upstream(msg, fmt.Errorf("%s: HTTP %d", svc, resp.StatusCode))
	}
}
