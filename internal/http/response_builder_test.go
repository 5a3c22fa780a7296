package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lynx/internal/amqp"
	"lynx/internal/core"
	"lynx/internal/services"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/contacts/1").
		JSON(createdResponse{ID: 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/contacts/1" {
		t.Errorf("Location = %q", got)
	}
	var body createdResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.ID != 1 {
		t.Errorf("body = %q, err %v", w.Body.String(), err)
	}
}

func TestResponseBuilder_Attachment(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Attachment("Lynx Search Results.csv", "text/csv", []byte("a,b\n")).Write(w)

	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="Lynx Search Results.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != "4" {
		t.Errorf("Content-Length = %q", got)
	}
	if w.Body.String() != "a,b\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get contact: %w", core.ErrNotFound), http.StatusNotFound},
		{badRequest("invalid id"), http.StatusBadRequest},
		{core.ErrEmptyName, http.StatusUnprocessableEntity},
		{fmt.Errorf("build: %w", core.ErrInvalidQuarter), http.StatusUnprocessableEntity},
		{services.ErrExportsDisabled, http.StatusServiceUnavailable},
		{fmt.Errorf("queue export: %w", amqp.ErrCircuitOpen), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/contacts/1", nil)
	writeError(w, r, errors.New("sql: database is locked"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Internal Server Error" {
		t.Fatalf("error = %q", body.Error)
	}
}
