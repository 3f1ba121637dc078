package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veysel440/go-auth-smoke/internal/logging"
)

func init() { SetLogger(logging.NewWriter(io.Discard, "error")) }

func TestWrite_JSONShape(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/register", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	Write(rr, req, Validation(map[string]string{"email": "email"}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct == "" {
		t.Fatal("no content-type")
	}
	var body struct {
		Code   string            `json:"code"`
		Rid    string            `json:"rid"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "validation_error" || body.Rid != "rid-1" || body.Fields["email"] != "email" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestWrite_WrappedAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/register", nil)
	Write(rr, req, fmt.Errorf("create: %w", Conflict))
	if rr.Code != http.StatusConflict {
		t.Fatalf("wrapped AppError not matched, code %d", rr.Code)
	}
}

func TestWrite_PlainErrorIs500(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	Write(rr, req, io.ErrUnexpectedEOF)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code %d", rr.Code)
	}
}
