package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	return out
}

func TestWrite(t *testing.T) {
	w := run(func(ctx *gin.Context) { Write(ctx, Created(gin.H{"x": 1}, "made")) })

	if w.Code != http.StatusCreated {
		t.Fatalf("got %d", w.Code)
	}
	body := decode(t, w)
	if body["statusCode"] != float64(201) || body["success"] != true || body["message"] != "made" {
		t.Fatalf("unexpected envelope %v", body)
	}
	if _, ok := body["errors"]; ok {
		t.Fatalf("success envelopes carry no errors field")
	}
}

func TestWriteError_APIError(t *testing.T) {
	w := run(func(ctx *gin.Context) { WriteError(ctx, Conflict("user already exists")) })

	if w.Code != http.StatusConflict {
		t.Fatalf("got %d", w.Code)
	}
	body := decode(t, w)
	if body["success"] != false || body["message"] != "user already exists" || body["statusCode"] != float64(409) {
		t.Fatalf("unexpected envelope %v", body)
	}
	if v, ok := body["data"]; !ok || v != nil {
		t.Fatalf("data should be null on errors, got %v", body)
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	w := run(func(ctx *gin.Context) { WriteError(ctx, errors.New("pq: connection reset by peer")) })

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", w.Code)
	}
	body := decode(t, w)
	if body["message"] != "something went wrong" {
		t.Fatalf("internal causes must not leak, got %v", body["message"])
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("could not save", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("Internal should wrap its cause")
	}
}
