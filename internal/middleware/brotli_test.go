package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func TestBrotliCompressesLargeBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli(64))
	large := strings.Repeat("answer log entry ", 50)
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("large body not compressed, headers %v", w.Header())
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(plain) != large {
		t.Fatal("round trip changed the body")
	}

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Fatalf("small body = %q with encoding %q", w.Body.String(), w.Header().Get("Content-Encoding"))
	}
}

func TestBrotliSkipsClientsWithoutSupport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Brotli(1))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "plain body") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Body.String() != "plain body" {
		t.Fatalf("body = %q", w.Body.String())
	}
}
