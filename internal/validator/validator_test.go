package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type releaseRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type pageQuery struct {
	Page    int `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=100"`
}

func newContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindTranslatesFieldErrors(t *testing.T) {
	Setup()

	var req releaseRequest
	fields := Bind(newContext(http.MethodPost, "/", `{"email":"not-an-email"}`), &req)
	if fields == nil {
		t.Fatal("expected validation errors")
	}
	if msg := fields["email"]; !strings.Contains(msg, "email") {
		t.Fatalf("fields = %v, want translated message keyed by json name", fields)
	}

	if fields := Bind(newContext(http.MethodPost, "/", `{"email":"Jan@Example.com"}`), &req); fields != nil {
		t.Fatalf("valid payload rejected: %v", fields)
	}
}

func TestBindMalformedJSON(t *testing.T) {
	Setup()

	var req releaseRequest
	fields := Bind(newContext(http.MethodPost, "/", `{"email":`), &req)
	if fields["detail"] == "" {
		t.Fatalf("fields = %v, want detail", fields)
	}
}

func TestBindQuery(t *testing.T) {
	Setup()

	var q pageQuery
	if fields := BindQuery(newContext(http.MethodGet, "/?page=2&per_page=50", ""), &q); fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
	if q.Page != 2 || q.PerPage != 50 {
		t.Fatalf("q = %+v", q)
	}

	fields := BindQuery(newContext(http.MethodGet, "/?per_page=500", ""), &pageQuery{})
	if _, ok := fields["per_page"]; !ok {
		t.Fatalf("fields = %v, want per_page error", fields)
	}
}
