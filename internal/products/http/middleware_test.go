package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates id", incoming: ""},
		{name: "keeps caller id", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RequestIDMiddleware())

			var seen string
			r.GET("/ping", func(c *gin.Context) {
				seen = c.GetString(requestIDHeader)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(requestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if got == "" {
				t.Fatal("want request id header, got none")
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Fatalf("want request id %q, got %q", tt.incoming, got)
			}
			if seen != got {
				t.Fatalf("context id %q does not match header %q", seen, got)
			}
		})
	}
}

func TestAccessLogMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success logs info", status: http.StatusOK, wantLevel: "INFO"},
		{name: "not found logs info", status: http.StatusNotFound, wantLevel: "INFO"},
		{name: "server error logs error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RequestIDMiddleware(), AccessLogMiddleware(logger))
			r.GET("/products/:id", func(c *gin.Context) { c.Status(tt.status) })

			req := httptest.NewRequest(http.MethodGet, "/products/7", nil)
			r.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log entry: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Fatalf("want level %s, got %v", tt.wantLevel, entry["level"])
			}
			if entry["route"] != "/products/:id" {
				t.Fatalf("want route /products/:id, got %v", entry["route"])
			}
			if entry["path"] != "/products/7" {
				t.Fatalf("want path /products/7, got %v", entry["path"])
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Fatalf("want status %d, got %v", tt.status, entry["status"])
			}
			if id, _ := entry["request_id"].(string); id == "" {
				t.Fatal("want request_id in log entry")
			}
		})
	}
}
