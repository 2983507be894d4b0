package classify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeminiClient(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "application/json") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"Severity\":\"Low\"}"}]}}]}`)
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "g-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := c.CompleteWithSystem(context.Background(), "sys", "user")
	require.NoError(t, err)
	require.Equal(t, `{"Severity":"Low"}`, out)
	require.Contains(t, path, DefaultGeminiModel+":generateContent")
}

func TestGeminiClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"key rejected","status":"PERMISSION_DENIED"}}`)
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "g-key", Model: "gemini-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	_, err = c.CompleteWithSystem(context.Background(), "sys", "user")
	require.Error(t, err)
}
