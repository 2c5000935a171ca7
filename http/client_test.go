package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/sous"
	soushttp "github.com/fwojciec/sous/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Chat(t *testing.T) {
	t.Parallel()

	t.Run("posts message and returns body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, map[string]any{"message": "Hello"}, req)

			w.Header().Set("Content-Type", "application/x-ndjson")
			_, _ = io.WriteString(w, `{"response":"Hi"}`+"\n"+`{"done":true}`)
		}))
		defer srv.Close()

		c := soushttp.NewClient(srv.URL + "/")
		body, err := c.Chat(context.Background(), sous.ChatRequest{Message: "Hello"})
		require.NoError(t, err)
		defer body.Close()

		got, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, `{"response":"Hi"}`+"\n"+`{"done":true}`, string(got))
	})

	t.Run("non-2xx is a status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "No message provided.", http.StatusBadRequest)
		}))
		defer srv.Close()

		c := soushttp.NewClient(srv.URL)
		_, err := c.Chat(context.Background(), sous.ChatRequest{Message: "x"})
		var statusErr *sous.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.Code)
		assert.Equal(t, "No message provided.", statusErr.Body)
		assert.Equal(t, "HTTP error: status 400: No message provided.", err.Error())
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := soushttp.NewClient(url)
		_, err := c.Chat(context.Background(), sous.ChatRequest{Message: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http:")
	})

	t.Run("custom http client", func(t *testing.T) {
		t.Parallel()
		called := false
		hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(http.NoBody),
				Header:     make(http.Header),
			}, nil
		})}

		c := soushttp.NewClient("http://example.invalid", soushttp.WithHTTPClient(hc))
		body, err := c.Chat(context.Background(), sous.ChatRequest{Message: "x"})
		require.NoError(t, err)
		require.NoError(t, body.Close())
		assert.True(t, called)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
