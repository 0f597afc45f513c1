package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetJSON(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [1, 2, 3]}`))
		}))
		defer server.Close()

		var out struct {
			Items []int `json:"items"`
		}
		err := NewClient().GetJSON(context.Background(), server.URL, &out)
		require.NoError(t, err)
		assert.Len(t, out.Items, 3)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer server.Close()

		client := &Client{http: &http.Client{Timeout: 50 * time.Millisecond}}
		var out map[string]any
		err := client.GetJSON(context.Background(), server.URL, &out)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [`))
		}))
		defer server.Close()

		var out map[string]any
		err := NewClient().GetJSON(context.Background(), server.URL, &out)

		var malformed *MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	})

	t.Run("non-json error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`bad gateway`))
		}))
		defer server.Close()

		var out map[string]any
		err := NewClient().GetJSON(context.Background(), server.URL, &out)

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusBadGateway, upstream.Code)
	})

	t.Run("connection refused is a transport error", func(t *testing.T) {
		var out map[string]any
		err := NewClient().GetJSON(context.Background(), "http://127.0.0.1:1", &out)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTimeout)
	})
}
