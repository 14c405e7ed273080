package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuotes_SingleSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/GSPC.INDX", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Empty(t, r.URL.Query().Get("s"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"GSPC.INDX","close":5321.40,"change_p":0.62}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	quotes, err := client.GetQuotes(context.Background(), []string{"GSPC.INDX"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "GSPC.INDX", quotes[0].Code)
	assert.InDelta(t, 5321.40, quotes[0].Close, 0.001)
	assert.InDelta(t, 0.62, quotes[0].ChangePercent, 0.001)
}

func TestGetQuotes_MultipleSymbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/GSPC.INDX", r.URL.Path)
		assert.Equal(t, "DJI.INDX,IXIC.INDX", r.URL.Query().Get("s"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"code":"GSPC.INDX","close":5321.40,"change_p":0.62},
			{"code":"DJI.INDX","close":39512.84,"change_p":-0.12},
			{"code":"IXIC.INDX","close":16828.67,"change_p":1.10}
		]`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))

	quotes, err := client.GetQuotes(context.Background(), []string{"GSPC.INDX", "DJI.INDX", "IXIC.INDX"})
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "DJI.INDX", quotes[1].Code)
}

func TestGetQuotes_NoSymbols(t *testing.T) {
	client := NewClient("test-token")
	_, err := client.GetQuotes(context.Background(), nil)
	assert.Error(t, err)
}

func TestGetQuotes_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid token"))
	}))
	defer server.Close()

	client := NewClient("bad-token", WithBaseURL(server.URL))

	_, err := client.GetQuotes(context.Background(), []string{"GSPC.INDX"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "invalid token")
}
