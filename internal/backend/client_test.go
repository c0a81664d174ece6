package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/retriever-essentials/pantry-web/internal/shared"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func TestGetAttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer held-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]int{"value": 42})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens("held-token"))
	var out map[string]int
	require.NoError(t, client.Get(context.Background(), "/api/items", &out))
	require.Equal(t, 42, out["value"])
}

func TestGetWithoutTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]int{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens(""))
	var out []int
	require.NoError(t, client.Get(context.Background(), "/api/items", &out))
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Get(context.Background(), "/api/items/99", &struct{}{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestValidationMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]string{"Item name is required.", "Item limit must be greater than or equal to 1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Post(context.Background(), "/api/items", map[string]string{}, nil)
	require.Error(t, err)

	apiErr, ok := IsValidation(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Messages, 2)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Get(context.Background(), "/api/items", &struct{}{})
	require.ErrorIs(t, err, shared.ErrBackendUnavailable)
}
