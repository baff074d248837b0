package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressLookup_Lookup(t *testing.T) {
	t.Run("resolves a known postal code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ws/01001000/json/", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"cep":        "01001-000",
				"logradouro": "Praça da Sé",
				"localidade": "São Paulo",
				"uf":         "SP",
			})
		}))
		defer srv.Close()

		client := NewAddressLookup(srv.URL)

		// Masked input is normalized before the request
		addr, err := client.Lookup(context.Background(), "01001-000")

		require.NoError(t, err)
		assert.Equal(t, "São Paulo", addr.City)
		assert.Equal(t, "SP", addr.State)
	})

	t.Run("unknown code is flagged in the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"erro": true})
		}))
		defer srv.Close()

		client := NewAddressLookup(srv.URL)

		_, err := client.Lookup(context.Background(), "99999999")

		assert.ErrorIs(t, err, ErrPostalCodeNotFound)
	})

	t.Run("malformed code fails before any request", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
		}))
		defer srv.Close()

		client := NewAddressLookup(srv.URL)

		_, err := client.Lookup(context.Background(), "123")

		assert.ErrorIs(t, err, ErrPostalCodeNotFound)
		assert.Zero(t, requests)
	})

	t.Run("service error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewAddressLookup(srv.URL)

		_, err := client.Lookup(context.Background(), "01001000")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrPostalCodeNotFound)
	})
}
