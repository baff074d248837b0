package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coursemarket/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentGateway_CreateCardCharge(t *testing.T) {
	tests := []struct {
		name          string
		responseBody  map[string]any
		statusCode    int
		expectedID    string
		expectedError error
	}{
		{
			name:         "confirmed charge",
			responseBody: map[string]any{"id": "ch-1", "status": "CONFIRMED"},
			statusCode:   http.StatusOK,
			expectedID:   "ch-1",
		},
		{
			name:         "received charge",
			responseBody: map[string]any{"id": "ch-2", "status": "RECEIVED"},
			statusCode:   http.StatusOK,
			expectedID:   "ch-2",
		},
		{
			name:          "refused charge maps to ErrCardDeclined",
			responseBody:  map[string]any{"id": "ch-3", "status": "REFUSED"},
			statusCode:    http.StatusOK,
			expectedError: ErrCardDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v3/payments", r.URL.Path)
				assert.Equal(t, "secret", r.Header.Get("access_token"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "CREDIT_CARD", body["billingType"])

				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer srv.Close()

			gateway := NewPaymentGateway(srv.URL, "secret")

			id, err := gateway.CreateCardCharge(context.Background(), &CardChargeRequest{
				ValueCents:   1000,
				Installments: 1,
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestPaymentGateway_CreateCardCharge_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	gateway := NewPaymentGateway(srv.URL, "secret")

	_, err := gateway.CreateCardCharge(context.Background(), &CardChargeRequest{ValueCents: 1000})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardDeclined)
}

func TestPaymentGateway_CreatePixInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PIX", body["billingType"])

		json.NewEncoder(w).Encode(map[string]any{"id": "inv-1", "status": "PENDING"})
	}))
	defer srv.Close()

	gateway := NewPaymentGateway(srv.URL, "secret")

	id, err := gateway.CreatePixInvoice(context.Background(), &PixInvoiceRequest{ValueCents: 1000})

	assert.NoError(t, err)
	assert.Equal(t, "inv-1", id)
}

func TestPaymentGateway_GetPixQrCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/payments/inv-1/pixQrCode", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"payload":      "pix-copy-paste",
			"encodedImage": "base64-image",
		})
	}))
	defer srv.Close()

	gateway := NewPaymentGateway(srv.URL, "secret")

	qr, err := gateway.GetPixQrCode(context.Background(), "inv-1")

	require.NoError(t, err)
	assert.Equal(t, "pix-copy-paste", qr.Payload)
	assert.Equal(t, "base64-image", qr.EncodedImage)
}

func TestPaymentGateway_GetInvoiceStatus(t *testing.T) {
	tests := []struct {
		name           string
		gatewayStatus  string
		expectedStatus models.InvoiceStatus
	}{
		{
			name:           "settled invoice",
			gatewayStatus:  "RECEIVED",
			expectedStatus: models.InvoiceStatusReceived,
		},
		{
			name:           "pending invoice",
			gatewayStatus:  "PENDING",
			expectedStatus: models.InvoiceStatusPending,
		},
		{
			name:           "unknown status reads as pending",
			gatewayStatus:  "OVERDUE",
			expectedStatus: models.InvoiceStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v3/payments/inv-1/status", r.URL.Path)
				json.NewEncoder(w).Encode(map[string]any{"status": tt.gatewayStatus})
			}))
			defer srv.Close()

			gateway := NewPaymentGateway(srv.URL, "secret")

			status, err := gateway.GetInvoiceStatus(context.Background(), "inv-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}
