package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCheckoutService is a mock implementation of CheckoutService
type mockCheckoutService struct {
	statusCalls int
}

func (m *mockCheckoutService) InstallmentOptions(ctx context.Context, courseID string) ([]models.InstallmentOption, error) {
	return []models.InstallmentOption{}, nil
}

func (m *mockCheckoutService) CardCheckout(ctx context.Context, userID string, req *models.CardCheckoutRequest) error {
	return nil
}

func (m *mockCheckoutService) PixCheckout(ctx context.Context, userID string, req *models.PixCheckoutRequest) (*models.PixCheckoutResponse, error) {
	return &models.PixCheckoutResponse{InvoiceID: "inv-1"}, nil
}

func (m *mockCheckoutService) GetPixQrCode(ctx context.Context, userID, invoiceID string) (*models.PixQrCodeResponse, error) {
	return &models.PixQrCodeResponse{}, nil
}

func (m *mockCheckoutService) GetInvoiceStatus(ctx context.Context, userID, invoiceID string) (*models.InvoiceStatusResponse, error) {
	m.statusCalls++
	return &models.InvoiceStatusResponse{InvoiceID: invoiceID, Status: models.InvoiceStatusPending}, nil
}

// stubUserResolver resolves every external id to a fixed local user
type stubUserResolver struct{}

func (s *stubUserResolver) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return &models.User{ID: "user-1", ExternalID: externalID, Role: models.RoleUser}, nil
}

func checkoutTestToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ext-user-1",
		"role": float64(models.RoleUser),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestCheckoutHandler_GetInvoiceStatus_PollCooldown(t *testing.T) {
	service := &mockCheckoutService{}
	handler := NewCheckoutHandler(service, 5*time.Second, zap.NewNop())

	r := chi.NewRouter()
	verifier := auth.NewTokenVerifier("test-secret")
	handler.RegisterRoutes(r, auth.Middleware(verifier, &stubUserResolver{}))

	token := checkoutTestToken(t, "test-secret")
	poll := func(invoiceID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/checkout/pix/"+invoiceID+"/status", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := poll("inv-1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, service.statusCalls)

	// A second poll of the same invoice inside the interval is throttled
	// before the service runs
	second := poll("inv-1")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, service.statusCalls)

	// The limit is per invoice, other invoices poll freely
	other := poll("inv-2")
	assert.Equal(t, http.StatusOK, other.Code)
	assert.Equal(t, 2, service.statusCalls)
}
