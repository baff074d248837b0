package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coursemarket/backend/internal/auth"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// CheckoutService is the interface that wraps methods for checkout
// business logic
type CheckoutService interface {
	// InstallmentOptions computes the installment schedule for a course
	//
	// "courseID" parameter is used to identify the course.
	//
	// If the course is missing, the error will be returned together with
	// "nil" value.
	InstallmentOptions(ctx context.Context, courseID string) ([]models.InstallmentOption, error)
	// CardCheckout runs the synchronous card purchase flow
	//
	// "userID" parameter is used to identify the buyer.
	// "req" parameter carries the payer and card data.
	//
	// On success the buyer has access to the course. A duplicate
	// purchase attempt returns a conflict error before any charge.
	CardCheckout(ctx context.Context, userID string, req *models.CardCheckoutRequest) error
	// PixCheckout creates a PIX invoice for the course
	PixCheckout(ctx context.Context, userID string, req *models.PixCheckoutRequest) (*models.PixCheckoutResponse, error)
	// GetPixQrCode fetches the QR payload and image for an invoice owned
	// by the caller
	GetPixQrCode(ctx context.Context, userID, invoiceID string) (*models.PixQrCodeResponse, error)
	// GetInvoiceStatus polls the invoice status and grants access once
	// settlement is reported
	GetInvoiceStatus(ctx context.Context, userID, invoiceID string) (*models.InvoiceStatusResponse, error)
}

// CheckoutHandler handles checkout HTTP requests
type CheckoutHandler struct {
	BaseHandler
	service      CheckoutService
	pollInterval time.Duration
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service CheckoutService, pollInterval time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		service:      service,
		pollInterval: pollInterval,
	}
}

// RegisterRoutes registers all checkout handler routes. The status
// route is rate limited per invoice so each pending invoice is polled
// at most once per interval no matter how many tabs the buyer opens.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/courses/{courseId}/installments", h.GetInstallmentOptions)

	r.Route("/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/card", h.CardCheckout)
		r.Post("/pix", h.PixCheckout)
		r.Get("/pix/{invoiceId}/qrcode", h.GetPixQrCode)
		r.With(httprate.Limit(
			1,
			h.pollInterval,
			httprate.WithKeyFuncs(invoiceKey),
		)).Get("/pix/{invoiceId}/status", h.GetInvoiceStatus)
	})
}

// GetInstallmentOptions handles GET /api/v1/courses/{courseId}/installments
// @Summary Get installment options
// @Description Get the selectable installment schedule for a course amount.
// @Tags checkout
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {array} models.InstallmentOption "Installment options"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/courses/{courseId}/installments [get]
func (h *CheckoutHandler) GetInstallmentOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.InstallmentOptions(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, options)
}

// CardCheckout handles POST /api/v1/checkout/card
// @Summary Purchase a course with a credit card
// @Description Charge the card synchronously and grant course access. Requires authentication.
// @Tags checkout
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CardCheckoutRequest true "Payer and card data"
// @Success 204 "No Content - access granted"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Conflict - course already purchased"
// @Failure 502 {object} map[string]string "Payment was not approved"
// @Router /api/v1/checkout/card [post]
func (h *CheckoutHandler) CardCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CardCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.CardCheckout(r.Context(), userID, &req); err != nil {
		h.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PixCheckout handles POST /api/v1/checkout/pix
// @Summary Start a PIX purchase
// @Description Create a PIX invoice for the course. The client then fetches the QR code and polls the invoice status. Requires authentication.
// @Tags checkout
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.PixCheckoutRequest true "Payer data"
// @Success 201 {object} models.PixCheckoutResponse "Created invoice"
// @Failure 400 {object} map[string]string "Bad request - validation error"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Conflict - course already purchased"
// @Failure 502 {object} map[string]string "Invoice creation failed"
// @Router /api/v1/checkout/pix [post]
func (h *CheckoutHandler) PixCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.PixCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.service.PixCheckout(r.Context(), userID, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, invoice)
}

// GetPixQrCode handles GET /api/v1/checkout/pix/{invoiceId}/qrcode
// @Summary Get the PIX QR code
// @Description Get the copy-paste payload and base64 image of a PIX invoice. Only the invoice owner can fetch it. Requires authentication.
// @Tags checkout
// @Produce json
// @Security ApiKeyAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} models.PixQrCodeResponse "QR code"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 502 {object} map[string]string "QR code fetch failed"
// @Router /api/v1/checkout/pix/{invoiceId}/qrcode [get]
func (h *CheckoutHandler) GetPixQrCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	qr, err := h.service.GetPixQrCode(r.Context(), userID, chi.URLParam(r, "invoiceId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, qr)
}

// GetInvoiceStatus handles GET /api/v1/checkout/pix/{invoiceId}/status
// @Summary Poll the PIX invoice status
// @Description Get the settlement status of a PIX invoice. Access is granted on the poll that first observes settlement. Rate limited per invoice. Requires authentication.
// @Tags checkout
// @Produce json
// @Security ApiKeyAuth
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} models.InvoiceStatusResponse "Invoice status"
// @Failure 401 {object} map[string]string "Unauthorized - authentication required"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 429 {object} map[string]string "Too many polls"
// @Failure 502 {object} map[string]string "Status fetch failed"
// @Router /api/v1/checkout/pix/{invoiceId}/status [get]
func (h *CheckoutHandler) GetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.service.GetInvoiceStatus(r.Context(), userID, chi.URLParam(r, "invoiceId"))
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// invoiceKey keys the poll rate limit by invoice id
func invoiceKey(r *http.Request) (string, error) {
	return chi.URLParam(r, "invoiceId"), nil
}
