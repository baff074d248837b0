// Package clients holds the outbound HTTP clients for external
// collaborators: the payment gateway and the postal code lookup.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursemarket/backend/internal/models"
)

// ErrCardDeclined is returned when the gateway refuses a card charge.
// The refusal reason stays in the gateway logs; buyers only ever see a
// generic retry message.
var ErrCardDeclined = errors.New("card charge declined")

// PaymentGateway is the HTTP client for the payment provider. Invoice
// ids are opaque strings owned by the provider; settlement state is
// never stored locally.
type PaymentGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPaymentGateway creates a new payment gateway client
func NewPaymentGateway(baseURL, apiKey string) *PaymentGateway {
	return &PaymentGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PayerInfo identifies the buyer for invoice emission
type PayerInfo struct {
	Name          string `json:"name"`
	CPF           string `json:"cpfCnpj"`
	Phone         string `json:"phone,omitempty"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber"`
}

// CardInfo holds the card fields for a synchronous charge
type CardInfo struct {
	Number     string `json:"number"`
	HolderName string `json:"holderName"`
	ExpiresAt  string `json:"expiryDate"`
	CVV        string `json:"ccv"`
}

// CardChargeRequest represents a one round-trip card charge
type CardChargeRequest struct {
	BillingType       string    `json:"billingType"`
	ValueCents        int64     `json:"valueCents"`
	Installments      int       `json:"installmentCount"`
	ExternalReference string    `json:"externalReference"`
	Payer             PayerInfo `json:"payer"`
	Card              CardInfo  `json:"creditCard"`
}

// PixInvoiceRequest represents an asynchronous PIX invoice creation
type PixInvoiceRequest struct {
	BillingType       string    `json:"billingType"`
	ValueCents        int64     `json:"valueCents"`
	ExternalReference string    `json:"externalReference"`
	Payer             PayerInfo `json:"payer"`
}

// chargeResponse is the provider's payment object, reduced to the
// fields the marketplace reads
type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateCardCharge submits a card charge in one round trip. It returns
// the provider charge id on approval and ErrCardDeclined on refusal.
func (g *PaymentGateway) CreateCardCharge(ctx context.Context, req *CardChargeRequest) (string, error) {
	req.BillingType = "CREDIT_CARD"

	var resp chargeResponse
	if err := g.post(ctx, "/api/v3/payments", req, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case "CONFIRMED", "RECEIVED":
		return resp.ID, nil
	default:
		return "", ErrCardDeclined
	}
}

// CreatePixInvoice requests a PIX invoice and returns its id. The QR
// payload is fetched separately with GetPixQrCode.
func (g *PaymentGateway) CreatePixInvoice(ctx context.Context, req *PixInvoiceRequest) (string, error) {
	req.BillingType = "PIX"

	var resp chargeResponse
	if err := g.post(ctx, "/api/v3/payments", req, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", fmt.Errorf("gateway returned an empty invoice id")
	}
	return resp.ID, nil
}

// GetPixQrCode fetches the copy-paste payload and base64 QR image for
// an invoice
func (g *PaymentGateway) GetPixQrCode(ctx context.Context, invoiceID string) (*models.PixQrCodeResponse, error) {
	var resp models.PixQrCodeResponse
	if err := g.get(ctx, "/api/v3/payments/"+invoiceID+"/pixQrCode", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetInvoiceStatus fetches the provider-side status of an invoice
func (g *PaymentGateway) GetInvoiceStatus(ctx context.Context, invoiceID string) (models.InvoiceStatus, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := g.get(ctx, "/api/v3/payments/"+invoiceID+"/status", &resp); err != nil {
		return "", err
	}

	// Everything that is not settled yet is reported as pending; the
	// poll loop only distinguishes "paid" from "not paid yet"
	if resp.Status == string(models.InvoiceStatusReceived) {
		return models.InvoiceStatusReceived, nil
	}
	return models.InvoiceStatusPending, nil
}

func (g *PaymentGateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, out)
}

func (g *PaymentGateway) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}

	return g.do(req, out)
}

func (g *PaymentGateway) do(req *http.Request, out any) error {
	req.Header.Set("access_token", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded amount for the log line; the body is never
		// surfaced to the buyer
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
