package models

// InvoiceStatus represents the gateway-side status of a PIX invoice.
// The system never owns settlement state; these values mirror what the
// gateway reports.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "PENDING"
	InvoiceStatusReceived InvoiceStatus = "RECEIVED"
)

// CardCheckoutRequest represents a credit card checkout submission
type CardCheckoutRequest struct {
	CourseID      string `json:"courseId"`
	Name          string `json:"name"`
	CPF           string `json:"cpf"`
	Phone         string `json:"phone"`
	CardNumber    string `json:"cardNumber"`
	CardValidThru string `json:"cardValidThru"`
	CardCVV       string `json:"cardCvv"`
	Installments  int    `json:"installments"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
}

// PixCheckoutRequest represents a PIX checkout submission. The payer
// fields are used for invoice emission only.
type PixCheckoutRequest struct {
	CourseID      string `json:"courseId"`
	Name          string `json:"name"`
	CPF           string `json:"cpf"`
	AddressNumber string `json:"addressNumber"`
	PostalCode    string `json:"postalCode"`
}

// PixCheckoutResponse carries the gateway invoice id for the QR and
// status steps
type PixCheckoutResponse struct {
	InvoiceID string `json:"invoiceId"`
}

// PixQrCodeResponse carries the copy-paste payload and the base64
// encoded QR image fetched from the gateway
type PixQrCodeResponse struct {
	Payload      string `json:"payload"`
	EncodedImage string `json:"encodedImage"`
}

// InvoiceStatusResponse reports the gateway status of an invoice
type InvoiceStatusResponse struct {
	InvoiceID string        `json:"invoiceId"`
	Status    InvoiceStatus `json:"status"`
}

// InstallmentOption represents one entry of the installment schedule
// for a course amount, computed server-side
type InstallmentOption struct {
	Installments     int   `json:"installments"`
	InstallmentCents int64 `json:"installmentValueCents"`
	TotalCents       int64 `json:"totalCents"`
	HasInterest      bool  `json:"hasInterest"`
}
