package models

import "time"

// PaymentMethod represents how a purchase was paid
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodPix        PaymentMethod = "PIX"
)

// CoursePurchase links a user to a course they bought. Its existence is
// the sole authorization signal for content access. At most one row may
// exist per (UserID, CourseID); the database enforces that.
type CoursePurchase struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	CourseID      string        `json:"courseId"`
	AmountCents   int64         `json:"amountCents"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	InvoiceID     string        `json:"invoiceId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// PixInvoice maps a gateway invoice id back to the buyer and course it
// was created for. Settlement state stays at the gateway; this row only
// lets a status poll know whom to grant access to.
type PixInvoice struct {
	InvoiceID   string    `json:"invoiceId"`
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	AmountCents int64     `json:"amountCents"`
	CreatedAt   time.Time `json:"createdAt"`
}
