package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursemarket/backend/internal/apperrors"
	"github.com/coursemarket/backend/internal/clients"
	"github.com/coursemarket/backend/internal/models"
	"github.com/coursemarket/backend/internal/repositories"
	"go.uber.org/zap"
)

// Installment schedule. Up to interestFreeInstallments the buyer pays
// the plain amount; beyond that a flat monthly interest is added. The
// schedule is computed here and validated against whatever the client
// submitted; the client value never decides the charged amount.
const (
	maxInstallments          = 12
	interestFreeInstallments = 3
	monthlyInterestBps       = 199 // 1.99% per month, in basis points
)

// CheckoutCourseRepository defines the course lookups checkout needs
type CheckoutCourseRepository interface {
	// GetByID retrieves a course by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any.
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

// PurchaseRepository defines methods for purchase data access
type PurchaseRepository interface {
	// Create records a purchase. It returns
	// repositories.ErrAlreadyPurchased when a row for the
	// (user, course) pair already exists.
	//
	// "ctx" is the context for the request.
	// "purchase" is the purchase to record.
	//
	// Returns an error if any.
	Create(ctx context.Context, purchase *models.CoursePurchase) error
	// Exists checks if the user already purchased the course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the buyer.
	// "courseID" is the ID of the course.
	//
	// Returns a boolean and an error if any.
	Exists(ctx context.Context, userID, courseID string) (bool, error)
}

// PixInvoiceRepository defines methods for pix invoice mapping access
type PixInvoiceRepository interface {
	// Create records the invoice-to-buyer mapping
	//
	// "ctx" is the context for the request.
	// "invoice" is the mapping to record.
	//
	// Returns an error if any.
	Create(ctx context.Context, invoice *models.PixInvoice) error
	// GetByID retrieves a mapping by the gateway invoice id
	//
	// "ctx" is the context for the request.
	// "invoiceID" is the gateway invoice id.
	//
	// Returns the mapping and an error if any.
	GetByID(ctx context.Context, invoiceID string) (*models.PixInvoice, error)
}

// PaymentGateway defines the payment provider operations checkout
// consumes
type PaymentGateway interface {
	// CreateCardCharge submits a synchronous card charge and returns
	// the provider charge id, or clients.ErrCardDeclined on refusal
	CreateCardCharge(ctx context.Context, req *clients.CardChargeRequest) (string, error)
	// CreatePixInvoice requests a PIX invoice and returns its id
	CreatePixInvoice(ctx context.Context, req *clients.PixInvoiceRequest) (string, error)
	// GetPixQrCode fetches the QR payload and image for an invoice
	GetPixQrCode(ctx context.Context, invoiceID string) (*models.PixQrCodeResponse, error)
	// GetInvoiceStatus fetches the provider-side status of an invoice
	GetInvoiceStatus(ctx context.Context, invoiceID string) (models.InvoiceStatus, error)
}

// AddressLookup defines the postal code validation dependency
type AddressLookup interface {
	// Lookup resolves a postal code, returning
	// clients.ErrPostalCodeNotFound for unknown codes
	Lookup(ctx context.Context, postalCode string) (*clients.Address, error)
}

type checkoutService struct {
	courseRepo   CheckoutCourseRepository
	purchaseRepo PurchaseRepository
	pixRepo      PixInvoiceRepository
	gateway      PaymentGateway
	address      AddressLookup
	logger       *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	courseRepo CheckoutCourseRepository,
	purchaseRepo PurchaseRepository,
	pixRepo PixInvoiceRepository,
	gateway PaymentGateway,
	address AddressLookup,
	logger *zap.Logger,
) *checkoutService {
	return &checkoutService{
		courseRepo:   courseRepo,
		purchaseRepo: purchaseRepo,
		pixRepo:      pixRepo,
		gateway:      gateway,
		address:      address,
		logger:       logger,
	}
}

// InstallmentOptions computes the installment schedule for a course
// amount
func (s *checkoutService) InstallmentOptions(ctx context.Context, courseID string) ([]models.InstallmentOption, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	return installmentSchedule(course.CheckoutAmountCents()), nil
}

// CardCheckout runs the synchronous card flow: eligibility, postal code
// validation, server-side installment check, one gateway round trip,
// then the access grant
func (s *checkoutService) CardCheckout(ctx context.Context, userID string, req *models.CardCheckoutRequest) error {
	// Authorization is checked before anything touches the gateway
	if userID == "" {
		return apperrors.Unauthorized("authentication required")
	}

	if err := validateCardRequest(req); err != nil {
		return err
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return apperrors.NotFound("course not found")
	}

	purchased, err := s.purchaseRepo.Exists(ctx, userID, course.ID)
	if err != nil {
		return fmt.Errorf("failed to check purchase: %w", err)
	}
	if purchased {
		return apperrors.Conflict("course already purchased")
	}

	if err := s.validatePostalCode(ctx, req.PostalCode); err != nil {
		return err
	}

	amount := course.CheckoutAmountCents()

	// The schedule is recomputed here; a tampered installment count is
	// rejected instead of deciding the charged amount
	if req.Installments < 1 || req.Installments > maxInstallments {
		return apperrors.Validation("installments", "invalid installment count")
	}

	chargeID, err := s.gateway.CreateCardCharge(ctx, &clients.CardChargeRequest{
		ValueCents:        totalWithInterestCents(amount, req.Installments),
		Installments:      req.Installments,
		ExternalReference: course.ID,
		Payer: clients.PayerInfo{
			Name:          req.Name,
			CPF:           req.CPF,
			Phone:         req.Phone,
			PostalCode:    req.PostalCode,
			AddressNumber: req.AddressNumber,
		},
		Card: clients.CardInfo{
			Number:     req.CardNumber,
			HolderName: req.Name,
			ExpiresAt:  req.CardValidThru,
			CVV:        req.CardCVV,
		},
	})
	if err != nil {
		if errors.Is(err, clients.ErrCardDeclined) {
			// The provider reason stays in the logs; the buyer sees a
			// generic retry message
			s.logger.Warn("card charge declined",
				zap.String("user_id", userID),
				zap.String("course_id", course.ID),
			)
			return apperrors.External("payment was not approved", err)
		}
		return apperrors.External("payment processing failed", err)
	}

	return s.grantAccess(ctx, &models.CoursePurchase{
		UserID:        userID,
		CourseID:      course.ID,
		AmountCents:   amount,
		PaymentMethod: models.PaymentMethodCreditCard,
		InvoiceID:     chargeID,
	})
}

// PixCheckout runs the asynchronous flow up to invoice creation. The
// QR payload and settlement are handled by GetPixQrCode and
// GetInvoiceStatus.
func (s *checkoutService) PixCheckout(ctx context.Context, userID string, req *models.PixCheckoutRequest) (*models.PixCheckoutResponse, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	if err := validatePixRequest(req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	purchased, err := s.purchaseRepo.Exists(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}
	if purchased {
		return nil, apperrors.Conflict("course already purchased")
	}

	if err := s.validatePostalCode(ctx, req.PostalCode); err != nil {
		return nil, err
	}

	amount := course.CheckoutAmountCents()

	invoiceID, err := s.gateway.CreatePixInvoice(ctx, &clients.PixInvoiceRequest{
		ValueCents:        amount,
		ExternalReference: course.ID,
		Payer: clients.PayerInfo{
			Name:          req.Name,
			CPF:           req.CPF,
			PostalCode:    req.PostalCode,
			AddressNumber: req.AddressNumber,
		},
	})
	if err != nil {
		return nil, apperrors.External("failed to create invoice", err)
	}

	if err := s.pixRepo.Create(ctx, &models.PixInvoice{
		InvoiceID:   invoiceID,
		UserID:      userID,
		CourseID:    course.ID,
		AmountCents: amount,
	}); err != nil {
		// The invoice exists at the gateway but cannot be tracked; the
		// buyer has to start over with a fresh invoice
		s.logger.Error("failed to record pix invoice",
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return nil, apperrors.External("failed to create invoice", err)
	}

	return &models.PixCheckoutResponse{InvoiceID: invoiceID}, nil
}

// GetPixQrCode fetches the QR payload and image for an invoice owned by
// the caller
func (s *checkoutService) GetPixQrCode(ctx context.Context, userID, invoiceID string) (*models.PixQrCodeResponse, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	if _, err := s.ownedInvoice(ctx, userID, invoiceID); err != nil {
		return nil, err
	}

	qr, err := s.gateway.GetPixQrCode(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.External("failed to fetch QR code", err)
	}

	return qr, nil
}

// GetInvoiceStatus polls the gateway for an invoice owned by the caller
// and grants access once settlement is reported. Granting is idempotent,
// so polling twice after settlement stays safe.
func (s *checkoutService) GetInvoiceStatus(ctx context.Context, userID, invoiceID string) (*models.InvoiceStatusResponse, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	invoice, err := s.ownedInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.GetInvoiceStatus(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.External("failed to fetch invoice status", err)
	}

	if status == models.InvoiceStatusReceived {
		err := s.grantAccess(ctx, &models.CoursePurchase{
			UserID:        invoice.UserID,
			CourseID:      invoice.CourseID,
			AmountCents:   invoice.AmountCents,
			PaymentMethod: models.PaymentMethodPix,
			InvoiceID:     invoice.InvoiceID,
		})
		if err != nil {
			return nil, err
		}
	}

	return &models.InvoiceStatusResponse{InvoiceID: invoiceID, Status: status}, nil
}

// grantAccess records the purchase. A duplicate grant for the same
// (user, course) pair is reported as success: the buyer already has
// access, which is the outcome the caller asked for.
func (s *checkoutService) grantAccess(ctx context.Context, purchase *models.CoursePurchase) error {
	err := s.purchaseRepo.Create(ctx, purchase)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyPurchased) {
			s.logger.Info("duplicate access grant ignored",
				zap.String("user_id", purchase.UserID),
				zap.String("course_id", purchase.CourseID),
			)
			return nil
		}
		return fmt.Errorf("failed to grant access: %w", err)
	}

	s.logger.Info("course access granted",
		zap.String("user_id", purchase.UserID),
		zap.String("course_id", purchase.CourseID),
		zap.String("payment_method", string(purchase.PaymentMethod)),
	)
	return nil
}

// ownedInvoice loads the invoice mapping and hides invoices of other
// buyers behind a not-found error
func (s *checkoutService) ownedInvoice(ctx context.Context, userID, invoiceID string) (*models.PixInvoice, error) {
	invoice, err := s.pixRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.NotFound("invoice not found")
	}
	if invoice.UserID != userID {
		return nil, apperrors.NotFound("invoice not found")
	}
	return invoice, nil
}

// validatePostalCode checks the postal code against the lookup service.
// Every failure maps to a field-level error so the buyer corrects just
// that input.
func (s *checkoutService) validatePostalCode(ctx context.Context, postalCode string) error {
	_, err := s.address.Lookup(ctx, postalCode)
	if err != nil {
		if errors.Is(err, clients.ErrPostalCodeNotFound) {
			return apperrors.Validation("postalCode", "invalid postal code")
		}
		return apperrors.Validation("postalCode", "could not validate postal code")
	}
	return nil
}

// installmentSchedule builds the selectable installment options for an
// amount
func installmentSchedule(amountCents int64) []models.InstallmentOption {
	options := make([]models.InstallmentOption, 0, maxInstallments)
	for n := 1; n <= maxInstallments; n++ {
		total := totalWithInterestCents(amountCents, n)
		options = append(options, models.InstallmentOption{
			Installments:     n,
			InstallmentCents: total / int64(n),
			TotalCents:       total,
			HasInterest:      n > interestFreeInstallments,
		})
	}
	return options
}

// totalWithInterestCents returns the total charged for n installments
func totalWithInterestCents(amountCents int64, n int) int64 {
	if n <= interestFreeInstallments {
		return amountCents
	}
	interest := amountCents * monthlyInterestBps * int64(n) / 10000
	return amountCents + interest
}

// validateCardRequest checks the card form fields
func validateCardRequest(req *models.CardCheckoutRequest) error {
	if req.CourseID == "" {
		return apperrors.Validation("courseId", "course is required")
	}
	if req.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if len(digitsOf(req.CPF)) != 11 {
		return apperrors.Validation("cpf", "invalid CPF")
	}
	if req.CardNumber == "" {
		return apperrors.Validation("cardNumber", "card number is required")
	}
	if req.CardValidThru == "" {
		return apperrors.Validation("cardValidThru", "card expiry is required")
	}
	if req.CardCVV == "" {
		return apperrors.Validation("cardCvv", "card CVV is required")
	}
	if req.AddressNumber == "" {
		return apperrors.Validation("addressNumber", "address number is required")
	}
	return nil
}

// validatePixRequest checks the pix payer fields
func validatePixRequest(req *models.PixCheckoutRequest) error {
	if req.CourseID == "" {
		return apperrors.Validation("courseId", "course is required")
	}
	if req.Name == "" {
		return apperrors.Validation("name", "name is required")
	}
	if len(digitsOf(req.CPF)) != 11 {
		return apperrors.Validation("cpf", "invalid CPF")
	}
	if req.AddressNumber == "" {
		return apperrors.Validation("addressNumber", "address number is required")
	}
	return nil
}

// digitsOf strips everything but digits from a masked value
func digitsOf(s string) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	return string(digits)
}
