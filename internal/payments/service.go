package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/internal/cart"
	"github.com/shopkart-labs/shopkart-backend/internal/invoices"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartResolver interface {
	Resolve(ctx context.Context, owner cart.Owner) (*models.Cart, error)
}

type gateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

type invoiceGenerator interface {
	Generate(ctx context.Context, invoice invoices.Invoice) (string, error)
}

type receiptMailer interface {
	SendReceiptEmail(ctx context.Context, to, name, invoicePath string) error
}

// Service exposes the checkout payment flow.
type Service interface {
	Initiate(ctx context.Context, owner cart.Owner) (*InitiateResult, error)
	Verify(ctx context.Context, owner cart.Owner, input VerifyInput) (*PaymentDTO, error)
	Get(ctx context.Context, owner cart.Owner, paymentID uuid.UUID) (*PaymentDTO, error)
	InvoicePath(ctx context.Context, owner cart.Owner, paymentID uuid.UUID) (string, error)
}

type service struct {
	repo     PaymentStore
	tx       txRunner
	carts    cartResolver
	gateway  gateway
	invoices invoiceGenerator
	mailer   receiptMailer
	logger   *logger.Logger
}

// NewService builds the payment service backed by the provided stack.
func NewService(
	repo PaymentStore,
	tx txRunner,
	carts cartResolver,
	gw gateway,
	gen invoiceGenerator,
	mailer receiptMailer,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart resolver required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		carts:    carts,
		gateway:  gw,
		invoices: gen,
		mailer:   mailer,
		logger:   logg,
	}, nil
}

// Initiate prepares a gateway order for the owner's cart. Re-initiating an
// unpaid checkout reuses the payment row and refreshes the amount and the
// gateway order reference.
func (s *service) Initiate(ctx context.Context, owner cart.Owner) (*InitiateResult, error) {
	current, err := s.carts.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	if cart.ItemCount(current) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart has no items")
	}
	total := cart.Total(current)
	if total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidAmount, "payable amount must be positive")
	}

	payment, err := s.repo.FindByCartID(ctx, current.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment != nil && payment.Status == enums.PaymentStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is already paid")
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
		AmountPaise: total,
		Receipt:     current.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	orderID := order.ID
	if payment == nil {
		payment = &models.Payment{
			CartID:         current.ID,
			GatewayOrderID: &orderID,
			AmountPaise:    total,
			Currency:       enums.CurrencyINR,
			Status:         enums.PaymentStatusCreated,
		}
		if _, err := s.repo.Create(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
	} else {
		payment.GatewayOrderID = &orderID
		payment.AmountPaise = total
		payment.GatewayPaymentID = nil
		payment.GatewaySignature = nil
		if _, err := s.repo.Update(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh payment")
		}
	}

	return &InitiateResult{
		PaymentID:      payment.ID,
		GatewayOrderID: orderID,
		GatewayKeyID:   s.gateway.KeyID(),
		AmountPaise:    total,
		Amount:         ToPaymentDTO(payment).Amount,
		Currency:       s.gateway.Currency(),
	}, nil
}

// Verify checks the gateway callback signature and, when valid, finalizes
// the payment and closes the cart in one transaction. A bad signature fails
// closed: nothing is written.
func (s *service) Verify(ctx context.Context, owner cart.Owner, input VerifyInput) (*PaymentDTO, error) {
	orderID := strings.TrimSpace(input.GatewayOrderID)
	gatewayPaymentID := strings.TrimSpace(input.GatewayPaymentID)
	signature := strings.TrimSpace(input.Signature)
	if orderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}

	payment, err := s.repo.FindByGatewayOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	if err := s.checkOwnership(owner, payment); err != nil {
		return nil, err
	}

	if payment.Status == enums.PaymentStatusSuccess {
		// idempotent: the callback may be delivered more than once
		return ToPaymentDTO(payment), nil
	}
	if !payment.Status.CanTransitionTo(enums.PaymentStatusSuccess) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment cannot be finalized from its current status")
	}

	if !s.gateway.VerifySignature(orderID, gatewayPaymentID, signature) {
		return nil, pkgerrors.New(pkgerrors.CodeSignatureInvalid, "payment signature verification failed")
	}

	payment.GatewayPaymentID = &gatewayPaymentID
	payment.GatewaySignature = &signature
	payment.Status = enums.PaymentStatusSuccess

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, payment); err != nil {
			return err
		}
		return txRepo.MarkCartPaid(ctx, payment.CartID)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize payment")
	}

	s.runPostSuccess(ctx, payment)

	return ToPaymentDTO(payment), nil
}

// Get returns the payment detail for the success page.
func (s *service) Get(ctx context.Context, owner cart.Owner, paymentID uuid.UUID) (*PaymentDTO, error) {
	payment, err := s.ownedPayment(ctx, owner, paymentID)
	if err != nil {
		return nil, err
	}
	return ToPaymentDTO(payment), nil
}

// InvoicePath returns the PDF location for a successful payment.
func (s *service) InvoicePath(ctx context.Context, owner cart.Owner, paymentID uuid.UUID) (string, error) {
	payment, err := s.ownedPayment(ctx, owner, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Status != enums.PaymentStatusSuccess {
		return "", pkgerrors.New(pkgerrors.CodeConflict, "payment is not successful")
	}
	if payment.InvoicePath == nil || *payment.InvoicePath == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "invoice not available")
	}
	return *payment.InvoicePath, nil
}

func (s *service) ownedPayment(ctx context.Context, owner cart.Owner, paymentID uuid.UUID) (*models.Payment, error) {
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if err := s.checkOwnership(owner, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) checkOwnership(owner cart.Owner, payment *models.Payment) error {
	if !owner.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if payment.Cart == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "payment has no cart loaded")
	}
	if !ownerOwns(owner, payment.Cart) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another cart")
	}
	return nil
}

func ownerOwns(owner cart.Owner, c *models.Cart) bool {
	if owner.UserID != nil && *owner.UserID != uuid.Nil {
		return c.OwnedByUser(*owner.UserID)
	}
	return c.OwnedBySession(owner.SessionToken)
}

// runPostSuccess performs the best-effort side effects after a finalized
// payment: invoice PDF and receipt email. Failures are aggregated and logged,
// never surfaced; the payment is already committed.
func (s *service) runPostSuccess(ctx context.Context, payment *models.Payment) {
	var errs error

	if s.invoices != nil {
		path, err := s.invoices.Generate(ctx, s.buildInvoice(payment))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("generate invoice: %w", err))
		} else {
			payment.InvoicePath = &path
			if _, err := s.repo.Update(ctx, payment); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("attach invoice path: %w", err))
			}
		}
	}

	if s.mailer != nil && payment.Cart != nil && payment.Cart.User != nil {
		user := payment.Cart.User
		path := ""
		if payment.InvoicePath != nil {
			path = *payment.InvoicePath
		}
		if err := s.mailer.SendReceiptEmail(ctx, user.Email, user.FullName(), path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("send receipt email: %w", err))
		}
	}

	if errs != nil {
		ctx = s.logger.WithField(ctx, "payment_id", payment.ID.String())
		s.logger.Error(ctx, "post-payment side effects", errs)
	}
}

func (s *service) buildInvoice(payment *models.Payment) invoices.Invoice {
	invoice := invoices.Invoice{
		Number:     payment.ID.String()[:8],
		IssuedAt:   payment.UpdatedAt,
		TotalPaise: payment.AmountPaise,
	}

	c := payment.Cart
	if c == nil {
		return invoice
	}

	if c.User != nil {
		invoice.CustomerName = c.User.FullName()
		invoice.CustomerEmail = c.User.Email
	} else {
		invoice.CustomerName = "Guest"
	}

	subtotal := cart.Subtotal(c)
	invoice.SubtotalPaise = subtotal
	invoice.DiscountPaise = cart.DiscountAmount(c.Coupon, subtotal)
	if c.Coupon != nil {
		invoice.CouponCode = c.Coupon.Code
	}

	for i := range c.Items {
		item := &c.Items[i]
		description := "Unavailable item"
		if item.Product != nil {
			description = item.Product.Name
			var opts []string
			if item.SizeVariant != nil {
				opts = append(opts, item.SizeVariant.Label)
			}
			if item.ColorVariant != nil {
				opts = append(opts, item.ColorVariant.Label)
			}
			if len(opts) > 0 {
				description = fmt.Sprintf("%s (%s)", description, strings.Join(opts, ", "))
			}
		}
		invoice.Lines = append(invoice.Lines, invoices.Line{
			Description: description,
			Quantity:    item.Quantity,
			UnitPaise:   cart.ItemUnitPrice(item),
			TotalPaise:  cart.ItemLinePrice(item),
		})
	}

	return invoice
}
