package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	"github.com/Piyushbhatti32/gas-agency/internal/websocket"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentGateway abstracts the Razorpay order API so tests can stub it.
type PaymentGateway interface {
	CreateOrder(amountPaise int64, currency, receipt string) (orderID string, err error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway builds a gateway from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET.
func NewRazorpayGateway() PaymentGateway {
	return &razorpayGateway{
		client: razorpay.NewClient(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET")),
	}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}
	orderID, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("razorpay order create: missing order id in response")
	}
	return orderID, nil
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type FailPaymentRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id" binding:"required"`
	Reason          string `json:"reason"`
}

type OrderResponse struct {
	OrderID  string          `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	KeyID    string          `json:"key_id"`
}

type PaymentService interface {
	CreateOrder(ctx context.Context, bookingID, userID uuid.UUID) (*OrderResponse, error)
	Verify(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*model.Payment, error)
	Fail(ctx context.Context, userID uuid.UUID, req FailPaymentRequest) error
	GetByBooking(ctx context.Context, bookingID, userID uuid.UUID) (*model.Payment, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	bookings  repository.BookingRepository
	agencies  repository.AgencyRepository
	logs      repository.LogRepository
	txManager repository.TransactionManager
	gateway   PaymentGateway
	hub       *websocket.Hub
	keySecret string
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	agencies repository.AgencyRepository,
	logs repository.LogRepository,
	txManager repository.TransactionManager,
	gateway PaymentGateway,
	hub *websocket.Hub,
) PaymentService {
	return &paymentService{
		payments:  payments,
		bookings:  bookings,
		agencies:  agencies,
		logs:      logs,
		txManager: txManager,
		gateway:   gateway,
		hub:       hub,
		keySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
	}
}

// CreateOrder registers a Razorpay order for an ONLINE booking. The
// amount comes from the agency's current cylinder price.
func (s *paymentService) CreateOrder(ctx context.Context, bookingID, userID uuid.UUID) (*OrderResponse, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.PaymentMethod != model.PaymentMethodOnline {
		return nil, ErrNotOnlineMethod
	}

	if _, err := s.payments.GetByBookingID(ctx, bookingID); err == nil {
		return nil, ErrPaymentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}

	agency, err := s.agencies.GetByID(ctx, booking.AgencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, fmt.Errorf("load agency: %w", err)
	}

	amount := agency.CylinderPrice
	// Razorpay expects the amount in the currency's smallest unit.
	amountPaise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	orderID, err := s.gateway.CreateOrder(amountPaise, "INR", booking.ID.String())
	if err != nil {
		return nil, err
	}

	payment := model.Payment{
		BookingID:       booking.ID,
		RazorpayOrderID: orderID,
		Amount:          amount,
		Currency:        "INR",
		Status:          model.GatewayPaymentPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.payments.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("create payment: %w", createErr)
		}

		booking.Amount = &amount
		booking.PaymentStatus = model.PaymentStatusProcessing
		if updateErr := s.bookings.Update(txCtx, booking); updateErr != nil {
			return fmt.Errorf("update booking: %w", updateErr)
		}

		entry := model.Log{
			UserID:  &userID,
			Action:  model.ActionPaymentCreate,
			Details: fmt.Sprintf("Payment order %s created for booking %s", orderID, booking.ID),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write payment log: %w", logErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &OrderResponse{
		OrderID:  orderID,
		Amount:   amount,
		Currency: "INR",
		KeyID:    os.Getenv("RAZORPAY_KEY_ID"),
	}, nil
}

// Verify checks the Razorpay checkout signature and, on success, marks
// the gateway payment and the booking's payment status as completed.
func (s *paymentService) Verify(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*model.Payment, error) {
	payment, err := s.payments.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}

	if !s.signatureValid(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, ErrBadSignature
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		booking, findErr := s.bookings.GetByID(txCtx, payment.BookingID)
		if findErr != nil {
			return fmt.Errorf("load booking: %w", findErr)
		}
		if booking.UserID != userID {
			return ErrForbidden
		}

		payment.RazorpayPaymentID = req.RazorpayPaymentID
		payment.RazorpaySignature = req.RazorpaySignature
		payment.Status = model.GatewayPaymentCompleted
		if saveErr := s.payments.Update(txCtx, payment); saveErr != nil {
			return fmt.Errorf("update payment: %w", saveErr)
		}

		booking.PaymentStatus = model.PaymentStatusCompleted
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		entry := model.Log{
			UserID:  &userID,
			Action:  model.ActionPaymentVerify,
			Details: fmt.Sprintf("Payment %s verified for booking %s", req.RazorpayPaymentID, booking.ID),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write verify log: %w", logErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(websocket.EventPaymentCompleted, payment)
	}

	return payment, nil
}

// Fail records a checkout failure reported by the client so the booking
// shows a failed payment instead of hanging in PROCESSING.
func (s *paymentService) Fail(ctx context.Context, userID uuid.UUID, req FailPaymentRequest) error {
	payment, err := s.payments.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("load payment: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		booking, findErr := s.bookings.GetByID(txCtx, payment.BookingID)
		if findErr != nil {
			return fmt.Errorf("load booking: %w", findErr)
		}
		if booking.UserID != userID {
			return ErrForbidden
		}

		reason := req.Reason
		if reason == "" {
			reason = "Checkout was cancelled or failed"
		}

		payment.Status = model.GatewayPaymentFailed
		payment.FailureReason = reason
		if saveErr := s.payments.Update(txCtx, payment); saveErr != nil {
			return fmt.Errorf("update payment: %w", saveErr)
		}

		booking.PaymentStatus = model.PaymentStatusFailed
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		entry := model.Log{
			UserID:  &userID,
			Action:  model.ActionPaymentFailed,
			Details: fmt.Sprintf("Payment for booking %s failed: %s", booking.ID, reason),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			log.Printf("payment: failed to write failure log: %v", logErr)
		}
		return nil
	})
}

func (s *paymentService) GetByBooking(ctx context.Context, bookingID, userID uuid.UUID) (*model.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}

	payment, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return payment, nil
}

// signatureValid recomputes the checkout signature: HMAC-SHA256 over
// "<order_id>|<payment_id>" keyed with the API secret, hex encoded.
func (s *paymentService) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
