package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	orderID string
	calls   int
}

func (g *stubGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	g.calls++
	return g.orderID, nil
}

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newPaymentEnv(t *testing.T) (*testEnv, PaymentService, *stubGateway, *model.User, *model.Booking) {
	t.Helper()
	t.Setenv("RAZORPAY_KEY_SECRET", "test-secret")

	env := newTestEnv(t)
	ctx := context.Background()

	user := env.seedUser(t, "payer@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	agency.CylinderPrice = decimal.NewFromInt(900)
	require.NoError(t, env.db.Save(agency).Error)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodOnline,
	})
	require.NoError(t, err)

	gateway := &stubGateway{orderID: "order_test_123"}
	payments := NewPaymentService(env.payments, env.bookings, env.agencies, env.logs, env.txManager, gateway, nil)
	return env, payments, gateway, user, booking
}

func TestPaymentCreateOrder(t *testing.T) {
	env, payments, gateway, user, booking := newPaymentEnv(t)
	ctx := context.Background()

	order, err := payments.CreateOrder(ctx, booking.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, "order_test_123", order.OrderID)
	require.True(t, order.Amount.Equal(decimal.NewFromInt(900)))
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, 1, gateway.calls)

	stored, err := env.payments.GetByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.GatewayPaymentPending, stored.Status)

	var reloaded model.Booking
	require.NoError(t, env.db.First(&reloaded, "id = ?", booking.ID).Error)
	require.Equal(t, model.PaymentStatusProcessing, reloaded.PaymentStatus)

	// One payment per booking.
	_, err = payments.CreateOrder(ctx, booking.ID, user.ID)
	require.ErrorIs(t, err, ErrPaymentExists)
}

func TestPaymentCreateOrderGuards(t *testing.T) {
	env, payments, _, user, _ := newPaymentEnv(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin@example.com", 0)
	var agency model.Agency
	require.NoError(t, env.db.First(&agency).Error)

	codBooking := model.Booking{
		UserID:        user.ID,
		AgencyID:      agency.ID,
		Status:        model.BookingPending,
		PaymentMethod: model.PaymentMethodCOD,
	}
	require.NoError(t, env.db.Create(&codBooking).Error)

	_, err := payments.CreateOrder(ctx, codBooking.ID, user.ID)
	require.ErrorIs(t, err, ErrNotOnlineMethod)

	// Only the booking owner may pay for it.
	_, err = payments.CreateOrder(ctx, codBooking.ID, admin.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPaymentVerify(t *testing.T) {
	env, payments, _, user, booking := newPaymentEnv(t)
	ctx := context.Background()

	_, err := payments.CreateOrder(ctx, booking.ID, user.ID)
	require.NoError(t, err)

	sig := signFor("test-secret", "order_test_123", "pay_abc")
	payment, err := payments.Verify(ctx, user.ID, VerifyPaymentRequest{
		RazorpayOrderID:   "order_test_123",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: sig,
	})
	require.NoError(t, err)
	require.Equal(t, model.GatewayPaymentCompleted, payment.Status)
	require.Equal(t, "pay_abc", payment.RazorpayPaymentID)

	var reloaded model.Booking
	require.NoError(t, env.db.First(&reloaded, "id = ?", booking.ID).Error)
	require.Equal(t, model.PaymentStatusCompleted, reloaded.PaymentStatus)

	require.EqualValues(t, 1, env.countLogs(t, model.ActionPaymentVerify))
}

func TestPaymentVerifyBadSignature(t *testing.T) {
	env, payments, _, user, booking := newPaymentEnv(t)
	ctx := context.Background()

	_, err := payments.CreateOrder(ctx, booking.ID, user.ID)
	require.NoError(t, err)

	_, err = payments.Verify(ctx, user.ID, VerifyPaymentRequest{
		RazorpayOrderID:   "order_test_123",
		RazorpayPaymentID: "pay_abc",
		RazorpaySignature: "deadbeef",
	})
	require.ErrorIs(t, err, ErrBadSignature)

	stored, err := env.payments.GetByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.GatewayPaymentPending, stored.Status)
}

func TestPaymentFailure(t *testing.T) {
	env, payments, _, user, booking := newPaymentEnv(t)
	ctx := context.Background()

	_, err := payments.CreateOrder(ctx, booking.ID, user.ID)
	require.NoError(t, err)

	err = payments.Fail(ctx, user.ID, FailPaymentRequest{
		RazorpayOrderID: "order_test_123",
		Reason:          "card declined",
	})
	require.NoError(t, err)

	stored, err := env.payments.GetByBookingID(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, model.GatewayPaymentFailed, stored.Status)
	require.Equal(t, "card declined", stored.FailureReason)

	var reloaded model.Booking
	require.NoError(t, env.db.First(&reloaded, "id = ?", booking.ID).Error)
	require.Equal(t, model.PaymentStatusFailed, reloaded.PaymentStatus)
}
