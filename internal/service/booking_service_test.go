package service

import (
	"context"
	"testing"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/model"

	"github.com/stretchr/testify/require"
)

func TestBookingCreateReservesBarrel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "create@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Equal(t, model.BookingPending, booking.Status)
	require.Equal(t, agency.ID, booking.AgencyID)

	reloaded, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 11, reloaded.BarrelsRemaining)

	require.EqualValues(t, 1, env.countLogs(t, model.ActionBookingCreate))
}

func TestBookingCreateUsesDefaultVendor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	agency := env.seedAgency(t, "default@example.com", true)
	user := env.seedUser(t, "vendor@example.com", 12)
	user.DefaultVendorID = &agency.ID
	require.NoError(t, env.db.Save(user).Error)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.Equal(t, agency.ID, booking.AgencyID)
}

func TestBookingCreateNoAgency(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "noagency@example.com", 12)

	_, err := env.booking.Create(context.Background(), CreateBookingRequest{
		UserID:        user.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.ErrorIs(t, err, ErrNoAgency)
}

func TestBookingCreateInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "broke@example.com", 0)
	agency := env.seedAgency(t, "agency@example.com", true)

	_, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// The failed create must leave no booking behind.
	var count int64
	require.NoError(t, env.db.Model(&model.Booking{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBookingCreatePendingExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "pending@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)

	req := CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	}
	_, err := env.booking.Create(ctx, req)
	require.NoError(t, err)

	_, err = env.booking.Create(ctx, req)
	require.ErrorIs(t, err, ErrPendingExists)
}

func TestBookingCreateBalanceCheckedBeforePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "order@example.com", 1)
	agency := env.seedAgency(t, "agency@example.com", true)

	req := CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	}
	_, err := env.booking.Create(ctx, req)
	require.NoError(t, err)

	// Both guards now fail; the balance error wins.
	_, err = env.booking.Create(ctx, req)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestExtraBookingBypassesQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "extra@example.com", 0)
	agency := env.seedAgency(t, "agency@example.com", true)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
		IsExtra:       true,
	})
	require.NoError(t, err)
	require.True(t, booking.IsExtra)

	reloaded, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.BarrelsRemaining)
}

func TestBookingApproveLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "approve@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	approved, err := env.booking.Approve(ctx, booking.ID, admin.ID)
	require.NoError(t, err)
	require.Equal(t, model.BookingApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	// Approval is not repeatable.
	_, err = env.booking.Approve(ctx, booking.ID, admin.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestBookingRejectRestoresBarrel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "reject@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	rejected, err := env.booking.Reject(ctx, booking.ID, admin.ID, "out of stock")
	require.NoError(t, err)
	require.Equal(t, model.BookingRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedAt)
	require.Equal(t, "out of stock", rejected.Notes)

	reloaded, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 12, reloaded.BarrelsRemaining)
}

func TestBookingRejectExtraKeepsBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "rejectextra@example.com", 3)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
		IsExtra:       true,
	})
	require.NoError(t, err)

	_, err = env.booking.Reject(ctx, booking.ID, admin.ID, "")
	require.NoError(t, err)

	reloaded, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.BarrelsRemaining)
}

func TestBookingDeliverRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "deliver@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	_, err = env.booking.Deliver(ctx, booking.ID, admin.ID, "")
	require.ErrorIs(t, err, ErrNotApproved)

	_, err = env.booking.Approve(ctx, booking.ID, admin.ID)
	require.NoError(t, err)

	delivered, err := env.booking.Deliver(ctx, booking.ID, admin.ID, "left at the gate")
	require.NoError(t, err)
	require.Equal(t, model.BookingDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
	require.Equal(t, "left at the gate", delivered.DeliveryNotes)
}

func TestBookingSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "schedule@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	slot := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	req := ScheduleBookingRequest{
		BookingID:       booking.ID.String(),
		AdminID:         admin.ID.String(),
		ScheduledFor:    slot,
		DeliveryAddress: "42 Main St",
		ContactNumber:   "9999999999",
	}

	// Scheduling only applies to approved bookings.
	_, err = env.booking.Schedule(ctx, req)
	require.ErrorIs(t, err, ErrNotApproved)

	_, err = env.booking.Approve(ctx, booking.ID, admin.ID)
	require.NoError(t, err)

	scheduled, err := env.booking.Schedule(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, scheduled.ScheduledFor)
	require.Equal(t, "42 Main St", scheduled.DeliveryAddress)
	require.Equal(t, "9999999999", scheduled.ContactNumber)
}

func TestBookingHistoryAndQueues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "history@example.com", 12)
	agency := env.seedAgency(t, "agency@example.com", true)
	admin := env.seedUser(t, "admin@example.com", 0)

	booking, err := env.booking.Create(ctx, CreateBookingRequest{
		UserID:        user.ID.String(),
		AgencyID:      agency.ID.String(),
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)
	_, err = env.booking.Approve(ctx, booking.ID, admin.ID)
	require.NoError(t, err)

	history, total, err := env.booking.HistoryForUser(ctx, user.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, history, 1)

	queue, total, err := env.booking.QueueForAgency(ctx, agency.ID, model.BookingApproved, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, queue, 1)

	empty, total, err := env.booking.QueueForAgency(ctx, agency.ID, model.BookingPending, 1, 20)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, empty)
}
