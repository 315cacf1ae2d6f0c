package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Piyushbhatti32/gas-agency/internal/mailer"
	"github.com/Piyushbhatti32/gas-agency/internal/model"
	"github.com/Piyushbhatti32/gas-agency/internal/repository"
	ws "github.com/Piyushbhatti32/gas-agency/internal/websocket"
	"github.com/Piyushbhatti32/gas-agency/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateBookingRequest struct {
	// UserID is filled from the authenticated principal, never the payload.
	UserID        string `json:"-"`
	AgencyID      string `json:"agency_id"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=COD ONLINE PAYTM_QR"`
	IsExtra       bool   `json:"is_extra"`
	Notes         string `json:"notes"`
}

type ScheduleBookingRequest struct {
	BookingID       string    `json:"booking_id" binding:"required"`
	AdminID         string    `json:"-"`
	ScheduledFor    time.Time `json:"scheduled_for" binding:"required"`
	DeliveryAddress string    `json:"delivery_address"`
	ContactNumber   string    `json:"contact_number"`
}

// BookingService drives the booking lifecycle:
// PENDING -> APPROVED -> DELIVERED, or PENDING -> REJECTED. Each
// transition runs in one transaction together with its ledger update
// and audit log; emails and live events fire after commit and are
// best-effort. Admins and agencies share the same entry points, the
// acting principal is recorded in the audit trail.
type BookingService interface {
	Create(ctx context.Context, req CreateBookingRequest) (*model.Booking, error)
	Approve(ctx context.Context, bookingID, actorID uuid.UUID) (*model.Booking, error)
	Reject(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*model.Booking, error)
	Deliver(ctx context.Context, bookingID, actorID uuid.UUID, deliveryNotes string) (*model.Booking, error)
	Schedule(ctx context.Context, req ScheduleBookingRequest) (*model.Booking, error)
	HistoryForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Booking, int64, error)
	QueueForAgency(ctx context.Context, agencyID uuid.UUID, status string, page, limit int) ([]model.Booking, int64, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]model.Booking, int64, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	users     repository.UserRepository
	agencies  repository.AgencyRepository
	logs      repository.LogRepository
	ledger    LedgerService
	txManager repository.TransactionManager
	mail      mailer.Mailer
	hub       *ws.Hub // optional live event feed
}

func NewBookingService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	agencies repository.AgencyRepository,
	logs repository.LogRepository,
	ledger LedgerService,
	txManager repository.TransactionManager,
	mail mailer.Mailer,
	hub *ws.Hub,
) BookingService {
	return &bookingService{
		bookings:  bookings,
		users:     users,
		agencies:  agencies,
		logs:      logs,
		ledger:    ledger,
		txManager: txManager,
		mail:      mail,
		hub:       hub,
	}
}

func (s *bookingService) publish(eventType string, booking *model.Booking) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(eventType, map[string]interface{}{
		"booking_id": booking.ID,
		"user_id":    booking.UserID,
		"agency_id":  booking.AgencyID,
		"status":     booking.Status,
		"is_extra":   booking.IsExtra,
	})
}

// --- Implementation ---

func (s *bookingService) Create(ctx context.Context, req CreateBookingRequest) (*model.Booking, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	var booking model.Booking
	var user *model.User
	newBalance := 0

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		user, findErr = s.users.GetByID(txCtx, userID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", findErr)
		}

		// The balance check runs before the pending check; when both
		// would fail the caller sees ErrInsufficientBalance.
		if !req.IsExtra && user.BarrelsRemaining <= 0 {
			return ErrInsufficientBalance
		}

		pending, pendErr := s.bookings.HasPending(txCtx, userID)
		if pendErr != nil {
			return fmt.Errorf("check pending booking: %w", pendErr)
		}
		if pending {
			return ErrPendingExists
		}

		agencyID, resolveErr := s.resolveAgency(txCtx, req.AgencyID, user)
		if resolveErr != nil {
			return resolveErr
		}

		booking = model.Booking{
			UserID:        userID,
			AgencyID:      agencyID,
			Status:        model.BookingPending,
			PaymentMethod: req.PaymentMethod,
			IsExtra:       req.IsExtra,
			Notes:         req.Notes,
		}
		if createErr := s.bookings.Create(txCtx, &booking); createErr != nil {
			return fmt.Errorf("create booking: %w", createErr)
		}

		// Only regular bookings reserve a cylinder against the annual
		// quota. The ledger re-checks the balance atomically, so two
		// concurrent creates cannot both take the last barrel.
		if !req.IsExtra {
			balance, decErr := s.ledger.Decrement(txCtx, userID)
			if decErr != nil {
				return decErr
			}
			newBalance = balance
		}

		kind := ""
		if req.IsExtra {
			kind = "extra "
		}
		entry := model.Log{
			UserID:  &userID,
			Action:  model.ActionBookingCreate,
			Details: fmt.Sprintf("User %s created a %sbooking with %s", user.Email, kind, req.PaymentMethod),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write booking log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if !req.IsExtra {
		if mailErr := s.mail.SendBalanceNotification(user.Email, user.Name, newBalance, "used"); mailErr != nil {
			log.Printf("booking: failed to send balance notification to %s: %v", user.Email, mailErr)
		}
	}
	if mailErr := s.mail.SendBookingConfirmation(user.Email, user.Name, booking.ID, booking.PaymentMethod); mailErr != nil {
		log.Printf("booking: failed to send confirmation to %s: %v", user.Email, mailErr)
	}
	s.publish(ws.EventBookingCreated, &booking)

	return &booking, nil
}

func (s *bookingService) resolveAgency(ctx context.Context, explicit string, user *model.User) (uuid.UUID, error) {
	var agencyID uuid.UUID
	switch {
	case explicit != "":
		parsed, err := uuid.Parse(explicit)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid agency id: %w", err)
		}
		agencyID = parsed
	case user.DefaultVendorID != nil:
		agencyID = *user.DefaultVendorID
	default:
		return uuid.Nil, ErrNoAgency
	}

	if _, err := s.agencies.GetByID(ctx, agencyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrAgencyNotFound
		}
		return uuid.Nil, fmt.Errorf("load agency: %w", err)
	}
	return agencyID, nil
}

func (s *bookingService) Approve(ctx context.Context, bookingID, actorID uuid.UUID) (*model.Booking, error) {
	var booking *model.Booking

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		booking, findErr = s.bookings.GetByIDWithUser(txCtx, bookingID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", findErr)
		}

		if booking.Status != model.BookingPending {
			return ErrNotPending
		}

		nowTs := time.Now()
		booking.Status = model.BookingApproved
		booking.ApprovedAt = &nowTs
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		entry := model.Log{
			UserID:  &actorID,
			Action:  model.ActionBookingApprove,
			Details: fmt.Sprintf("Approved booking %s for user %s", booking.ID, booking.User.Email),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write approval log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if mailErr := s.mail.SendBookingApproval(booking.User.Email, booking.User.Name, booking.ID); mailErr != nil {
		log.Printf("booking: failed to send approval email to %s: %v", booking.User.Email, mailErr)
	}
	if mailErr := s.mail.SendTransactionAcknowledgment(booking.User.Email, booking.User.Name, booking.ID, booking.PaymentMethod); mailErr != nil {
		log.Printf("booking: failed to send acknowledgment to %s: %v", booking.User.Email, mailErr)
	}
	s.publish(ws.EventBookingApproved, booking)

	return booking, nil
}

func (s *bookingService) Reject(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*model.Booking, error) {
	var booking *model.Booking
	restoredBalance := -1

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		booking, findErr = s.bookings.GetByIDWithUser(txCtx, bookingID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", findErr)
		}

		if booking.Status != model.BookingPending {
			return ErrNotPending
		}

		// Return the reserved cylinder before flipping the status so the
		// notification reflects the restored balance.
		if !booking.IsExtra {
			balance, restoreErr := s.ledger.Restore(txCtx, booking.UserID)
			if restoreErr != nil {
				return restoreErr
			}
			restoredBalance = balance
		}

		nowTs := time.Now()
		booking.Status = model.BookingRejected
		booking.RejectedAt = &nowTs
		if reason != "" {
			booking.Notes = reason
		}
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		logReason := reason
		if logReason == "" {
			logReason = "Not specified"
		}
		entry := model.Log{
			UserID:  &actorID,
			Action:  model.ActionBookingReject,
			Details: fmt.Sprintf("Rejected booking %s for user %s. Reason: %s", booking.ID, booking.User.Email, logReason),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write rejection log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if restoredBalance >= 0 {
		if mailErr := s.mail.SendBalanceNotification(booking.User.Email, booking.User.Name, restoredBalance, "restored due to booking rejection"); mailErr != nil {
			log.Printf("booking: failed to send balance notification to %s: %v", booking.User.Email, mailErr)
		}
	}
	mailReason := reason
	if mailReason == "" {
		mailReason = "Your booking could not be processed at this time. Please contact support for more information."
	}
	if mailErr := s.mail.SendBookingRejection(booking.User.Email, booking.User.Name, booking.ID, mailReason); mailErr != nil {
		log.Printf("booking: failed to send rejection email to %s: %v", booking.User.Email, mailErr)
	}
	s.publish(ws.EventBookingRejected, booking)

	return booking, nil
}

func (s *bookingService) Deliver(ctx context.Context, bookingID, actorID uuid.UUID, deliveryNotes string) (*model.Booking, error) {
	var booking *model.Booking

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		booking, findErr = s.bookings.GetByIDWithUser(txCtx, bookingID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", findErr)
		}

		if booking.Status != model.BookingApproved {
			return ErrNotApproved
		}

		nowTs := time.Now()
		booking.Status = model.BookingDelivered
		booking.DeliveredAt = &nowTs
		if deliveryNotes != "" {
			booking.DeliveryNotes = deliveryNotes
		}
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		entry := model.Log{
			UserID:  &actorID,
			Action:  model.ActionBookingDeliver,
			Details: fmt.Sprintf("Marked booking %s as delivered for user %s", booking.ID, booking.User.Email),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write delivery log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if mailErr := s.mail.SendDeliveryConfirmation(booking.User.Email, booking.User.Name, booking.ID, deliveryNotes); mailErr != nil {
		log.Printf("booking: failed to send delivery confirmation to %s: %v", booking.User.Email, mailErr)
	}
	s.publish(ws.EventBookingDelivered, booking)

	return booking, nil
}

func (s *bookingService) Schedule(ctx context.Context, req ScheduleBookingRequest) (*model.Booking, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}
	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin id: %w", err)
	}

	var booking *model.Booking
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		booking, findErr = s.bookings.GetByIDWithUser(txCtx, bookingID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", findErr)
		}

		if booking.Status != model.BookingApproved {
			return ErrNotApproved
		}

		scheduled := req.ScheduledFor
		booking.ScheduledFor = &scheduled
		if req.DeliveryAddress != "" {
			booking.DeliveryAddress = req.DeliveryAddress
		}
		if req.ContactNumber != "" {
			booking.ContactNumber = req.ContactNumber
		}
		if saveErr := s.bookings.Update(txCtx, booking); saveErr != nil {
			return fmt.Errorf("update booking: %w", saveErr)
		}

		entry := model.Log{
			UserID:  &adminID,
			Action:  model.ActionBookingSchedule,
			Details: fmt.Sprintf("Scheduled booking %s for %s", booking.ID, scheduled.Format(time.RFC3339)),
		}
		if logErr := s.logs.Write(txCtx, &entry); logErr != nil {
			return fmt.Errorf("write schedule log: %w", logErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) HistoryForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Booking, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.bookings.ListByUser(ctx, userID, page, limit)
}

func (s *bookingService) QueueForAgency(ctx context.Context, agencyID uuid.UUID, status string, page, limit int) ([]model.Booking, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.bookings.ListByAgency(ctx, agencyID, status, page, limit)
}

func (s *bookingService) ListAll(ctx context.Context, status string, page, limit int) ([]model.Booking, int64, error) {
	page, limit = pagination.Clamp(page, limit)
	return s.bookings.List(ctx, status, page, limit)
}
