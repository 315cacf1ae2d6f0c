package service

import "errors"

// Sentinel errors returned by the business layer. Handlers map these to
// fixed status codes and user-facing messages; anything unwrapped is an
// internal error and surfaces as 500.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAgencyNotFound  = errors.New("agency not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInsufficientBalance: a regular booking needs a positive
	// barrel balance; extra bookings bypass the quota.
	ErrInsufficientBalance = errors.New("no barrels remaining, please request an extra cylinder")

	// ErrPendingExists: at most one PENDING booking per user.
	ErrPendingExists = errors.New("you already have a pending booking, please wait for it to be processed")

	ErrNoAgency = errors.New("no agency selected and no default agency found for user")

	ErrNotPending  = errors.New("booking is not in pending status")
	ErrNotApproved = errors.New("booking must be approved before delivery")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAgencyNotVerified  = errors.New("agency account is not verified yet")
	ErrAgencyInactive     = errors.New("agency account is currently inactive")
	ErrAccountBlocked     = errors.New("account is blocked")

	ErrPaymentExists   = errors.New("payment already exists for this booking")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrBadSignature    = errors.New("invalid payment signature")
	ErrNotOnlineMethod = errors.New("booking is not an online payment booking")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("you do not have access to this resource")
)
