package handler

import (
	"errors"
	"net/http"

	"github.com/Piyushbhatti32/gas-agency/internal/service"
)

// statusFor maps business-layer sentinel errors to HTTP status codes.
// Unknown errors surface as 500 so bugs are not mistaken for bad input.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAgencyNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAgencyNotVerified),
		errors.Is(err, service.ErrAgencyInactive),
		errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrPendingExists),
		errors.Is(err, service.ErrNoAgency),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrNotApproved),
		errors.Is(err, service.ErrNotOnlineMethod),
		errors.Is(err, service.ErrPaymentExists),
		errors.Is(err, service.ErrBadSignature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
