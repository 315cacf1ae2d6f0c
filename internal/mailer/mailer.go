package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Mailer is the outbound notification side channel. Delivery is
// best-effort at every call site: callers log failures and continue,
// they never roll back the operation that triggered the email.
type Mailer interface {
	SendBookingConfirmation(to, name string, bookingID uuid.UUID, paymentMethod string) error
	SendBookingApproval(to, name string, bookingID uuid.UUID) error
	SendBookingRejection(to, name string, bookingID uuid.UUID, reason string) error
	SendDeliveryConfirmation(to, name string, bookingID uuid.UUID, notes string) error
	SendBalanceNotification(to, name string, balance int, reason string) error
	SendTransactionAcknowledgment(to, name string, bookingID uuid.UUID, paymentMethod string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv builds an SMTP mailer from SMTP_HOST/SMTP_PORT/SMTP_USER/
// SMTP_PASSWORD/SMTP_FROM. When SMTP_HOST is unset it falls back to a
// no-op mailer so local development works without a mail server.
func NewFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP_HOST not set, email notifications disabled")
		return NewNop()
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD")),
		from:   from,
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

func (m *smtpMailer) SendBookingConfirmation(to, name string, bookingID uuid.UUID, paymentMethod string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour gas cylinder booking has been received and is pending approval.\n\nBooking ID: %s\nPayment method: %s\n\nYou will receive another email once your booking is reviewed.",
		name, bookingID, paymentMethod)
	return m.send(to, "Gas Cylinder Booking Confirmation", body)
}

func (m *smtpMailer) SendBookingApproval(to, name string, bookingID uuid.UUID) error {
	body := fmt.Sprintf(
		"Great news, %s!\n\nYour gas cylinder booking %s has been approved and is being prepared for delivery.\nEstimated delivery: within 24-48 hours.",
		name, bookingID)
	return m.send(to, "Your Gas Cylinder Booking Has Been Approved", body)
}

func (m *smtpMailer) SendBookingRejection(to, name string, bookingID uuid.UUID, reason string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nUnfortunately your gas cylinder booking %s could not be approved.\n\nReason: %s\n\nIf a cylinder was reserved against your annual quota it has been returned to your balance.",
		name, bookingID, reason)
	return m.send(to, "Gas Cylinder Booking Update", body)
}

func (m *smtpMailer) SendDeliveryConfirmation(to, name string, bookingID uuid.UUID, notes string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour gas cylinder booking %s has been delivered.", name, bookingID)
	if notes != "" {
		body += "\n\nDelivery notes: " + notes
	}
	return m.send(to, "Gas Cylinder Delivered", body)
}

func (m *smtpMailer) SendBalanceNotification(to, name string, balance int, reason string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour cylinder allocation has changed (%s).\nBarrels remaining this year: %d.",
		name, reason, balance)
	return m.send(to, "Cylinder Allocation Update", body)
}

func (m *smtpMailer) SendTransactionAcknowledgment(to, name string, bookingID uuid.UUID, paymentMethod string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nThis acknowledges the payment arrangement for booking %s (%s).\nFor cash on delivery, please keep the amount ready at handover.",
		name, bookingID, paymentMethod)
	return m.send(to, "Payment Acknowledgment", body)
}

type nopMailer struct{}

// NewNop returns a mailer that silently drops every message.
func NewNop() Mailer { return nopMailer{} }

func (nopMailer) SendBookingConfirmation(string, string, uuid.UUID, string) error { return nil }
func (nopMailer) SendBookingApproval(string, string, uuid.UUID) error             { return nil }
func (nopMailer) SendBookingRejection(string, string, uuid.UUID, string) error    { return nil }
func (nopMailer) SendDeliveryConfirmation(string, string, uuid.UUID, string) error {
	return nil
}
func (nopMailer) SendBalanceNotification(string, string, int, string) error { return nil }
func (nopMailer) SendTransactionAcknowledgment(string, string, uuid.UUID, string) error {
	return nil
}
