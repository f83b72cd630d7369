package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/joy095/hotelbooking/config"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	bookingConfirmedTemplate = "booking_confirmed.html"
	bookingCancelledTemplate = "booking_cancelled.html"
)

type bookingMailData struct {
	GuestName        string
	BookingID        string
	CheckIn          string
	CheckOut         string
	Breakfast        bool
	Total            string
	Currency         string
	PaymentReference string
	Reason           string
	Refunded         bool
}

func newBookingMailData(b *booking_models.Booking) bookingMailData {
	return bookingMailData{
		GuestName:        b.GuestName,
		BookingID:        b.ID.String(),
		CheckIn:          b.CheckIn.Format(time.DateOnly),
		CheckOut:         b.CheckOut.Format(time.DateOnly),
		Breakfast:        b.BreakfastIncluded,
		Total:            fmt.Sprintf("%.2f", b.TotalPrice),
		Currency:         b.Currency,
		PaymentReference: b.PaymentReference,
		Reason:           b.CancellationReason,
	}
}

// Mailer sends booking notifications over SMTP. A Mailer with no host is disabled
// and drops every message.
type Mailer struct {
	From     string
	Host     string
	Port     int
	Username string
	Password string

	send func(m *gomail.Message) error
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		From:     cfg.FromEmail,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}
	m.send = m.dialAndSend
	return m
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != "" && m.From != ""
}

// BookingConfirmed tells the guest their payment went through.
func (m *Mailer) BookingConfirmed(b *booking_models.Booking) error {
	return m.sendEmail(b.GuestEmail, "Your booking is confirmed", bookingConfirmedTemplate, newBookingMailData(b))
}

// BookingCancelled tells the guest their booking was cancelled and whether a refund is on its way.
func (m *Mailer) BookingCancelled(b *booking_models.Booking, refunded bool) error {
	data := newBookingMailData(b)
	data.Refunded = refunded
	return m.sendEmail(b.GuestEmail, "Your booking was cancelled", bookingCancelledTemplate, data)
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", name, err)
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) sendEmail(toEmail, subject, templateName string, data any) error {
	if !m.Enabled() {
		logger.DebugLogger.Debugf("Mail disabled, skipping %q to %s", subject, toEmail)
		return nil
	}
	if toEmail == "" {
		return nil
	}

	body, err := render(templateName, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	send := m.send
	if send == nil {
		send = m.dialAndSend
	}
	if err := send(msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.InfoLogger.Infof("Sent %q to %s", subject, toEmail)
	return nil
}

func (m *Mailer) dialAndSend(msg *gomail.Message) error {
	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: m.Host,
	}
	logger.InfoLogger.Infof("Attempting to connect to SMTP server: %s:%d", m.Host, m.Port)
	return dialer.DialAndSend(msg)
}
