package email

import (
	"fmt"

	"github.com/mkravets/tripbooking/config"
	"github.com/mkravets/tripbooking/internal/kafka"
	"gopkg.in/gomail.v2"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Sender) Send(to string, event kafka.BookingEvent) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subjectFor(event))
	m.SetBody("text/plain", bodyFor(event))
	return s.dialer.DialAndSend(m)
}

func subjectFor(event kafka.BookingEvent) string {
	switch event.Type {
	case "booking_confirmed":
		return "Your booking is confirmed"
	case "booking_canceled":
		return "Your booking was canceled"
	default:
		return "We received your booking"
	}
}

func bodyFor(event kafka.BookingEvent) string {
	return fmt.Sprintf("Booking %s (%s) is now %s. Total: %.2f.",
		event.BookingID, event.BookingType, event.Status, event.TotalPrice)
}
