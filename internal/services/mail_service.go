package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

// Sender is the outbound mail transport. A single Send call addresses
// every recipient of one message; failures come back as ErrDelivery.
type Sender interface {
	Send(to []string, subject, textBody, htmlBody string) error
}

type MailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != 0 && from != ""
	if !enabled {
		log.Warn().Msg("mail service disabled: missing SMTP environment variables")
	}

	return &MailService{
		host:     host,
		port:     port,
		username: user,
		password: pass,
		from:     from,
		enabled:  enabled,
	}
}

func (s *MailService) Send(to []string, subject, textBody, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if !s.enabled {
		log.Debug().Strs("to", to).Str("subject", subject).Msg("mail disabled, dropping message")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
