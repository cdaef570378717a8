package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/stomadent/clinic-api/internal/config"
)

const sendTimeout = 5 * time.Second

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

// NewSMTPService sends patient-facing transactional mail. baseURL is the
// public site address used to build the link targets.
func NewSMTPService(cfg config.SMTPConfig, baseURL string) Service {
	return &smtpService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:    cfg.From,
		baseURL: baseURL,
	}
}

func (s *smtpService) SendVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/rejestracja/potwierdz?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"<p>Dziękujemy za rejestrację w portalu pacjenta.</p>"+
			"<p>Aby aktywować konto, kliknij w link: <a href=%q>%s</a></p>"+
			"<p>Link jest ważny przez 24 godziny.</p>", link, link)
	return s.send(ctx, email, "Potwierdź adres e-mail", body)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-hasla?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"<p>Otrzymaliśmy prośbę o zmianę hasła.</p>"+
			"<p>Aby ustawić nowe hasło, kliknij w link: <a href=%q>%s</a></p>"+
			"<p>Jeśli to nie Ty, zignoruj tę wiadomość.</p>", link, link)
	return s.send(ctx, email, "Reset hasła", body)
}

func (s *smtpService) SendWelcome(ctx context.Context, email, name string) error {
	body := fmt.Sprintf(
		"<p>Witaj %s,</p><p>Twoje konto w portalu pacjenta jest już aktywne.</p>", name)
	return s.send(ctx, email, "Witamy w portalu pacjenta", body)
}

func (s *smtpService) send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(sendTimeout):
		return fmt.Errorf("email send timed out")
	}
}
