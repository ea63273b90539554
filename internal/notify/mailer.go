package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer описывает исходящий почтовый канал уведомлений.
// Отправка строго best-effort: ошибки логируются вызывающей стороной
// и никогда не влияют на переходы состояния заказа.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer отправляет письма через обычный SMTP без авторизации
// (relay внутри периметра) либо с PLAIN-авторизацией, если задана.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer создаёт почтовый канал. addr в формате host:port.
func NewSMTPMailer(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, auth: auth}
}

// Send отправляет письмо одному получателю.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.addr == "" {
		return fmt.Errorf("mailer: SMTP адрес не настроен")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer: не удалось отправить письмо: %w", err)
	}
	return nil
}

// NoopMailer используется, когда SMTP не настроен: отправка всегда успешна.
type NoopMailer struct{}

// Send ничего не делает.
func (NoopMailer) Send(ctx context.Context, to, subject, body string) error {
	return nil
}
