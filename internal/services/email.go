package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/logger"
	"tourbook/internal/models"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
)

// Mailer - внешний отправитель писем; каждая отправка либо проходит целиком, либо возвращает ошибку.
type Mailer interface {
	SendWelcome(ctx context.Context, user *models.User, url string) error
	SendPasswordReset(ctx context.Context, user *models.User, url string) error
}

const smtpTimeout = 15 * time.Second

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	auth     smtp.Auth
	from     string
	host     string
	port     string
	resetTTL time.Duration
	sendMail sendMailFunc
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth:     auth,
		from:     cfg.EmailFrom,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		resetTTL: cfg.PasswordResetTTL,
		sendMail: sendMailWithTimeout(smtpTimeout),
	}
}

func (s *EmailService) buildMessage(to []string, subject, contentType, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: Natours <%s>\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"utf-8\"\r\n\r\n", contentType)
	b.WriteString(body)
	return []byte(b.String())
}

func (s *EmailService) send(ctx context.Context, to []string, subject, contentType, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, s.auth, s.from, to, s.buildMessage(to, subject, contentType, body))
}

func (s *EmailService) SendHTML(ctx context.Context, to []string, subject, body string) error {
	return s.send(ctx, to, subject, "text/html", body)
}

func (s *EmailService) SendWelcome(ctx context.Context, user *models.User, url string) error {
	logger.WithCtx(ctx).Info("Отправка приветственного письма", zap.Int64("user_id", user.ID))
	return s.SendHTML(ctx, []string{user.Email}, "Welcome to the Natours family!", helpers.BuildWelcomeHTML(user.Name, url))
}

func (s *EmailService) SendPasswordReset(ctx context.Context, user *models.User, url string) error {
	logger.WithCtx(ctx).Info("Отправка письма для сброса пароля", zap.Int64("user_id", user.ID))
	minutes := int(s.resetTTL / time.Minute)
	return s.SendHTML(ctx, []string{user.Email},
		fmt.Sprintf("Your password reset token (valid for %d min)", minutes),
		helpers.BuildPasswordResetHTML(user.Name, url, minutes))
}

// sendMailWithTimeout - smtp.SendMail с дедлайном на всё соединение.
func sendMailWithTimeout(timeout time.Duration) sendMailFunc {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return err
		}
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(timeout))

		c, err := smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
		defer c.Close()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := c.Extension("AUTH"); ok {
				if err := c.Auth(a); err != nil {
					return err
				}
			}
		}
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return c.Quit()
	}
}
