package services

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/Dosada05/tennis-club/config"
)

//go:embed templates/*.html
var emailTemplates embed.FS

var parsedEmailTemplates = template.Must(template.ParseFS(emailTemplates, "templates/*.html"))

type EmailService struct {
	smtp      config.SMTPConfig
	publicURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{smtp: cfg.SMTP, publicURL: cfg.PublicURL}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	msg := []byte("To: " + to + "\r\n" +
		"From: " + s.smtp.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)
	tlsconfig := &tls.Config{ServerName: s.smtp.Host}

	var client *smtp.Client
	if s.smtp.Port == 465 {
		// Прямое TLS-соединение
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.smtp.Host)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if s.smtp.User != "" {
		auth := smtp.PlainAuth("", s.smtp.User, s.smtp.Pass, s.smtp.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
		}
	}

	if err := client.Mail(s.smtp.From); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("ошибка RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}
	return nil
}

func renderEmail(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := parsedEmailTemplates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return body.String(), nil
}

// SendNotificationEmail implements Mailer.
func (s *EmailService) SendNotificationEmail(to, subject, message string) error {
	data := struct {
		Subject string
		Message string
		Link    string
	}{
		Subject: subject,
		Message: message,
		Link:    s.link("/notifications"),
	}
	body, err := renderEmail("notification_email.html", data)
	if err != nil {
		return err
	}
	return s.SendEmail(to, subject, body)
}

func (s *EmailService) SendWelcomeEmail(to, name string) error {
	data := struct {
		Name  string
		Email string
		Link  string
	}{
		Name:  name,
		Email: to,
		Link:  s.link("/"),
	}
	body, err := renderEmail("welcome_email.html", data)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела приветственного письма: %w", err)
	}
	return s.SendEmail(to, "Добро пожаловать в Tennis Club!", body)
}

func (s *EmailService) link(path string) string {
	if s.publicURL == "" {
		return ""
	}
	return s.publicURL + path
}
