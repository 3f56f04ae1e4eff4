package emailService

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

const (
	subjectContactMessage  = "New contact message"
	templateContactMessage = "contact_message.html"
	defaultSMTPPort        = "587"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type EmailData interface {
	TemplateFileName() string
	Subject() string
}

type EmailSender interface {
	Send(to string, data EmailData) error
}

// ContactMessageData fills the contact message notification.
type ContactMessageData struct {
	Name    string
	Email   string
	Message string
	Date    string
}

func (c ContactMessageData) TemplateFileName() string {
	return templateContactMessage
}

func (c ContactMessageData) Subject() string {
	return subjectContactMessage
}

type Config struct {
	From     string
	Password string
	SMTPHost string
	SMTPPort string
}

type EmailService struct {
	from     string
	password string
	smtpHost string
	smtpPort string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg Config) (*EmailService, error) {
	if cfg.From == "" || cfg.SMTPHost == "" {
		return nil, errors.New("email sender address and SMTP host are required")
	}
	if cfg.SMTPPort == "" {
		cfg.SMTPPort = defaultSMTPPort
	}
	return &EmailService{
		from:     cfg.From,
		password: cfg.Password,
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		sendMail: smtp.SendMail,
	}, nil
}

// Send renders data with its template and delivers it synchronously.
func (s *EmailService) Send(to string, data EmailData) error {
	message, err := renderMessage(data)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.password != "" {
		auth = smtp.PlainAuth("", s.from, s.password, s.smtpHost)
	}
	if err := s.sendMail(s.smtpHost+":"+s.smtpPort, auth, s.from, []string{to}, message); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

func renderMessage(data EmailData) ([]byte, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, data.TemplateFileName(), data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}

	subject := strings.NewReplacer("\r", " ", "\n", " ").Replace(data.Subject())
	return []byte("Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n" +
		body.String()), nil
}
