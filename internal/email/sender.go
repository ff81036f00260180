package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"auth-service/internal/config"
)

// Sender delivers transactional mail over SMTP. The queue consumers in the
// wider system render the same templates; the service only sends directly
// for the password-changed confirmation.
type Sender struct {
	cfg       *config.SMTPConfig
	templates *TemplateSet
}

func NewSender(cfg *config.SMTPConfig) (*Sender, error) {
	templates, err := NewTemplateSet()
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Sender{
		cfg:       cfg,
		templates: templates,
	}, nil
}

// Send delivers a single HTML message.
func (s *Sender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

// SendVerificationEmail sends the account-verification mail with the
// one-time secret embedded in the frontend link.
func (s *Sender) SendVerificationEmail(to, name, verificationToken, frontendURL string) error {
	body, err := s.templates.Render(templateVerification, templateData{
		Name: name,
		Link: fmt.Sprintf("%s/verify-email?token=%s", frontendURL, verificationToken),
	})
	if err != nil {
		return err
	}
	return s.Send(to, "Verify your account", body)
}

// SendWelcomeEmail sends the post-verification welcome mail.
func (s *Sender) SendWelcomeEmail(to, name string) error {
	body, err := s.templates.Render(templateWelcome, templateData{Name: name})
	if err != nil {
		return err
	}
	return s.Send(to, "Welcome aboard", body)
}

// SendPasswordResetEmail sends the reset link mail.
func (s *Sender) SendPasswordResetEmail(to, name, resetToken, frontendURL string) error {
	body, err := s.templates.Render(templateReset, templateData{
		Name: name,
		Link: fmt.Sprintf("%s/reset-password?token=%s", frontendURL, resetToken),
	})
	if err != nil {
		return err
	}
	return s.Send(to, "Password recovery", body)
}

// SendPasswordChangedEmail confirms that the account password was changed.
func (s *Sender) SendPasswordChangedEmail(to, name string) error {
	body, err := s.templates.Render(templateChanged, templateData{Name: name})
	if err != nil {
		return err
	}
	return s.Send(to, "Your password has been changed", body)
}
