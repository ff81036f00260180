package event

import "github.com/google/uuid"

// Routing keys for outbound notification events. The email-dispatch
// consumers in the wider system subscribe by these discriminators.
const (
	TopicEmailVerification = "email.verification"
	TopicWelcomeEmail      = "email.welcome"
	TopicPasswordReset     = "email.password_reset"
	TopicPasswordChanged   = "email.password_changed"
)

type EmailVerificationEvent struct {
	UserID            uuid.UUID `json:"user_id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	VerificationToken string    `json:"verification_token"`
	FrontendURL       string    `json:"frontend_url"`
}

type WelcomeEmailEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

type PasswordResetEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ResetToken  string    `json:"reset_token"`
	FrontendURL string    `json:"frontend_url"`
}

type PasswordChangedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// Publisher delivers notification events to the message broker. Delivery is
// best effort: callers log a failed publish and carry on, the triggering
// operation never fails because of it.
type Publisher interface {
	PublishEmailVerification(event EmailVerificationEvent) error
	PublishWelcomeEmail(event WelcomeEmailEvent) error
	PublishPasswordReset(event PasswordResetEvent) error
	PublishPasswordChanged(event PasswordChangedEvent) error
}
