package messaging

import (
	"encoding/json"
	"fmt"
	"sync"

	"auth-service/internal/domain/event"
	"auth-service/pkg/mqtt"
)

// EventPublisher delivers notification events over the MQTT broker. The
// connection is established lazily on first publish and re-attempted on the
// next publish after a failure; it is never torn down between requests.
type EventPublisher struct {
	client *mqtt.Client

	mu sync.Mutex
}

func NewEventPublisher(client *mqtt.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) PublishEmailVerification(e event.EmailVerificationEvent) error {
	return p.publish(event.TopicEmailVerification, e)
}

func (p *EventPublisher) PublishWelcomeEmail(e event.WelcomeEmailEvent) error {
	return p.publish(event.TopicWelcomeEmail, e)
}

func (p *EventPublisher) PublishPasswordReset(e event.PasswordResetEvent) error {
	return p.publish(event.TopicPasswordReset, e)
}

func (p *EventPublisher) PublishPasswordChanged(e event.PasswordChangedEvent) error {
	return p.publish(event.TopicPasswordChanged, e)
}

func (p *EventPublisher) publish(topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// QoS 1: the broker acknowledges receipt, duplicates are acceptable for
	// notification mail.
	return p.client.Publish(topic, 1, false, body)
}

func (p *EventPublisher) ensureConnected() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client.IsConnected() {
		return nil
	}
	return p.client.Connect()
}

// Close disconnects from the broker. Safe to call when never connected.
func (p *EventPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client.IsConnected() {
		p.client.Disconnect()
	}
}
