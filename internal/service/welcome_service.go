package service

import (
	"context"
	"log"
	"time"

	"github.com/zapdesk-io/zapdesk/internal/metrics"
	"github.com/zapdesk-io/zapdesk/internal/models"
)

// ConnectionGateway sends a payload to a channel address through a
// connection. Implementations live outside the core; the engine never
// holds transport handles directly.
type ConnectionGateway interface {
	Send(ctx context.Context, connectionID uint, jid, payload string) error
}

// WelcomeService dispatches welcome messages after ticket creation. All
// dispatches are fire-and-forget: failures are logged and counted, never
// propagated to the creation path.
type WelcomeService struct {
	gateway ConnectionGateway
	timeout time.Duration
}

// NewWelcomeService creates a new welcome service. A nil gateway disables
// dispatch entirely.
func NewWelcomeService(gateway ConnectionGateway) *WelcomeService {
	return &WelcomeService{gateway: gateway, timeout: 10 * time.Second}
}

// Dispatch sends the welcome message to the contact in the background.
func (s *WelcomeService) Dispatch(contact *models.Contact, whatsappID uint, message string) {
	if s == nil || s.gateway == nil || message == "" || whatsappID == 0 {
		return
	}
	number := models.DerefString(contact.CanonicalNumber)
	if number == "" {
		return
	}
	jid := number + "@s.whatsapp.net"

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.gateway.Send(ctx, whatsappID, jid, message); err != nil {
			metrics.WelcomeFailures.Inc()
			log.Printf("welcome dispatch failed (connection=%d contact=%d): %v", whatsappID, contact.ID, err)
		}
	}()
}
