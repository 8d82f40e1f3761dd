package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

const (
	ProviderResend = "resend"
	ProviderSES    = "ses"
)

var (
	ErrNoRecipient = errors.New("email has no recipient")
	ErrNoSender    = errors.New("email has no sender address")
)

// Sender delivers one email through a provider. Implementations make a
// single attempt.
type Sender interface {
	Send(ctx context.Context, email *Email) (*SendResponse, error)
	Name() string
}

type Email struct {
	FromName    string
	FromAddress string
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
}

// From formats the sender as `Name <address>`.
func (e *Email) From() string {
	if e.FromName == "" {
		return e.FromAddress
	}
	return (&mail.Address{Name: e.FromName, Address: e.FromAddress}).String()
}

func (e *Email) validate() error {
	if len(e.To) == 0 || strings.TrimSpace(e.To[0]) == "" {
		return ErrNoRecipient
	}
	if e.FromAddress == "" {
		return ErrNoSender
	}
	return nil
}

type SendResponse struct {
	ID         string
	Provider   string
	StatusCode int
}

// ProviderError is a rejection reported by the provider itself.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d, body: %s", e.Provider, e.StatusCode, e.Body)
}
