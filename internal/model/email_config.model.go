package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidRecipient = errors.New("recipient_email must be a valid email address")

// EmailConfig is the operator-editable override of the email defaults.
type EmailConfig struct {
	RecipientEmail string    `json:"recipient_email"`
	SenderName     string    `json:"sender_name"`
	SenderEmail    string    `json:"sender_email"`
	Enabled        bool      `json:"enabled"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *EmailConfig) Validate() error {
	c.RecipientEmail = strings.TrimSpace(c.RecipientEmail)
	c.SenderName = strings.TrimSpace(c.SenderName)
	c.SenderEmail = strings.TrimSpace(c.SenderEmail)
	if _, err := mail.ParseAddress(c.RecipientEmail); err != nil {
		return ErrInvalidRecipient
	}
	if c.SenderEmail != "" {
		if _, err := mail.ParseAddress(c.SenderEmail); err != nil {
			return errors.New("sender_email must be a valid email address")
		}
	}
	return nil
}
