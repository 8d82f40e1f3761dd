package model

type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationSkipped NotificationStatus = "skipped"
	NotificationQueued  NotificationStatus = "queued"
)

// NotificationResult is what every email attempt reports back. The caller
// decides whether a failure is fatal.
type NotificationResult struct {
	Status    NotificationStatus `json:"status"`
	Provider  string             `json:"provider,omitempty"`
	MessageID string             `json:"message_id,omitempty"`
	Recipient string             `json:"recipient,omitempty"`
	Subject   string             `json:"subject,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (r NotificationResult) OK() bool {
	return r.Status == NotificationSent || r.Status == NotificationQueued
}

func (r NotificationResult) Failed() bool {
	return r.Status == NotificationFailed
}
