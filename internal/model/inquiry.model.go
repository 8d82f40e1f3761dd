package model

import (
	"errors"
	"strings"
	"time"
)

// InquiryStatus is the review state of a commission request.
type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusContacted  InquiryStatus = "contacted"
	InquiryStatusInProgress InquiryStatus = "in_progress"
	InquiryStatusCompleted  InquiryStatus = "completed"
	InquiryStatusDeclined   InquiryStatus = "declined"
)

var inquiryStatuses = []InquiryStatus{
	InquiryStatusPending,
	InquiryStatusNew,
	InquiryStatusContacted,
	InquiryStatusInProgress,
	InquiryStatusCompleted,
	InquiryStatusDeclined,
}

// InquiryStatusNames lists the accepted status values in workflow order.
func InquiryStatusNames() []string {
	names := make([]string, len(inquiryStatuses))
	for i, s := range inquiryStatuses {
		names[i] = string(s)
	}
	return names
}

func (s InquiryStatus) Valid() bool {
	for _, v := range inquiryStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Inquiry struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	ArtType     string        `json:"art_type"`
	Size        string        `json:"size"`
	Budget      string        `json:"budget"`
	Timeline    string        `json:"timeline"`
	Message     string        `json:"message"`
	Status      InquiryStatus `json:"status"`
	IPAddress   string        `json:"ip_address,omitempty"`
	UserAgent   string        `json:"user_agent,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ErrMissingRequiredFields is returned by Validate when any of name, email,
// artType or message is blank.
var ErrMissingRequiredFields = errors.New("Missing required fields: name, email, artType, and message are required")

// InquiryCreateRequest is the input for submitting an inquiry.
type InquiryCreateRequest struct {
	Name      string
	Email     string
	Phone     string
	ArtType   string
	Size      string
	Budget    string
	Timeline  string
	Message   string
	IPAddress string
	UserAgent string
}

func (p *InquiryCreateRequest) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.ArtType = strings.TrimSpace(p.ArtType)
	p.Size = strings.TrimSpace(p.Size)
	p.Budget = strings.TrimSpace(p.Budget)
	p.Timeline = strings.TrimSpace(p.Timeline)
	p.Message = strings.TrimSpace(p.Message)
}

func (p InquiryCreateRequest) Validate() error {
	if p.Name == "" || p.Email == "" || p.ArtType == "" || p.Message == "" {
		return ErrMissingRequiredFields
	}
	return nil
}

// MissingField reports the first blank required field, in the order the
// email endpoint checks them.
func (p InquiryCreateRequest) MissingField() string {
	switch {
	case p.Name == "":
		return "name"
	case p.Email == "":
		return "email"
	case p.ArtType == "":
		return "artType"
	case p.Message == "":
		return "message"
	}
	return ""
}

// ToInquiry builds an unsaved inquiry, used when notifying about a payload
// that was never persisted.
func (p InquiryCreateRequest) ToInquiry(now time.Time) *Inquiry {
	return &Inquiry{
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		ArtType:     p.ArtType,
		Size:        p.Size,
		Budget:      p.Budget,
		Timeline:    p.Timeline,
		Message:     p.Message,
		Status:      InquiryStatusPending,
		IPAddress:   p.IPAddress,
		UserAgent:   p.UserAgent,
		SubmittedAt: now,
	}
}

// InquiryFilter controls List queries.
type InquiryFilter struct {
	Statuses []InquiryStatus
	From     *time.Time // submitted_at >= From
	To       *time.Time // submitted_at < To
	Limit    int        // 0 means every row
	Offset   int
	Asc      bool // default newest first
}
