package fixtures

import (
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
)

// ReferenceTime is a fixed trigger instant for digest tests.
var ReferenceTime = time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC)

func NewTestInquiryCreateRequest(name, email, artType, message string) model.InquiryCreateRequest {
	return model.InquiryCreateRequest{
		Name:    name,
		Email:   email,
		ArtType: artType,
		Message: message,
	}
}

func InquiryCreateRequestMinimal() model.InquiryCreateRequest {
	return NewTestInquiryCreateRequest("A", "a@x.com", "acrylic", "hello")
}

func InquiryCreateRequestFull() model.InquiryCreateRequest {
	req := NewTestInquiryCreateRequest("Asha Rao", "asha@example.com", "madhubani", "A piece for our living room")
	req.Phone = "+91 98765 43210"
	req.Size = "24x36 in"
	req.Budget = "₹20,000 - ₹30,000"
	req.Timeline = "1 month"
	return req
}

// InquiryPayloadMinimal is the JSON body a browser sends for the minimal form.
func InquiryPayloadMinimal() map[string]string {
	return map[string]string{
		"name":    "A",
		"email":   "a@x.com",
		"artType": "acrylic",
		"message": "hello",
	}
}

var (
	// MissingFieldPayloads each lack exactly one required field.
	MissingFieldPayloads = map[string]map[string]string{
		"name":    {"email": "a@x.com", "artType": "acrylic", "message": "hello"},
		"email":   {"name": "A", "artType": "acrylic", "message": "hello"},
		"artType": {"name": "A", "email": "a@x.com", "message": "hello"},
		"message": {"name": "A", "email": "a@x.com", "artType": "acrylic"},
	}

	ValidStatuses = []model.InquiryStatus{
		model.InquiryStatusNew,
		model.InquiryStatusContacted,
		model.InquiryStatusInProgress,
		model.InquiryStatusCompleted,
		model.InquiryStatusDeclined,
	}

	InvalidStatuses = []string{"", "done", "PENDING", "archived"}
)

func InquiryAt(name string, submittedAt time.Time) *model.Inquiry {
	return &model.Inquiry{
		Name:        name,
		Email:       name + "@example.com",
		ArtType:     "acrylic",
		Message:     "hello",
		Status:      model.InquiryStatusPending,
		SubmittedAt: submittedAt,
	}
}
