package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/internal/services"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
	"github.com/nimasrn/inquiry-gateway/test/fixtures"
	"github.com/nimasrn/inquiry-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) Create(ctx context.Context, p model.InquiryCreateRequest) (*model.Inquiry, model.NotificationResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, model.NotificationResult{}, args.Error(2)
	}
	return args.Get(0).(*model.Inquiry), args.Get(1).(model.NotificationResult), args.Error(2)
}

func (m *MockInquiryService) List(ctx context.Context, f model.InquiryFilter) ([]*model.Inquiry, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Inquiry), args.Get(1).(int64), args.Error(2)
}

func (m *MockInquiryService) Get(ctx context.Context, id string) (*model.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inquiry), args.Error(1)
}

func (m *MockInquiryService) UpdateStatus(ctx context.Context, id string, status string) (*model.Inquiry, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inquiry), args.Error(1)
}

func (m *MockInquiryService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInquiryService) SendEmail(ctx context.Context, req services.SendEmailRequest) (model.NotificationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.NotificationResult), args.Error(1)
}

type stubNotifier struct {
	result model.NotificationResult
	calls  int
}

func (s *stubNotifier) NotifyInquiry(context.Context, *model.Inquiry) model.NotificationResult {
	s.calls++
	return s.result
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeBody(t *testing.T, ctx *xhttp.RequestCtx) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

func TestInquiryHandler_CreateInquiry(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockInquiryService)
		handler := NewInquiryHandler(svc)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.InquiryCreateRequest) bool {
			return p.Name == "A" && p.ArtType == "acrylic" && p.IPAddress == "198.51.100.7" && p.UserAgent == "test-agent"
		})).Return(&model.Inquiry{ID: "id-1", Status: model.InquiryStatusPending},
			model.NotificationResult{Status: model.NotificationSent}, nil)

		ctx := setupTestContext("POST", "/api/v1/inquiries", mustJSON(t, fixtures.InquiryPayloadMinimal()))
		ctx.Request.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		ctx.Request.Header.SetUserAgent("test-agent")
		handler.CreateInquiry(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "id-1", body["inquiryId"])
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "Inquiry submitted successfully", body["message"])
		assert.Equal(t, "sent", body["notification"])
		svc.AssertExpectations(t)
	})

	t.Run("snake case art type", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.InquiryCreateRequest) bool {
			return p.ArtType == "oil"
		})).Return(&model.Inquiry{ID: "id-2", Status: model.InquiryStatusPending}, model.NotificationResult{}, nil)

		ctx := setupTestContext("POST", "/api/v1/inquiries",
			[]byte(`{"name":"B","email":"b@x.com","art_type":"oil","message":"hi"}`))
		NewInquiryHandler(svc).CreateInquiry(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockInquiryService)
		ctx := setupTestContext("POST", "/api/v1/inquiries", []byte("invalid json"))
		NewInquiryHandler(svc).CreateInquiry(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "invalid JSON")
	})

	t.Run("persistence error", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, nil, errors.New("db down"))

		ctx := setupTestContext("POST", "/api/v1/inquiries", mustJSON(t, fixtures.InquiryPayloadMinimal()))
		NewInquiryHandler(svc).CreateInquiry(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())
	})
}

func newRealInquiryHandler(t *testing.T, n services.InquiryNotifier) (*InquiryHandler, *repository.InquiryRepository) {
	t.Helper()
	repo := repository.NewInquiryRepository(helpers.SetupTestDB(t))
	return NewInquiryHandler(services.NewInquiryService(repo, n, nil, nil)), repo
}

func TestInquiryHandler_CreateInquiry_MissingFieldsPersistNothing(t *testing.T) {
	for name, payload := range fixtures.MissingFieldPayloads {
		t.Run(name, func(t *testing.T) {
			notifier := &stubNotifier{}
			handler, repo := newRealInquiryHandler(t, notifier)

			ctx := setupTestContext("POST", "/api/v1/inquiries", mustJSON(t, payload))
			handler.CreateInquiry(ctx)

			assert.Equal(t, 400, ctx.Response.StatusCode())
			body := decodeBody(t, ctx)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, model.ErrMissingRequiredFields.Error(), body["error"])

			_, total, err := repo.List(context.Background(), model.InquiryFilter{})
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.Zero(t, notifier.calls)
		})
	}
}

func TestInquiryHandler_CreateInquiry_EmailFailureStillCreated(t *testing.T) {
	notifier := &stubNotifier{result: model.NotificationResult{Status: model.NotificationFailed, Error: "resend: status 500"}}
	handler, repo := newRealInquiryHandler(t, notifier)

	ctx := setupTestContext("POST", "/api/v1/inquiries", mustJSON(t, fixtures.InquiryPayloadMinimal()))
	handler.CreateInquiry(ctx)

	assert.Equal(t, 201, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, "failed", body["notification"])
	assert.Equal(t, 1, notifier.calls)

	items, total, err := repo.List(context.Background(), model.InquiryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, body["inquiryId"], items[0].ID)
	assert.Equal(t, model.InquiryStatusPending, items[0].Status)
}

func TestInquiryHandler_UpdateStatus(t *testing.T) {
	t.Run("unknown id creates nothing", func(t *testing.T) {
		handler, repo := newRealInquiryHandler(t, nil)

		ctx := setupTestContext("PUT", "/api/v1/inquiries/x/status", []byte(`{"status":"contacted"}`))
		ctx.SetUserValue("id", "3f6c1f5e-8a43-4a5c-9a4e-0d6f1d2b7c11")
		handler.UpdateInquiryStatus(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
		assert.Equal(t, "Inquiry not found", decodeBody(t, ctx)["error"])

		_, total, err := repo.List(context.Background(), model.InquiryFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("UpdateStatus", mock.Anything, "id-1", "archived").
			Return(nil, &services.ValidationError{Message: "Invalid status"})

		ctx := setupTestContext("PUT", "/api/v1/inquiries/id-1/status", []byte(`{"status":"archived"}`))
		ctx.SetUserValue("id", "id-1")
		NewInquiryHandler(svc).UpdateInquiryStatus(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("updated", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("UpdateStatus", mock.Anything, "id-1", "completed").
			Return(&model.Inquiry{ID: "id-1", Status: model.InquiryStatusCompleted}, nil)

		ctx := setupTestContext("PUT", "/api/v1/inquiries/id-1/status", []byte(`{"status":"completed"}`))
		ctx.SetUserValue("id", "id-1")
		NewInquiryHandler(svc).UpdateInquiryStatus(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, "completed", body["inquiry"].(map[string]any)["status"])
	})
}

func TestInquiryHandler_ListInquiries(t *testing.T) {
	svc := new(MockInquiryService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.InquiryFilter) bool {
		return len(f.Statuses) == 2 && f.Statuses[1] == model.InquiryStatusContacted &&
			f.Limit == 10 && f.Offset == 20 && f.From != nil && f.To == nil
	})).Return([]*model.Inquiry{{ID: "a"}, {ID: "b"}}, int64(42), nil)

	ctx := setupTestContext("GET", "/api/v1/inquiries?status=new,%20contacted&limit=10&offset=20&from=2025-03-01", nil)
	NewInquiryHandler(svc).ListInquiries(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(42), body["total"])
	assert.Len(t, body["inquiries"], 2)
	svc.AssertExpectations(t)
}

func TestInquiryHandler_GetAndDelete(t *testing.T) {
	svc := new(MockInquiryService)
	svc.On("Get", mock.Anything, "missing").Return(nil, services.ErrNotFound)
	svc.On("Delete", mock.Anything, "missing").Return(services.ErrNotFound)
	svc.On("Delete", mock.Anything, "id-1").Return(nil)
	handler := NewInquiryHandler(svc)

	ctx := setupTestContext("GET", "/api/v1/inquiries/missing", nil)
	ctx.SetUserValue("id", "missing")
	handler.GetInquiry(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())

	ctx = setupTestContext("DELETE", "/api/v1/inquiries/missing", nil)
	ctx.SetUserValue("id", "missing")
	handler.DeleteInquiry(ctx)
	assert.Equal(t, 404, ctx.Response.StatusCode())

	ctx = setupTestContext("DELETE", "/api/v1/inquiries/id-1", nil)
	ctx.SetUserValue("id", "id-1")
	handler.DeleteInquiry(ctx)
	assert.Equal(t, 204, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Body())
}

func TestInquiryHandler_SendInquiryEmail(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("SendEmail", mock.Anything, mock.MatchedBy(func(r services.SendEmailRequest) bool {
			return r.ID == "id-1"
		})).Return(model.NotificationResult{Status: model.NotificationSent, MessageID: "em_1", Recipient: "studio@example.com"}, nil)

		ctx := setupTestContext("POST", "/api/v1/inquiries/email", []byte(`{"id":"id-1"}`))
		NewInquiryHandler(svc).SendInquiryEmail(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		body := decodeBody(t, ctx)
		assert.Equal(t, "em_1", body["messageId"])
		assert.Equal(t, "studio@example.com", body["sentTo"])
	})

	t.Run("provider failure", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("SendEmail", mock.Anything, mock.Anything).
			Return(model.NotificationResult{Status: model.NotificationFailed}, services.ErrNotificationFailed)

		ctx := setupTestContext("POST", "/api/v1/inquiries/email", mustJSON(t, fixtures.InquiryPayloadMinimal()))
		NewInquiryHandler(svc).SendInquiryEmail(ctx)

		assert.Equal(t, 502, ctx.Response.StatusCode())
		assert.Equal(t, "Failed to send email", decodeBody(t, ctx)["error"])
	})

	t.Run("missing field", func(t *testing.T) {
		svc := new(MockInquiryService)
		svc.On("SendEmail", mock.Anything, mock.Anything).
			Return(model.NotificationResult{}, &services.ValidationError{Message: "Missing field: message"})

		ctx := setupTestContext("POST", "/api/v1/inquiries/email", []byte(`{"name":"A","email":"a@x.com","artType":"oil"}`))
		NewInquiryHandler(svc).SendInquiryEmail(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		assert.Equal(t, "Missing field: message", decodeBody(t, ctx)["error"])
	})
}
