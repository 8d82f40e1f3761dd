package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/valyala/fasthttp"
)

const DefaultResendBaseURL = "https://api.resend.com"

type ResendConfig struct {
	BaseURL string
	APIKey  string
	// Timeout applies when the context carries no deadline.
	Timeout time.Duration
	// Client overrides the default fasthttp client, mainly for tests.
	Client *fasthttp.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// ResendClient talks to the Resend REST API.
type ResendClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewResendClient(cfg ResendConfig) *ResendClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                "inquiry-gateway",
			MaxConnsPerHost:     16,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		}
	}
	return &ResendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  client,
	}
}

func (c *ResendClient) Name() string {
	return ProviderResend
}

func (c *ResendClient) Send(ctx context.Context, email *Email) (*SendResponse, error) {
	if err := email.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(resendRequest{
		From:    email.From(),
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, respBody, err := c.doRequest(ctx, fasthttp.MethodPost, "/emails", body)
	if err != nil {
		return nil, err
	}

	var resp resendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// accepted but unreadable; the send still happened
		logger.Warn("resend response not parseable", "error", err, "status", status)
	}

	return &SendResponse{ID: resp.ID, Provider: ProviderResend, StatusCode: status}, nil
}

// doRequest performs one request bounded by the context deadline, or the
// client timeout when the context has none.
func (c *ResendClient) doRequest(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.apiKey)
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return statusCode, nil, &ProviderError{
			Provider:   ProviderResend,
			StatusCode: statusCode,
			Body:       string(resp.Body()),
		}
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return statusCode, result, nil
}
