package gateway

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Header string
	Body   resendRequest
}

func startResendStub(t *testing.T, status int, body string) (*ResendClient, chan capturedRequest) {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	captured := make(chan capturedRequest, 4)

	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			var req resendRequest
			_ = json.Unmarshal(ctx.PostBody(), &req)
			captured <- capturedRequest{
				Path:   string(ctx.Path()),
				Auth:   string(ctx.Request.Header.Peek("Authorization")),
				Header: string(ctx.Request.Header.ContentType()),
				Body:   req,
			}
			ctx.SetStatusCode(status)
			ctx.SetContentType("application/json")
			ctx.SetBodyString(body)
		},
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	client := NewResendClient(ResendConfig{
		BaseURL: "http://resend.test/",
		APIKey:  "re_test",
		Timeout: time.Second,
		Client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	})
	return client, captured
}

func testEmail() *Email {
	return &Email{
		FromName:    "KanakArtistry",
		FromAddress: "onboarding@resend.dev",
		To:          []string{"studio@example.com"},
		Subject:     "🎨 New Art Inquiry from A",
		HTML:        "<p>hi</p>",
	}
}

func TestResendClient_Send(t *testing.T) {
	client, captured := startResendStub(t, fasthttp.StatusOK, `{"id":"em_42"}`)

	resp, err := client.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "em_42", resp.ID)
	assert.Equal(t, ProviderResend, resp.Provider)
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode)

	req := <-captured
	assert.Equal(t, "/emails", req.Path)
	assert.Equal(t, "Bearer re_test", req.Auth)
	assert.Equal(t, "application/json", req.Header)
	assert.Equal(t, `"KanakArtistry" <onboarding@resend.dev>`, req.Body.From)
	assert.Equal(t, []string{"studio@example.com"}, req.Body.To)
	assert.Equal(t, "🎨 New Art Inquiry from A", req.Body.Subject)
	assert.Equal(t, "<p>hi</p>", req.Body.HTML)
}

func TestResendClient_Non2xx(t *testing.T) {
	client, _ := startResendStub(t, fasthttp.StatusUnprocessableEntity, `{"message":"invalid from"}`)

	resp, err := client.Send(context.Background(), testEmail())
	require.Error(t, err)
	assert.Nil(t, resp)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, perr.StatusCode)
	assert.Contains(t, perr.Body, "invalid from")
}

func TestResendClient_UnparseableBodyStillSent(t *testing.T) {
	client, _ := startResendStub(t, fasthttp.StatusOK, `ok`)

	resp, err := client.Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Empty(t, resp.ID)
}

func TestResendClient_CanceledContext(t *testing.T) {
	client, captured := startResendStub(t, fasthttp.StatusOK, `{"id":"x"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Send(ctx, testEmail())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, captured)
}

func TestResendClient_Validation(t *testing.T) {
	client := NewResendClient(ResendConfig{})

	e := testEmail()
	e.To = nil
	_, err := client.Send(context.Background(), e)
	assert.ErrorIs(t, err, ErrNoRecipient)

	e = testEmail()
	e.FromAddress = ""
	_, err = client.Send(context.Background(), e)
	assert.ErrorIs(t, err, ErrNoSender)
}
