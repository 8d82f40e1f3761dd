// Package notifier sends the instant inquiry alert and the daily digest.
// Every attempt reports a model.NotificationResult; what to do with a
// failure is left to the caller.
package notifier

import (
	"context"
	"errors"
	"net/mail"
	"time"

	gateway "github.com/nimasrn/inquiry-gateway/internal/gateways"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/render"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
)

const (
	KindInquiry = "inquiry"
	KindDigest  = "digest"
)

type Mailer interface {
	Send(ctx context.Context, email *gateway.Email) (*gateway.SendResponse, error)
	Name() string
}

type EmailConfigStore interface {
	Get(ctx context.Context) (*model.EmailConfig, error)
}

type Renderer interface {
	InquiryAlert(inq *model.Inquiry) string
	DailyReport(report *model.DailyReport, generatedAt time.Time) string
}

// Defaults come from the environment and apply wherever the stored email
// config is absent or blank.
type Defaults struct {
	Recipient   string
	FromName    string
	FromAddress string
}

type Notifier struct {
	mailer   Mailer
	configs  EmailConfigStore
	renderer Renderer
	defaults Defaults
	timeout  time.Duration
	now      func() time.Time
}

// New wires a Notifier. configs may be nil, in which case only the
// defaults are used.
func New(mailer Mailer, configs EmailConfigStore, renderer Renderer, defaults Defaults, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		mailer:   mailer,
		configs:  configs,
		renderer: renderer,
		defaults: defaults,
		timeout:  timeout,
		now:      time.Now,
	}
}

type envelope struct {
	to          string
	fromName    string
	fromAddress string
	enabled     bool
}

func (n *Notifier) resolve(ctx context.Context) envelope {
	env := envelope{
		to:          n.defaults.Recipient,
		fromName:    n.defaults.FromName,
		fromAddress: n.defaults.FromAddress,
		enabled:     true,
	}
	if n.configs == nil {
		return env
	}

	cfg, err := n.configs.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("could not load email config, using defaults", "error", err)
		}
		return env
	}

	if cfg.RecipientEmail != "" {
		env.to = cfg.RecipientEmail
	}
	if cfg.SenderName != "" {
		env.fromName = cfg.SenderName
	}
	if cfg.SenderEmail != "" {
		env.fromAddress = cfg.SenderEmail
	}
	env.enabled = cfg.Enabled
	return env
}

// NotifyInquiry sends the instant alert for inq.
func (n *Notifier) NotifyInquiry(ctx context.Context, inq *model.Inquiry) model.NotificationResult {
	env := n.resolve(ctx)
	subject := render.InquirySubject(inq)
	if !env.enabled {
		return n.skipped(KindInquiry, env, subject)
	}

	email := &gateway.Email{
		FromName:    env.fromName,
		FromAddress: env.fromAddress,
		To:          []string{env.to},
		Subject:     subject,
		HTML:        n.renderer.InquiryAlert(inq),
	}
	if _, err := mail.ParseAddress(inq.Email); err == nil {
		email.ReplyTo = inq.Email
	}

	res := n.send(ctx, KindInquiry, email)
	if res.Failed() {
		logger.Error("inquiry notification failed", "inquiry_id", inq.ID, "recipient", env.to, "error", res.Error)
	} else {
		logger.Info("inquiry notification sent", "inquiry_id", inq.ID, "recipient", env.to, "message_id", res.MessageID)
	}
	return res
}

// SendDigest sends the daily report.
func (n *Notifier) SendDigest(ctx context.Context, report *model.DailyReport) model.NotificationResult {
	env := n.resolve(ctx)
	subject := render.DailySubject(report)
	if !env.enabled {
		return n.skipped(KindDigest, env, subject)
	}

	res := n.send(ctx, KindDigest, &gateway.Email{
		FromName:    env.fromName,
		FromAddress: env.fromAddress,
		To:          []string{env.to},
		Subject:     subject,
		HTML:        n.renderer.DailyReport(report, n.now()),
	})
	if res.Failed() {
		logger.Error("daily digest email failed", "recipient", env.to, "error", res.Error)
	}
	return res
}

func (n *Notifier) skipped(kind string, env envelope, subject string) model.NotificationResult {
	logger.Info("email disabled by config, skipping", "kind", kind)
	prom.ObserveEmail(kind, n.mailer.Name(), string(model.NotificationSkipped), 0)
	return model.NotificationResult{
		Status:    model.NotificationSkipped,
		Provider:  n.mailer.Name(),
		Recipient: env.to,
		Subject:   subject,
	}
}

// send makes exactly one provider call.
func (n *Notifier) send(ctx context.Context, kind string, email *gateway.Email) model.NotificationResult {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	res := model.NotificationResult{
		Provider:  n.mailer.Name(),
		Recipient: email.To[0],
		Subject:   email.Subject,
	}

	start := time.Now()
	resp, err := n.mailer.Send(ctx, email)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		res.Status = model.NotificationFailed
		res.Error = err.Error()
	} else {
		res.Status = model.NotificationSent
		res.MessageID = resp.ID
	}
	prom.ObserveEmail(kind, res.Provider, string(res.Status), elapsed)
	return res
}
