package gateway

import (
	"context"
	"fmt"
)

type Options struct {
	Provider string
	Resend   ResendConfig
	SES      SESConfig
}

// New builds the Sender named by opts.Provider.
func New(ctx context.Context, opts Options) (Sender, error) {
	switch opts.Provider {
	case "", ProviderResend:
		return NewResendClient(opts.Resend), nil
	case ProviderSES:
		return NewSESClient(ctx, opts.SES)
	default:
		return nil, fmt.Errorf("unknown email provider %q", opts.Provider)
	}
}
