// Package mailer is the email side service: a gin server wrapping one shared SMTP transport.
package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"parcel-shipping-service/config"
)

// Transport delivers prepared messages. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, msgs ...*mail.Msg) error
	Ping(ctx context.Context) error
	Close() error
}

// SMTPTransport is the process-wide SMTP client. Sends and probes are serialised.
type SMTPTransport struct {
	mu     sync.Mutex
	client *mail.Client
	logger *zap.Logger
}

func NewSMTPTransport(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPTransport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(20 * time.Second),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPTransport{client: client, logger: logger}, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msgs ...*mail.Msg) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.DialAndSendWithContext(ctx, msgs...)
}

// Ping dials and authenticates without sending anything.
func (t *SMTPTransport) Ping(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.DialWithContext(ctx); err != nil {
		return err
	}
	return t.client.Close()
}

func (t *SMTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Info("Closing SMTP transport")
	return t.client.Close()
}
