package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TransportState is the last known health of the SMTP transport.
type TransportState struct {
	OK        bool       `json:"ok"`
	CheckedAt *time.Time `json:"checked_at"`
	Error     string     `json:"error,omitempty"`
}

// Probe periodically dials the transport so /api/health can report on it.
type Probe struct {
	transport Transport
	schedule  string
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.RWMutex
	busy  bool
	state TransportState
}

func NewProbe(transport Transport, schedule string, logger *zap.Logger) *Probe {
	return &Probe{
		transport: transport,
		schedule:  schedule,
		timeout:   30 * time.Second,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Probe) Name() string {
	return "smtp-probe"
}

func (p *Probe) Schedule() string {
	return p.schedule
}

func (p *Probe) Ready(time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.busy
}

func (p *Probe) Execute() {
	p.mu.Lock()
	p.busy = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.transport.Ping(ctx)
	checked := p.now().UTC()

	state := TransportState{OK: err == nil, CheckedAt: &checked}
	if err != nil {
		state.Error = string(Classify(err))
		p.logger.Warn("SMTP transport probe failed", zap.String("code", state.Error), zap.Error(err))
	} else {
		p.logger.Debug("SMTP transport probe succeeded")
	}

	p.mu.Lock()
	p.state = state
	p.busy = false
	p.mu.Unlock()
}

// State returns the result of the latest probe. Before the first probe OK is false and CheckedAt nil.
func (p *Probe) State() TransportState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
