package assistant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"vanguard-backend/internal/constants"

	"github.com/rs/zerolog"
)

// Poller probes the sidecar's health on a fixed interval. Explicit
// Start/Stop so the probe's lifetime is tied to the service lifecycle
// instead of an uncancelled interval.
type Poller struct {
	client   *Client
	interval time.Duration
	logger   zerolog.Logger

	alive  atomic.Bool
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(client *Client, logger zerolog.Logger) *Poller {
	return &Poller{
		client:   client,
		interval: constants.AssistantPollInterval,
		logger:   logger,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
	p.logger.Info().Dur("interval", p.interval).Msg("assistant liveness poller started")
}

func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info().Msg("assistant liveness poller stopped")
}

// Alive reports the result of the most recent probe.
func (p *Poller) Alive() bool {
	return p.alive.Load()
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.probe(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Poller) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status, err := p.client.Health(probeCtx)
	alive := err == nil && status.ModelLoaded
	was := p.alive.Swap(alive)
	if was != alive {
		p.logger.Info().Bool("alive", alive).Msg("assistant liveness changed")
	}
}
