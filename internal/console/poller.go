package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/internal/client"
	"github.com/hawkular/hawkular-alerts-console/internal/contextutil"
	"github.com/hawkular/hawkular-alerts-console/pkg/dashboard"
	"github.com/hawkular/hawkular-alerts-console/pkg/filter"
)

// DefaultRefreshInterval is the dashboard auto-refresh period.
const DefaultRefreshInterval = 5 * time.Second

// Snapshot is the outcome of one dashboard refresh. Exactly one of Summary
// and Err is set.
type Snapshot struct {
	Tenant     string
	Range      filter.Range
	Summary    *dashboard.Summary
	Err        error
	At         time.Time
	Generation uint64
}

// Poller keeps a dashboard summary fresh. Every refresh cancels the one in
// flight and results of superseded refreshes are dropped, so subscribers
// only ever see snapshots in generation order.
type Poller struct {
	console  *Console
	logger   *zap.Logger
	clock    clock.Clock
	interval time.Duration
	notify   func(Snapshot)

	mu      sync.Mutex
	tenant  string
	rng     filter.Range
	running bool
	gen     uint64
	cancel  context.CancelFunc
	last    *Snapshot
	good    *Snapshot
	started bool

	deliverMu sync.Mutex

	ctx      context.Context
	stopAll  context.CancelFunc
	kick     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	inflight sync.WaitGroup
}

// NewPoller creates a poller for tenant over rng. notify may be nil; it is
// called from the poller goroutines and must not block for long.
func NewPoller(c *Console, tenant string, rng filter.Range, interval time.Duration, notify func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		console:  c,
		logger:   c.logger.With(zap.String("component", "poller")),
		clock:    c.clock,
		interval: interval,
		notify:   notify,
		tenant:   tenant,
		rng:      rng,
		running:  true,
		ctx:      ctx,
		stopAll:  cancel,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start runs the first refresh immediately and then one per interval.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	ticker := p.clock.Ticker(p.interval)
	p.refresh(false)
	go p.loop(ticker)
}

func (p *Poller) loop(ticker *clock.Ticker) {
	defer close(p.done)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			running := p.running
			p.mu.Unlock()
			if running {
				p.refresh(true)
			}
		case <-p.kick:
			p.refresh(false)
		}
	}
}

// refresh supersedes any refresh in flight and starts a new one.
func (p *Poller) refresh(slide bool) {
	p.mu.Lock()
	if p.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.supersede()
	gen := p.gen
	if slide {
		p.rng = p.rng.Slide(p.clock.Now())
	}
	tenant, rng := p.tenant, p.rng
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancel = cancel
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()
		defer cancel()

		snap := Snapshot{Tenant: tenant, Range: rng, Generation: gen}
		if tenant == "" {
			snap.Err = client.ErrNoTenant
		} else {
			snap.Summary, snap.Err = p.console.Dashboard(contextutil.WithTenant(ctx, tenant), rng)
		}
		snap.At = p.clock.Now()
		p.deliver(snap)
	}()
}

// supersede cancels the refresh in flight and makes its snapshot stale.
// Callers hold p.mu.
func (p *Poller) supersede() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
}

func (p *Poller) deliver(snap Snapshot) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	stale := snap.Generation != p.gen || p.ctx.Err() != nil
	if !stale {
		p.last = &snap
		if snap.Err == nil {
			p.good = &snap
		}
	}
	p.mu.Unlock()

	if stale {
		p.logger.Debug("Discarding superseded dashboard refresh", zap.Uint64("generation", snap.Generation))
		p.console.metrics.PollerRefresh("stale")
		return
	}
	if snap.Err != nil {
		if errors.Is(snap.Err, context.Canceled) {
			return
		}
		p.logger.Error("Dashboard refresh failed", zap.String("tenant", snap.Tenant), zap.Error(snap.Err))
		p.console.metrics.PollerRefresh("error")
	} else {
		p.console.metrics.PollerRefresh("ok")
	}
	if p.notify != nil {
		p.notify(snap)
	}
}

func (p *Poller) trigger() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Refresh requests an immediate refresh, also while paused.
func (p *Poller) Refresh() {
	p.trigger()
}

// Pause stops interval refreshes. The last snapshot stays available.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Resume re-enables interval refreshes and refreshes now.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.running = true
	p.rng = p.rng.Slide(p.clock.Now())
	p.mu.Unlock()
	p.trigger()
}

// Running reports whether interval refreshes are on.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetTenant switches tenant and refreshes now.
func (p *Poller) SetTenant(tenant string) {
	p.mu.Lock()
	p.tenant = tenant
	p.last, p.good = nil, nil
	p.supersede()
	p.mu.Unlock()
	p.trigger()
}

// Tenant returns the tenant being polled.
func (p *Poller) Tenant() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tenant
}

// SetRange replaces the window and refreshes now.
func (p *Poller) SetRange(rng filter.Range) {
	p.mu.Lock()
	p.rng = rng
	p.supersede()
	p.mu.Unlock()
	p.trigger()
}

// Range returns the current window.
func (p *Poller) Range() filter.Range {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng
}

// Last returns the latest delivered snapshot.
func (p *Poller) Last() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Snapshot{}, false
	}
	return *p.last, true
}

// LastSummary returns the latest successful snapshot, kept while later
// refreshes fail.
func (p *Poller) LastSummary() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.good == nil {
		return Snapshot{}, false
	}
	return *p.good, true
}

// Stop cancels the refresh in flight and waits for every goroutine to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		started := p.started
		p.stopAll()
		p.mu.Unlock()
		if started {
			<-p.done
		}
		p.inflight.Wait()
	})
}
