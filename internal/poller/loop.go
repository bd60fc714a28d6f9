// Package poller runs a fetch on a fixed interval for as long as a view is
// open, keeping the last good snapshot.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/metrics"
)

var (
	ErrAlreadyStarted = errors.New("poller: loop already started")
	ErrStopped        = errors.New("poller: loop stopped")
)

type State int

const (
	Idle State = iota
	Fetching
	Displaying
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Displaying:
		return "displaying"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// FetchFunc produces one snapshot. ctx is cancelled when the loop stops.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type Options struct {
	Name     string
	Interval time.Duration
	// MaxBackoff > 0 doubles the delay after each consecutive failure, up
	// to this cap. Zero keeps the interval fixed.
	MaxBackoff time.Duration
	Clock      Clock
	Logger     *zap.Logger
	Metrics    *metrics.ClientMetrics
}

// Loop owns one view's timer. Fetches run on the loop goroutine so at most
// one is ever in flight.
type Loop[T any] struct {
	name       string
	interval   time.Duration
	maxBackoff time.Duration
	fetch      FetchFunc[T]
	clock      Clock
	log        *zap.Logger
	metrics    *metrics.ClientMetrics
	stats      StatsTracker

	refresh chan struct{}
	done    chan struct{}

	mu          sync.RWMutex
	state       State
	snapshot    T
	hasSnapshot bool
	subs        []chan T
	started     bool
	cancel      context.CancelFunc
}

func New[T any](fetch FetchFunc[T], opts Options) *Loop[T] {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("poller")
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	return &Loop[T]{
		name:       opts.Name,
		interval:   opts.Interval,
		maxBackoff: opts.MaxBackoff,
		fetch:      fetch,
		clock:      opts.Clock,
		log:        opts.Logger.With(zap.String("view", opts.Name)),
		metrics:    opts.Metrics,
		refresh:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Start runs the first fetch immediately and then one per interval until
// Stop is called or ctx is done.
func (l *Loop[T]) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Stopped {
		return ErrStopped
	}
	if l.started {
		return ErrAlreadyStarted
	}
	l.started = true

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	ticker := l.clock.NewTicker(l.interval)
	go l.run(runCtx, ticker)
	return nil
}

// Refresh asks for an extra fetch. Requests made while one is already
// pending collapse into it.
func (l *Loop[T]) Refresh() {
	select {
	case l.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the timer and any in-flight fetch and waits for the loop to
// exit. A result that arrives after Stop is discarded. Safe to call more
// than once, and before Start.
func (l *Loop[T]) Stop() {
	l.mu.Lock()
	if !l.started {
		if l.state != Stopped {
			l.state = Stopped
			l.closeSubsLocked()
			close(l.done)
		}
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	<-l.done
}

// Done is closed once the loop goroutine has exited.
func (l *Loop[T]) Done() <-chan struct{} {
	return l.done
}

func (l *Loop[T]) Snapshot() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot, l.hasSnapshot
}

func (l *Loop[T]) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop[T]) Stats() Stats {
	return l.stats.Snapshot()
}

// Subscribe returns a channel that receives each new snapshot. A slow
// reader only sees the newest one. The channel is closed on Stop.
func (l *Loop[T]) Subscribe() <-chan T {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan T, 1)
	if l.state == Stopped {
		close(ch)
		return ch
	}
	if l.hasSnapshot {
		ch <- l.snapshot
	}
	l.subs = append(l.subs, ch)
	return ch
}

func (l *Loop[T]) run(ctx context.Context, ticker Ticker) {
	defer close(l.done)
	defer func() {
		ticker.Stop()
		l.mu.Lock()
		l.state = Stopped
		l.closeSubsLocked()
		l.mu.Unlock()
		l.log.Debug("Poll loop stopped")
	}()

	l.log.Debug("Poll loop started", zap.Duration("interval", l.interval))

	c := &cycle{ticker: ticker, delay: l.interval}
	l.tick(ctx, c, "start")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.tick(ctx, c, "timer")
		case <-l.refresh:
			l.tick(ctx, c, "refresh")
		}
	}
}

// cycle is the loop goroutine's private bookkeeping.
type cycle struct {
	ticker   Ticker
	delay    time.Duration
	n        int64
	failures int
}

func (l *Loop[T]) tick(ctx context.Context, c *cycle, trigger string) {
	c.n++
	l.setState(Fetching)

	start := l.clock.Now()
	value, err := l.fetch(ctx)
	elapsed := l.clock.Now().Sub(start)

	if ctx.Err() != nil {
		return
	}

	// Timer ticks that fired during the fetch are dropped, and the next
	// delay is settled, before anything becomes observable.
	l.dropQueuedTick(c.ticker)
	if err != nil {
		c.failures++
	} else {
		c.failures = 0
	}
	if d := l.nextDelay(c.failures); d != c.delay {
		c.delay = d
		c.ticker.Reset(d)
	}

	l.stats.recordFetch(l.clock.Now(), elapsed, err)

	if err != nil {
		l.metrics.ObservePoll(l.name, "error", elapsed)
		l.log.Warn("Poll tick failed",
			zap.Int64("tick", c.n),
			zap.String("trigger", trigger),
			zap.Error(err),
		)
		l.mu.Lock()
		if l.hasSnapshot {
			l.state = Displaying
		} else {
			l.state = Idle
		}
		l.mu.Unlock()
		return
	}

	l.metrics.ObservePoll(l.name, "ok", elapsed)

	l.mu.Lock()
	l.snapshot = value
	l.hasSnapshot = true
	l.state = Displaying
	for _, ch := range l.subs {
		publishLatest(ch, value)
	}
	l.mu.Unlock()
}

// dropQueuedTick discards a timer tick that fired while a fetch was running.
func (l *Loop[T]) dropQueuedTick(ticker Ticker) {
	select {
	case <-ticker.C():
		l.stats.recordSkip()
		l.metrics.ObservePoll(l.name, "skipped", 0)
	default:
	}
}

func (l *Loop[T]) nextDelay(failures int) time.Duration {
	if l.maxBackoff <= 0 || failures == 0 {
		return l.interval
	}
	d := l.interval
	for i := 0; i < failures && d < l.maxBackoff; i++ {
		d *= 2
	}
	if d > l.maxBackoff && l.maxBackoff >= l.interval {
		d = l.maxBackoff
	}
	return d
}

func (l *Loop[T]) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop[T]) closeSubsLocked() {
	for _, ch := range l.subs {
		close(ch)
	}
	l.subs = nil
}

func publishLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
