// Package browser owns the single headless Chrome session shared by all
// rendered fetches and the page lifecycle around each one.
package browser

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"sjsage522/pricetracker/config"
	"sjsage522/pricetracker/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = stderrors.New("browser: manager is closed")

// State is the lifecycle state of the shared session.
type State int

const (
	Uninitialized State = iota
	Ready
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options configures the manager and the rendered page lifecycle.
type Options struct {
	Bin                  string
	Stealth              bool
	PoolSize             int
	NavigationTimeout    time.Duration
	NavigationRetries    int
	NavigationRetryDelay time.Duration
	SettleDelay          time.Duration
	SnapshotTimeout      time.Duration
	PageCloseTimeout     time.Duration
	BrowserCloseTimeout  time.Duration
	LaunchTimeout        time.Duration
	ProbeInterval        time.Duration
	ProbeTimeout         time.Duration
}

// OptionsFromConfig maps the application config onto manager options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bin:                  cfg.BrowserBin,
		Stealth:              cfg.BrowserStealth,
		PoolSize:             cfg.BrowserPoolSize,
		NavigationTimeout:    cfg.NavigationTimeout,
		NavigationRetries:    cfg.NavigationRetries,
		NavigationRetryDelay: cfg.NavigationRetryDelay,
		SettleDelay:          cfg.SettleDelay,
		SnapshotTimeout:      cfg.SnapshotTimeout,
		PageCloseTimeout:     cfg.PageCloseTimeout,
		BrowserCloseTimeout:  cfg.BrowserCloseTimeout,
		LaunchTimeout:        cfg.BrowserLaunchTimeout,
	}
}

func (o *Options) defaults() {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 20 * time.Second
	}
	if o.NavigationRetries < 1 {
		o.NavigationRetries = 3
	}
	if o.SnapshotTimeout <= 0 {
		o.SnapshotTimeout = 10 * time.Second
	}
	if o.PageCloseTimeout <= 0 {
		o.PageCloseTimeout = 5 * time.Second
	}
	if o.BrowserCloseTimeout <= 0 {
		o.BrowserCloseTimeout = 10 * time.Second
	}
	if o.LaunchTimeout <= 0 {
		o.LaunchTimeout = time.Minute
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = 5 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 3 * time.Second
	}
}

// renderBudget bounds one Render call end to end: every navigation
// attempt with its retry pause, the settle delay and the snapshot.
func (o Options) renderBudget() time.Duration {
	nav := time.Duration(o.NavigationRetries) * o.NavigationTimeout
	pauses := time.Duration(o.NavigationRetries-1) * o.NavigationRetryDelay
	return nav + pauses + o.SettleDelay + o.SnapshotTimeout
}

type (
	launchFunc   func(ctx context.Context, opts Options) (*rod.Browser, *launcher.Launcher, error)
	probeFunc    func(b *rod.Browser, timeout time.Duration) error
	shutdownFunc func(b *rod.Browser, l *launcher.Launcher, timeout time.Duration)
)

// Manager manages the Chrome session. Only Init and Close mutate the
// session handle; pages are the per-fetch isolation unit.
type Manager struct {
	opts     Options
	launch   launchFunc
	probe    probeFunc
	shutdown shutdownFunc

	// initMu serializes launches so concurrent Init calls create at most
	// one session. mu guards everything below.
	initMu    sync.Mutex
	mu        sync.Mutex
	state     State
	browser   *rod.Browser
	lnch      *launcher.Launcher
	stopProbe chan struct{}
}

// NewManager creates a Manager. Chrome is launched lazily by Init.
func NewManager(opts Options) *Manager {
	opts.defaults()
	if opts.PoolSize > 1 {
		logger.ForBrowser().Debug().
			Int("poolSize", opts.PoolSize).
			Msg("Browser pool size configured; a single shared session is used")
	}
	return &Manager{
		opts:     opts,
		launch:   launchChrome,
		probe:    getVersion,
		shutdown: shutdown,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Init makes sure a connected session exists. It is a no-op when the
// current session still answers; otherwise any stale handle is dropped
// and a fresh Chrome is launched. Init fails fast with ErrClosed once
// Close has started.
func (m *Manager) Init(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	m.mu.Lock()
	if m.state == Closing || m.state == Closed {
		m.mu.Unlock()
		return ErrClosed
	}
	current := m.browser
	ready := m.state == Ready
	m.mu.Unlock()

	if ready && current != nil {
		if err := m.probe(current, m.opts.ProbeTimeout); err == nil {
			return nil
		}
		logger.ForBrowser().Warn().Msg("Browser session lost, relaunching")
	}

	m.discard()

	b, l, err := m.launchBounded(ctx)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	m.mu.Lock()
	if m.state == Closing || m.state == Closed {
		m.mu.Unlock()
		m.shutdown(b, l, m.opts.BrowserCloseTimeout)
		return ErrClosed
	}
	stop := make(chan struct{})
	m.browser, m.lnch, m.stopProbe = b, l, stop
	m.state = Ready
	m.mu.Unlock()

	go m.watch(b, stop)

	logger.ForBrowser().Info().Bool("stealth", m.opts.Stealth).Msg("Browser session ready")
	return nil
}

// Close tears the session down. New Init calls fail as soon as Close
// begins; the handle is cleared and the state set to Closed even when
// the bounded browser close times out.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == Closing || m.state == Closed {
		m.mu.Unlock()
		return nil
	}
	m.state = Closing
	b, l, stop := m.browser, m.lnch, m.stopProbe
	m.stopProbe = nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
	}

	if b != nil || l != nil {
		m.shutdown(b, l, m.opts.BrowserCloseTimeout)
	}

	m.mu.Lock()
	m.browser, m.lnch = nil, nil
	m.state = Closed
	m.mu.Unlock()

	logger.ForBrowser().Info().Msg("Browser session closed")
	return nil
}

// current returns the live handle, or nil when not Ready.
func (m *Manager) current() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Ready {
		return nil
	}
	return m.browser
}

// discard drops a stale session, ignoring close errors.
func (m *Manager) discard() {
	m.mu.Lock()
	b, l, stop := m.browser, m.lnch, m.stopProbe
	m.browser, m.lnch, m.stopProbe = nil, nil, nil
	if m.state == Ready {
		m.state = Uninitialized
	}
	m.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if b != nil || l != nil {
		m.shutdown(b, l, m.opts.BrowserCloseTimeout)
	}
}

// launchBounded runs the launcher under LaunchTimeout and ctx. A launch
// that finishes after the caller gave up is shut down in the background.
func (m *Manager) launchBounded(ctx context.Context) (*rod.Browser, *launcher.Launcher, error) {
	type launched struct {
		b   *rod.Browser
		l   *launcher.Launcher
		err error
	}
	done := make(chan launched, 1)
	go func() {
		b, l, err := m.launch(ctx, m.opts)
		done <- launched{b, l, err}
	}()

	timer := time.NewTimer(m.opts.LaunchTimeout)
	defer timer.Stop()

	var cause error
	select {
	case r := <-done:
		return r.b, r.l, r.err
	case <-timer.C:
		cause = fmt.Errorf("launch timed out after %v", m.opts.LaunchTimeout)
	case <-ctx.Done():
		cause = ctx.Err()
	}

	go func() {
		if r := <-done; r.err == nil {
			m.shutdown(r.b, r.l, m.opts.BrowserCloseTimeout)
		}
	}()
	return nil, nil, cause
}

func getVersion(b *rod.Browser, timeout time.Duration) error {
	_, err := proto.BrowserGetVersion{}.Call(b.Timeout(timeout))
	return err
}

// watch resets the state to Uninitialized when the session stops
// answering, so the next Init relaunches it.
func (m *Manager) watch(b *rod.Browser, stop <-chan struct{}) {
	ticker := time.NewTicker(m.opts.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := m.probe(b, m.opts.ProbeTimeout); err == nil {
				continue
			}
			m.mu.Lock()
			if m.browser == b && m.state == Ready {
				m.state = Uninitialized
				logger.ForBrowser().Warn().Msg("Browser disconnected")
			}
			m.mu.Unlock()
			return
		}
	}
}

func launchChrome(ctx context.Context, opts Options) (*rod.Browser, *launcher.Launcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// The session outlives the caller's context, so ctx is not handed
	// to the launcher.
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding")
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), opts.LaunchTimeout)
	defer cancel()

	b := rod.New().ControlURL(u).Context(connectCtx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return b.Context(context.Background()), l, nil
}

// shutdown closes every page and then b, all within timeout, and kills
// the process either way.
func shutdown(b *rod.Browser, l *launcher.Launcher, timeout time.Duration) {
	if b != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		bounded := b.Context(ctx)

		log := logger.ForBrowser()
		if pages, err := bounded.Pages(); err == nil {
			for _, page := range pages {
				if err := page.Context(ctx).Close(); err != nil {
					log.Debug().Err(err).Msg("Failed to close page during shutdown")
				}
			}
		}
		if err := bounded.Close(); err != nil {
			if ctx.Err() != nil {
				log.Warn().Dur("timeout", timeout).Msg("Browser close timed out")
			} else {
				log.Debug().Err(err).Msg("Browser close returned an error")
			}
		}
		cancel()
	}
	if l != nil {
		l.Kill()
		go l.Cleanup()
	}
}
