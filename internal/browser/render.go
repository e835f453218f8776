package browser

import (
	"context"
	"fmt"
	"time"

	"sjsage522/pricetracker/helpers"
	"sjsage522/pricetracker/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// snapshotScript copies live input values into their value attributes
// so hidden-input rules see what scripts wrote, then returns the DOM.
const snapshotScript = `() => {
	document.querySelectorAll('input').forEach((el) => {
		if (el.value) {
			el.setAttribute('value', el.value);
		}
	});
	return document.documentElement.outerHTML;
}`

// Render loads url in a fresh page of the shared session and returns the
// rendered HTML. The whole call is bounded by the render budget and the
// page is always released, even on failure.
func (m *Manager) Render(ctx context.Context, url string) (string, error) {
	if err := m.Init(ctx); err != nil {
		return "", err
	}
	b := m.current()
	if b == nil {
		return "", ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.renderBudget())
	defer cancel()

	log := logger.ForBrowser().WithField("url", url)

	page, err := m.openPage(ctx, b)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer m.releasePage(b, page)

	if err := m.navigate(ctx, page, url, log); err != nil {
		return "", err
	}

	// Give scripts time to inject prices after load.
	if m.opts.SettleDelay > 0 {
		if err := sleep(ctx, m.opts.SettleDelay); err != nil {
			return "", err
		}
	}

	snapCtx, cancelSnap := context.WithTimeout(ctx, m.opts.SnapshotTimeout)
	defer cancelSnap()

	res, err := page.Context(snapCtx).Eval(snapshotScript)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot page: %w", err)
	}
	return res.Value.Str(), nil
}

// openPage creates and emulates a page within NavigationTimeout. The
// returned page carries ctx.
func (m *Manager) openPage(ctx context.Context, b *rod.Browser) (*rod.Page, error) {
	openCtx, cancel := context.WithTimeout(ctx, m.opts.NavigationTimeout)
	defer cancel()
	bounded := b.Context(openCtx)

	var page *rod.Page
	var err error
	if m.opts.Stealth {
		page, err = stealth.Page(bounded)
	} else {
		page, err = bounded.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, err
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      helpers.DesktopUserAgent,
		AcceptLanguage: helpers.AcceptLanguage,
	}); err != nil {
		m.releasePage(b, page)
		return nil, err
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		m.releasePage(b, page)
		return nil, err
	}
	return page.Context(ctx), nil
}

// navigate tries up to NavigationRetries times, each bounded by
// NavigationTimeout, pausing NavigationRetryDelay between attempts.
func (m *Manager) navigate(ctx context.Context, page *rod.Page, url string, log *logger.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= m.opts.NavigationRetries; attempt++ {
		navCtx, cancel := context.WithTimeout(ctx, m.opts.NavigationTimeout)
		err := page.Context(navCtx).Navigate(url)
		if err == nil {
			if err := page.Context(navCtx).WaitLoad(); err != nil {
				log.Warn().Err(err).Msg("Wait for load event timed out")
			}
			cancel()
			return nil
		}
		cancel()

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Navigation failed")

		if attempt < m.opts.NavigationRetries {
			if err := sleep(ctx, m.opts.NavigationRetryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("navigation failed after %d attempts: %w", m.opts.NavigationRetries, lastErr)
}

// releasePage closes page within PageCloseTimeout and falls back to
// closing the target directly, under its own PageCloseTimeout, when that
// fails. It does not inherit the render deadline.
func (m *Manager) releasePage(b *rod.Browser, page *rod.Page) {
	log := logger.ForBrowser()

	closeCtx, cancel := context.WithTimeout(context.Background(), m.opts.PageCloseTimeout)
	err := page.Context(closeCtx).Close()
	timedOut := closeCtx.Err() != nil
	cancel()
	if err == nil {
		return
	}
	if timedOut {
		log.Warn().Dur("timeout", m.opts.PageCloseTimeout).Msg("Page close timed out, forcing target close")
	} else {
		log.Debug().Err(err).Msg("Page close failed, forcing target close")
	}

	forceCtx, cancelForce := context.WithTimeout(context.Background(), m.opts.PageCloseTimeout)
	defer cancelForce()
	if _, err := (proto.TargetCloseTarget{TargetID: page.TargetID}).Call(b.Context(forceCtx)); err != nil {
		log.Debug().Err(err).Msg("Forced target close failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
