package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hotel-autopilot/events"
	"hotel-autopilot/models"
)

// Site labels. These appear in registry keys, event payloads and error
// messages sent to the client.
const (
	LabelAgoda   = "agoda"
	LabelMMT     = "mmt"
	LabelHotels  = "hoteldotcom"
	LabelExpedia = "expedia"
)

// Step timeouts. Site-specific steps pick from these; a timeout on a
// non-critical step is swallowed, a timeout on a critical step aborts the
// site's flow.
const (
	popupTimeout     = 5 * time.Second
	inputTimeout     = 5 * time.Second
	calendarTimeout  = 10 * time.Second
	hotelListTimeout = 10 * time.Second
	priceTimeout     = 15 * time.Second
)

// Shared pacing for page navigations across all concurrent flows.
var navLimiter = rate.NewLimiter(rate.Every(2*time.Second), 2)

// Env carries the per-run collaborators a flow needs besides the page.
type Env struct {
	ClientID string
	Emitter  events.Emitter
	Log      *zap.Logger

	// RestartStream retargets the client's stream for this site onto a new
	// page after a navigation or tab handoff. No-op once the client's
	// resources have been released.
	RestartStream func(page playwright.Page)
}

func (e Env) say(msg string) {
	if e.Emitter != nil {
		e.Emitter.Emit(events.AutomationMessage, msg)
	}
}

// Flow drives one target site from its landing page to a chosen hotel's
// detail page. Implementations never let an error escape Run other than by
// returning it; the orchestrator converts returned errors into per-site
// failure reports.
type Flow interface {
	Label() string
	Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env Env) (models.SiteFlowResult, error)
}

var flows = map[string]Flow{
	LabelAgoda:   &agodaFlow{},
	LabelMMT:     &mmtFlow{},
	LabelHotels:  &hotelsFlow{},
	LabelExpedia: &expediaFlow{},
}

// ForSite returns the flow registered for a site label.
func ForSite(label string) (Flow, bool) {
	f, ok := flows[label]
	return f, ok
}

// navigate opens a URL with retry, paced by the shared limiter so four
// concurrent flows do not slam their targets at once.
func navigate(ctx context.Context, page playwright.Page, url string) error {
	const maxRetries = 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := navLimiter.Wait(ctx); err != nil {
			return err
		}
		_, lastErr = page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(30000),
		})
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("navigation to %s failed after %d attempts: %w", url, maxRetries, lastErr)
}

func waitVisible(page playwright.Page, selector string, timeout time.Duration) error {
	_, err := page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

// clickVisible waits for the selector then clicks it.
func clickVisible(page playwright.Page, selector string, timeout time.Duration) error {
	if err := waitVisible(page, selector, timeout); err != nil {
		return err
	}
	return page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

// dismissPopups tries each selector and clicks whichever appears.
// Best-effort: the flow proceeds regardless of outcome.
func dismissPopups(page playwright.Page, log *zap.Logger, selectors ...string) {
	for _, selector := range selectors {
		if err := page.Click(selector, playwright.PageClickOptions{
			Timeout: playwright.Float(float64(popupTimeout.Milliseconds())),
		}); err == nil {
			log.Info("popup closed", zap.String("selector", selector))
			time.Sleep(1 * time.Second)
		}
	}
}

// latestPage re-enumerates the browser context's pages and returns the most
// recently opened one. Search submission on some sites opens the results in
// a new tab.
func latestPage(page playwright.Page) playwright.Page {
	pages := page.Context().Pages()
	if len(pages) == 0 {
		return page
	}
	return pages[len(pages)-1]
}

// applyFilters clicks the control for every requested filter present in the
// site's filter map. Each filter is independent: an absent mapping or a
// failed click is logged and the next filter is attempted.
func applyFilters(page playwright.Page, site string, names []string, env Env) []string {
	var applied []string
	for _, name := range names {
		pattern, ok := LookupFilter(site, name)
		if !ok {
			env.Log.Info("no filter mapping, skipping", zap.String("filter", name))
			continue
		}
		locator := page.Locator(pattern).First()
		if err := locator.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(popupTimeout.Milliseconds())),
		}); err != nil {
			env.Log.Warn("filter not found, skipping", zap.String("filter", name), zap.Error(err))
			continue
		}
		if err := locator.Click(); err != nil {
			env.Log.Warn("filter click failed, skipping", zap.String("filter", name), zap.Error(err))
			continue
		}
		time.Sleep(1500 * time.Millisecond)
		env.Log.Info("filter applied", zap.String("filter", name))
		applied = append(applied, name)
	}
	return applied
}
