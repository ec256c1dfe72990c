package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hotel-autopilot/automation"
	"hotel-autopilot/config"
	"hotel-autopilot/events"
	"hotel-autopilot/models"
	"hotel-autopilot/relay"
	"hotel-autopilot/session"
)

// LaunchFunc starts one isolated browser instance for a site and returns
// its handle plus an opened page.
type LaunchFunc func(site config.Site) (session.Browser, playwright.Page, error)

// Orchestrator fans one booking request out into concurrent per-site flow
// executions, each with its own browser instance and stream, and settles
// every site exactly once.
type Orchestrator struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *session.Registry
	relays   *relay.Manager
	launch   LaunchFunc
	flowFor  func(label string) (automation.Flow, bool)
}

func New(cfg *config.Config, log *zap.Logger, registry *session.Registry, relays *relay.Manager, launch LaunchFunc) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		log:      log,
		registry: registry,
		relays:   relays,
		launch:   launch,
		flowFor:  automation.ForSite,
	}
}

// Run validates the request, executes every configured site's flow in
// parallel and returns one report per site after all of them have settled.
// Per-site failures never cancel sibling sites; the only error Run itself
// returns is a validation failure, before any browser is launched.
func (o *Orchestrator) Run(ctx context.Context, clientID string, req models.BookingRequest, emitter events.Emitter) ([]models.SiteReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o.log.Info("starting automation run",
		zap.String("client", clientID),
		zap.String("destination", req.Destination),
		zap.Int("sites", len(o.cfg.Sites)))
	emitter.Emit(events.AutomationMessage, "Starting browser")

	reports := make(chan models.SiteReport, len(o.cfg.Sites))
	var eg errgroup.Group
	for _, site := range o.cfg.Sites {
		site := site
		eg.Go(func() error {
			reports <- o.runSite(ctx, clientID, site, req, emitter)
			return nil
		})
	}
	// Goroutines never return errors; Wait is only a barrier.
	_ = eg.Wait()
	close(reports)

	out := make([]models.SiteReport, 0, len(o.cfg.Sites))
	for r := range reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Site < out[j].Site })

	for _, r := range out {
		if r.Err != nil {
			o.log.Warn("site flow failed", zap.String("site", r.Site), zap.Error(r.Err))
			emitter.Emit(events.AutomationError, fmt.Sprintf("%s flow error: %v", r.Site, r.Err))
		}
	}

	emitter.Emit(events.DisplayData, events.Display{
		Data: req.UserFilters,
		Type: "Filters",
		Text: "I have applied these filters",
	})
	emitter.Emit(events.DisplayData, events.Display{
		Data: automation.Vocabulary(),
		Type: "Filters",
		Text: "If you want to change filters select from the list below",
	})

	// Release before signalling completion so the client never receives a
	// video chunk after the completion event. Release is idempotent, so a
	// disconnect racing this pass cannot double-close anything.
	o.registry.ReleaseClient(clientID)
	emitter.Emit(events.AutomationComplete, nil)

	o.log.Info("automation run settled", zap.String("client", clientID), zap.Int("reports", len(out)))
	return out, nil
}

func (o *Orchestrator) runSite(ctx context.Context, clientID string, site config.Site, req models.BookingRequest, emitter events.Emitter) models.SiteReport {
	report := models.SiteReport{Site: site.Label, Result: models.SiteFlowResult{Site: site.Label}}

	flow, ok := o.flowFor(site.Label)
	if !ok {
		report.Err = fmt.Errorf("no flow registered for site %q", site.Label)
		return report
	}

	browser, page, err := o.launch(site)
	if err != nil {
		report.Err = fmt.Errorf("could not launch browser: %w", err)
		return report
	}

	cleanup := o.relays.Start(page, emitter, clientID, site.Label)
	o.registry.Set(clientID, site.Label, &session.Session{Browser: browser, StopStream: cleanup})

	env := automation.Env{
		ClientID: clientID,
		Emitter:  emitter,
		Log:      o.log.With(zap.String("site", site.Label)),
		RestartStream: func(p playwright.Page) {
			o.retargetStream(clientID, site.Label, p, emitter)
		},
	}

	result, err := flow.Run(ctx, page, req, env)
	result.Site = site.Label
	report.Result = result
	report.Err = err
	return report
}

// retargetStream moves the client's stream for a site onto a new page. If
// the client's resources were already reclaimed (disconnect during an
// in-flight step) this is a no-op and any freshly started stream is
// stopped again immediately.
func (o *Orchestrator) retargetStream(clientID, site string, page playwright.Page, emitter events.Emitter) {
	s, ok := o.registry.Get(clientID, site)
	if !ok {
		o.log.Info("stream retarget skipped, session already released",
			zap.String("key", relay.Key(clientID, site)))
		return
	}
	if s.StopStream != nil {
		s.StopStream()
	}
	stop := o.relays.Start(page, emitter, clientID, site)
	if !o.registry.UpdateStream(clientID, site, stop) {
		stop()
	}
}
