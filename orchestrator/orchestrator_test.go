package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hotel-autopilot/automation"
	"hotel-autopilot/config"
	"hotel-autopilot/events"
	"hotel-autopilot/models"
	"hotel-autopilot/relay"
	"hotel-autopilot/session"
)

// fakePage embeds playwright.Page so only the methods the orchestrator and
// relay exercise need real implementations.
type fakePage struct {
	playwright.Page
}

func (p *fakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	return []byte("img"), nil
}

type fakeBrowser struct {
	mu     sync.Mutex
	closes int
}

func (b *fakeBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

func (b *fakeBrowser) closeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

type countEmitter struct {
	mu     sync.Mutex
	counts map[string]int
	errs   []string
}

func (e *countEmitter) Emit(event string, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.counts == nil {
		e.counts = make(map[string]int)
	}
	e.counts[event]++
	if event == events.AutomationError {
		if msg, ok := data.(string); ok {
			e.errs = append(e.errs, msg)
		}
	}
}

func (e *countEmitter) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[event]
}

func (e *countEmitter) errorMessages() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.errs...)
}

type fakeFlow struct {
	label  string
	result models.SiteFlowResult
	err    error
	runFn  func(req models.BookingRequest, env automation.Env)

	mu   sync.Mutex
	runs int
}

func (f *fakeFlow) Label() string { return f.label }

func (f *fakeFlow) Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env automation.Env) (models.SiteFlowResult, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	if f.runFn != nil {
		f.runFn(req, env)
	}
	return f.result, f.err
}

func (f *fakeFlow) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type harness struct {
	orch     *Orchestrator
	registry *session.Registry
	relays   *relay.Manager
	browsers map[string]*fakeBrowser
	launches int
	mu       sync.Mutex
}

func newHarness(t *testing.T, flows ...*fakeFlow) *harness {
	t.Helper()

	cfg := &config.Config{
		StreamInterval: 10 * time.Millisecond,
		StreamQuality:  80,
	}
	byLabel := make(map[string]automation.Flow, len(flows))
	for _, f := range flows {
		cfg.Sites = append(cfg.Sites, config.Site{Label: f.label})
		byLabel[f.label] = f
	}

	log := zap.NewNop()
	h := &harness{
		registry: session.NewRegistry(log),
		relays:   relay.NewManager(cfg, log),
		browsers: make(map[string]*fakeBrowser),
	}
	launch := func(site config.Site) (session.Browser, playwright.Page, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.launches++
		b := &fakeBrowser{}
		h.browsers[site.Label] = b
		return b, &fakePage{}, nil
	}
	h.orch = New(cfg, log, h.registry, h.relays, launch)
	h.orch.flowFor = func(label string) (automation.Flow, bool) {
		f, ok := byLabel[label]
		return f, ok
	}
	return h
}

func (h *harness) launchCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.launches
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		Destination:  "Delhi",
		CheckInDate:  "2025-02-06",
		CheckOutDate: "2025-02-07",
		UserFilters:  []string{"3 star", "free cancellation", "less than 2km"},
	}
}

func TestRunRejectsInvalidRequestBeforeAnyLaunch(t *testing.T) {
	h := newHarness(t, &fakeFlow{label: "agoda"})
	emitter := &countEmitter{}

	req := validRequest()
	req.CheckOutDate = req.CheckInDate // check_in >= check_out

	_, err := h.orch.Run(context.Background(), "client-1", req, emitter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_in_date")
	assert.Zero(t, h.launchCount())
	assert.Zero(t, emitter.count(events.AutomationComplete))
}

func TestRunSettlesEverySiteExactlyOnce(t *testing.T) {
	agoda := &fakeFlow{label: "agoda", result: models.SiteFlowResult{HotelBookingPrice: 1200, HotelBookingURL: "https://agoda.test/h1"}}
	expedia := &fakeFlow{label: "expedia", result: models.SiteFlowResult{HotelBookingPrice: 47625, HotelBookingURL: "https://expedia.test/h1"}}
	h := newHarness(t, agoda, expedia)
	emitter := &countEmitter{}

	reports, err := h.orch.Run(context.Background(), "client-1", validRequest(), emitter)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, 1, agoda.runCount())
	assert.Equal(t, 1, expedia.runCount())
	assert.Equal(t, 1, emitter.count(events.AutomationComplete))

	// Results carry the site label and the flow's findings.
	assert.Equal(t, "agoda", reports[0].Site)
	assert.Equal(t, 1200, reports[0].Result.HotelBookingPrice)
	assert.Equal(t, "expedia", reports[1].Site)
	assert.Equal(t, 47625, reports[1].Result.HotelBookingPrice)

	// Everything released after the run settled.
	assert.Zero(t, h.registry.Len())
	assert.False(t, h.relays.Active("client-1", "agoda"))
	assert.False(t, h.relays.Active("client-1", "expedia"))
	for label, b := range h.browsers {
		assert.Equal(t, 1, b.closeCount(), label)
	}
}

func TestSiteFailureDoesNotCancelSiblings(t *testing.T) {
	failing := &fakeFlow{label: "mmt", err: errors.New("calendar not found")}
	healthy := &fakeFlow{label: "agoda", result: models.SiteFlowResult{HotelBookingURL: "https://agoda.test/h2"}}
	h := newHarness(t, failing, healthy)
	emitter := &countEmitter{}

	reports, err := h.orch.Run(context.Background(), "client-1", validRequest(), emitter)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	bySite := map[string]models.SiteReport{}
	for _, r := range reports {
		bySite[r.Site] = r
	}
	assert.Error(t, bySite["mmt"].Err)
	assert.NoError(t, bySite["agoda"].Err)
	assert.Equal(t, "https://agoda.test/h2", bySite["agoda"].Result.HotelBookingURL)

	// The error event names the failed site; completion still fires once.
	msgs := emitter.errorMessages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "mmt")
	assert.Contains(t, msgs[0], "calendar not found")
	assert.Equal(t, 1, emitter.count(events.AutomationComplete))

	assert.Zero(t, h.registry.Len())
}

func TestSingleSiteScenarioAppliesFiltersAndCompletesOnce(t *testing.T) {
	var gotReq models.BookingRequest
	var streamActiveDuringFlow bool

	flow := &fakeFlow{
		label:  "agoda",
		result: models.SiteFlowResult{HotelBookingURL: "https://agoda.test/first-hotel"},
	}
	h := newHarness(t, flow)
	flow.runFn = func(req models.BookingRequest, env automation.Env) {
		gotReq = req
		streamActiveDuringFlow = h.relays.Active("client-1", "agoda")
		// Search submission opens a results tab; the stream follows it.
		env.RestartStream(&fakePage{})
	}
	emitter := &countEmitter{}

	reports, err := h.orch.Run(context.Background(), "client-1", validRequest(), emitter)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, "Delhi", gotReq.Destination)
	assert.Equal(t, []string{"3 star", "free cancellation", "less than 2km"}, gotReq.UserFilters)
	assert.True(t, streamActiveDuringFlow)
	assert.Equal(t, 1, emitter.count(events.AutomationComplete))
	assert.False(t, h.relays.Active("client-1", "agoda"))
}

func TestDisconnectMidFlowMakesLaterCleanupANoop(t *testing.T) {
	flow := &fakeFlow{label: "expedia"}
	h := newHarness(t, flow)
	flow.runFn = func(req models.BookingRequest, env automation.Env) {
		// Client disconnects while the step is in flight.
		h.registry.ReleaseClient("client-1")
		// The step finishes and tries to retarget its stream; the registry
		// check must turn this into a no-op instead of leaking a relay.
		env.RestartStream(&fakePage{})
	}
	emitter := &countEmitter{}

	_, err := h.orch.Run(context.Background(), "client-1", validRequest(), emitter)
	require.NoError(t, err)

	assert.False(t, h.relays.Active("client-1", "expedia"))
	assert.Zero(t, h.registry.Len())
	assert.Equal(t, 1, h.browsers["expedia"].closeCount())
}
