package relay

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hotel-autopilot/config"
	"hotel-autopilot/events"
)

// CapturePage is the slice of the page capability the relay needs.
// playwright.Page satisfies it.
type CapturePage interface {
	Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error)
}

// CleanupFunc stops a stream. Safe to call any number of times; calls after
// the first are no-ops.
type CleanupFunc func()

// Manager runs one screenshot-interval stream per (clientID, site) key and
// forwards each capture to the subscriber as a video_chunk event.
type Manager struct {
	log      *zap.Logger
	interval time.Duration
	quality  int
	limiter  *rate.Limiter

	mu      sync.Mutex
	streams map[string]CleanupFunc
}

func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	// Ceiling across all concurrent streams: captures are cheap but not
	// free, and four sites tick at once during a run.
	perSecond := rate.Limit(float64(len(cfg.Sites)) * float64(time.Second) / float64(cfg.StreamInterval))
	return &Manager{
		log:      log,
		interval: cfg.StreamInterval,
		quality:  cfg.StreamQuality,
		limiter:  rate.NewLimiter(perSecond, len(cfg.Sites)),
		streams:  make(map[string]CleanupFunc),
	}
}

// Key builds the registry key for one (client, site) pair.
func Key(clientID, site string) string {
	return clientID + "-" + site
}

// Start begins streaming page captures to the emitter. If a stream already
// exists for the same key the existing cleanup handle is returned and no
// second capture interval is registered.
func (m *Manager) Start(page CapturePage, emitter events.Emitter, clientID, site string) CleanupFunc {
	key := Key(clientID, site)

	m.mu.Lock()
	if cleanup, ok := m.streams[key]; ok {
		m.mu.Unlock()
		m.log.Info("reusing existing stream", zap.String("key", key))
		return cleanup
	}

	stop := make(chan struct{})
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(stop)
			m.mu.Lock()
			delete(m.streams, key)
			m.mu.Unlock()
			m.log.Info("stream stopped", zap.String("key", key))
		})
	}
	m.streams[key] = cleanup
	m.mu.Unlock()

	m.log.Info("stream started", zap.String("key", key))
	go m.captureLoop(page, emitter, site, key, stop)
	return cleanup
}

// Active reports whether a stream exists for the key.
func (m *Manager) Active(clientID, site string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.streams[Key(clientID, site)]
	return ok
}

func (m *Manager) captureLoop(page CapturePage, emitter events.Emitter, site, key string, stop <-chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !m.limiter.Allow() {
				continue
			}
			shot, err := page.Screenshot(playwright.PageScreenshotOptions{
				Type:    playwright.ScreenshotTypeJpeg,
				Quality: playwright.Int(m.quality),
			})
			if err != nil {
				// Page may have navigated away mid-capture. Skip the
				// tick, never stop the interval.
				m.log.Warn("screenshot failed", zap.String("key", key), zap.Error(err))
				continue
			}
			emitter.Emit(events.VideoChunk, events.Snapshot{Site: site, Image: shot})
		}
	}
}
