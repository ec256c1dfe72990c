package browser

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/playwright-community/playwright-go"

	"hotel-autopilot/config"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Launcher creates isolated browser instances. One Launcher (and one
// playwright driver) per process; one Browser per (client, site) pair.
type Launcher struct {
	pw       *playwright.Playwright
	headless bool
}

func NewLauncher(cfg *config.Config) (*Launcher, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("could not install playwright browsers: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	return &Launcher{pw: pw, headless: cfg.Headless}, nil
}

// Stop shuts down the playwright driver. Browsers launched from this
// Launcher must be closed first.
func (l *Launcher) Stop() error {
	return l.pw.Stop()
}

// Launch starts an isolated Chromium for one site, configured with a
// synthetic media-capture source so the automated browser presents a
// consistent fake camera feed if the site probes for media devices.
func (l *Launcher) Launch(site config.Site) (playwright.Browser, playwright.Page, error) {
	args := []string{
		"--use-fake-device-for-media-stream",
		"--use-fake-ui-for-media-stream",
		"--disable-blink-features=AutomationControlled",
		"--disable-infobars",
		"--disable-gpu",
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-notifications",
		"--disable-popup-blocking",
		"--mute-audio",
		"--no-default-browser-check",
		"--no-first-run",
		"--start-maximized",
	}
	if site.VideoPath != "" {
		if _, err := os.Stat(site.VideoPath); err != nil {
			return nil, nil, fmt.Errorf("fake video source not found at %s: %w", site.VideoPath, err)
		}
		args = append(args, "--use-file-for-fake-video-capture="+site.VideoPath)
	}

	b, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.headless),
		Args:     args,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not launch browser for %s: %w", site.Label, err)
	}

	ctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgents[rand.Intn(len(userAgents))]),
	})
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("could not create browser context: %w", err)
	}

	err = ctx.AddInitScript(playwright.Script{
		Content: playwright.String(`
			() => {
				Object.defineProperty(navigator, 'webdriver', {
					get: () => false,
				});
			}
		`),
	})
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("could not add init script: %w", err)
	}

	page, err := ctx.NewPage()
	if err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("could not create page: %w", err)
	}

	if err := page.SetViewportSize(1920, 1080); err != nil {
		b.Close()
		return nil, nil, fmt.Errorf("could not set viewport size: %w", err)
	}

	return b, page, nil
}
