package automation

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Hotels.com and Expedia run the same Expedia Group UIKit front-end, so
// their destination, date and search steps share one implementation. Only
// the landing URL, the date ARIA rendering and the filter map differ.
const (
	uitkMenuPopup     = `.uitk-menu-container.uitk-menu-open`
	uitkSearchTrigger = `button[data-stid="destination_form_field-menu-trigger"]`
	uitkPopoverSheet  = `section[data-testid="popover-sheet"]`
	uitkDestinationIn = `input#destination_form_field`
	uitkDateOpener    = `button[data-testid="uitk-date-selector-input1-default"]`
	uitkDayButton     = `div.uitk-day-button`
	uitkApplyDates    = `button[data-stid="apply-date-selector"]`
	uitkSearchButton  = `button#search_button`
	uitkHotelLink     = `a[data-stid="open-hotel-information"]`
	uitkPriceSummary  = `div[data-stid="price-summary"]`
	uitkPriceText     = `.uitk-text.uitk-type-500.uitk-type-medium.uitk-text-emphasis-theme`
)

// uitkDismissMenu closes the promotional menu that sometimes opens over the
// landing page. Best-effort.
func uitkDismissMenu(page playwright.Page, log *zap.Logger) {
	if err := waitVisible(page, uitkMenuPopup, popupTimeout); err != nil {
		log.Info("no landing popup detected")
		return
	}
	if err := page.Keyboard().Press("Escape"); err != nil {
		log.Warn("could not dismiss landing popup", zap.Error(err))
		return
	}
	log.Info("landing popup dismissed")
}

func uitkSelectDestination(page playwright.Page, destination string) error {
	if err := clickVisible(page, uitkSearchTrigger, inputTimeout); err != nil {
		return err
	}
	if err := waitVisible(page, uitkPopoverSheet, inputTimeout); err != nil {
		return err
	}
	if err := page.Fill(uitkDestinationIn, destination); err != nil {
		return err
	}
	time.Sleep(3 * time.Second)

	suggestion := fmt.Sprintf(`button[data-stid="destination_form_field-result-item-button"][aria-label*="%s"]`, destination)
	return clickVisible(page, suggestion, inputTimeout)
}

// uitkSelectDates opens the calendar and clicks the day buttons whose ARIA
// labels contain the rendered check-in/check-out dates, then applies.
func uitkSelectDates(page playwright.Page, checkInLabel, checkOutLabel string) error {
	if err := clickVisible(page, uitkDateOpener, inputTimeout); err != nil {
		return err
	}
	if err := waitVisible(page, uitkPopoverSheet, inputTimeout); err != nil {
		return err
	}
	time.Sleep(3 * time.Second)

	for _, label := range []string{checkInLabel, checkOutLabel} {
		aria := page.Locator(fmt.Sprintf(`div.uitk-day-aria-label[aria-label*="%s"]`, label))
		day := page.Locator(uitkDayButton, playwright.PageLocatorOptions{Has: aria}).First()
		if err := day.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(float64(calendarTimeout.Milliseconds())),
		}); err != nil {
			return fmt.Errorf("could not click day %q: %w", label, err)
		}
	}

	return page.Locator(uitkApplyDates).Click()
}

func uitkSubmitSearch(page playwright.Page) error {
	if err := clickVisible(page, uitkSearchButton, inputTimeout); err != nil {
		return err
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return err
	}
	time.Sleep(3 * time.Second)
	return nil
}

func uitkSelectFirstHotel(page playwright.Page) error {
	if err := waitVisible(page, uitkHotelLink, hotelListTimeout); err != nil {
		return err
	}
	return page.Locator(uitkHotelLink).First().Click()
}

// uitkExtractPrice reads the first price-summary block on the property page
// and normalizes it. Price is optional: any failure yields 0.
func uitkExtractPrice(page playwright.Page, log *zap.Logger) int {
	summary := page.Locator(uitkPriceSummary).First()
	if err := summary.ScrollIntoViewIfNeeded(); err != nil {
		log.Warn("price summary not reachable", zap.Error(err))
		return 0
	}
	priceText := summary.Locator(uitkPriceText).First()
	if err := priceText.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(priceTimeout.Milliseconds())),
	}); err != nil {
		log.Warn("price text did not appear", zap.Error(err))
		return 0
	}
	raw, err := priceText.TextContent()
	if err != nil {
		log.Warn("could not read price text", zap.Error(err))
		return 0
	}
	price := ParsePrice(raw)
	log.Info("price extracted", zap.String("raw", raw), zap.Int("price", price))
	return price
}
