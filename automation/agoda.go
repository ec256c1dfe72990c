package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hotel-autopilot/models"
)

// Agoda selectors.
const (
	agodaSearchInput   = `[id="textInput"]`
	agodaSuggestion    = `[data-selenium="autosuggest-item"]`
	agodaCheckInBox    = `[data-element-name="search-box-check-in"]`
	agodaCalendarPopup = `.Popup.WideRangePicker`
	agodaSearchButton  = `[data-selenium="searchButton"]`
	agodaHotelList     = `.hotel-list-container`
	agodaPropertyLink  = `.PropertyCard__Link`
	agodaHotelHeader   = `[data-selenium="hotel-header-name"]`
	agodaReviewScore   = `[data-testid="ReviewScoreCompact"]`
)

type agodaFlow struct{}

func (f *agodaFlow) Label() string { return LabelAgoda }

func (f *agodaFlow) Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env Env) (models.SiteFlowResult, error) {
	result := models.SiteFlowResult{Site: LabelAgoda}

	if err := navigate(ctx, page, "https://www.agoda.com/"); err != nil {
		return result, err
	}

	env.say("Selecting destination (Agoda)")
	if err := f.selectDestination(page, req.Destination); err != nil {
		return result, fmt.Errorf("could not select destination: %w", err)
	}

	env.say("Selecting dates (Agoda)")
	if err := f.selectDates(page, req.CheckInDate, req.CheckOutDate); err != nil {
		return result, fmt.Errorf("could not select dates: %w", err)
	}

	env.say("Performing search (Agoda)")
	if err := clickVisible(page, agodaSearchButton, inputTimeout); err != nil {
		return result, fmt.Errorf("could not submit search: %w", err)
	}
	time.Sleep(2 * time.Second)

	// Search opens the results in a new tab.
	resultsPage := latestPage(page)
	if env.RestartStream != nil {
		env.RestartStream(resultsPage)
	}

	if len(req.UserFilters) > 0 {
		env.say("Applying filters (Agoda)")
		applyFilters(resultsPage, LabelAgoda, req.UserFilters, env)
	}

	env.say("Selecting first hotel (Agoda)")
	if err := waitVisible(resultsPage, agodaHotelList, hotelListTimeout); err != nil {
		return result, fmt.Errorf("hotel list did not appear: %w", err)
	}
	if err := resultsPage.Locator(agodaPropertyLink).First().Click(); err != nil {
		return result, fmt.Errorf("could not select first hotel: %w", err)
	}
	time.Sleep(1500 * time.Millisecond)

	// The property opens in yet another tab; follow it and retarget the
	// stream there.
	finalPage := latestPage(resultsPage)
	if env.RestartStream != nil {
		env.RestartStream(finalPage)
	}
	if err := finalPage.BringToFront(); err != nil {
		env.Log.Warn("could not bring final page to front", zap.Error(err))
	}
	if err := finalPage.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return result, fmt.Errorf("final page did not load: %w", err)
	}

	hotelName := "Unknown Hotel"
	if name, err := finalPage.Locator(agodaHotelHeader).TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(float64(inputTimeout.Milliseconds())),
	}); err == nil && name != "" {
		hotelName = name
	}
	env.say(fmt.Sprintf("Agoda final page loaded. Recommended hotel: %s", hotelName))

	if text, err := finalPage.Locator(agodaReviewScore).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(float64(inputTimeout.Milliseconds())),
	}); err == nil {
		rating, reviews := parseReviewScore(text)
		if rating != "" {
			env.say(fmt.Sprintf("Rating: %s, Reviews: %s", rating, reviews))
		}
	}

	result.HotelBookingURL = finalPage.URL()
	env.say("Agoda flow complete!")
	return result, nil
}

func (f *agodaFlow) selectDestination(page playwright.Page, destination string) error {
	input := page.Locator(agodaSearchInput)
	if err := input.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(inputTimeout.Milliseconds())),
	}); err != nil {
		return err
	}
	if err := input.Clear(); err != nil {
		return err
	}
	if err := input.Fill(destination); err != nil {
		return err
	}
	if err := waitVisible(page, agodaSuggestion, inputTimeout); err != nil {
		return err
	}
	if err := page.Locator(agodaSuggestion).First().Click(); err != nil {
		return err
	}
	time.Sleep(2 * time.Second)
	return nil
}

func (f *agodaFlow) selectDates(page playwright.Page, checkIn, checkOut string) error {
	if err := clickVisible(page, agodaCheckInBox, inputTimeout); err != nil {
		return err
	}
	if err := waitVisible(page, agodaCalendarPopup, calendarTimeout); err != nil {
		return err
	}
	for _, date := range []string{checkIn, checkOut} {
		selector := agodaDateSelector(date)
		if err := clickVisible(page, selector, inputTimeout); err != nil {
			return err
		}
		time.Sleep(1 * time.Second)
	}
	return nil
}
