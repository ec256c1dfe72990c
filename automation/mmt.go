package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hotel-autopilot/models"
)

// MakeMyTrip selectors.
const (
	mmtOverlay         = `div[data-cy="outsideModal"].displayBlock`
	mmtOverlayClose    = `span[data-cy="closeModal"]`
	mmtCityInput       = `input#city`
	mmtAutosuggest     = `input.react-autosuggest__input`
	mmtFirstSuggestion = `.react-autosuggest__suggestion--first`
	mmtCheckInInput    = `input[data-cy="checkin"]`
	mmtRoomsGuests     = `[data-cy="RoomsGuestsNew_327"]`
	mmtSearchButton    = `button#hsw_search_button`
	mmtFirstHotel      = `div#Listing_hotel_0`
)

type mmtFlow struct{}

func (f *mmtFlow) Label() string { return LabelMMT }

func (f *mmtFlow) Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env Env) (models.SiteFlowResult, error) {
	result := models.SiteFlowResult{Site: LabelMMT}

	if err := navigate(ctx, page, "https://www.makemytrip.com/hotels/"); err != nil {
		return result, err
	}

	// MakeMyTrip greets every visit with a login overlay.
	f.dismissLoginOverlay(page, env.Log)

	env.say("Selecting destination (MakeMyTrip)")
	if err := f.selectDestination(page, req.Destination, env.Log); err != nil {
		return result, fmt.Errorf("could not select destination: %w", err)
	}

	env.say("Selecting dates (MakeMyTrip)")
	if err := f.selectDates(page, req.CheckInDate, req.CheckOutDate); err != nil {
		return result, fmt.Errorf("could not select dates: %w", err)
	}

	// Closing the rooms/guests dropdown is required before search accepts
	// a click.
	if err := page.Locator(mmtRoomsGuests).Click(); err != nil {
		env.Log.Warn("rooms and guests control click failed", zap.Error(err))
	}

	env.say("Performing search (MakeMyTrip)")
	if err := clickVisible(page, mmtSearchButton, inputTimeout); err != nil {
		return result, fmt.Errorf("could not submit search: %w", err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return result, fmt.Errorf("results page did not load: %w", err)
	}
	time.Sleep(2 * time.Second)

	resultsPage := latestPage(page)
	if env.RestartStream != nil {
		env.RestartStream(resultsPage)
	}

	if len(req.UserFilters) > 0 {
		env.say("Applying filters (MakeMyTrip)")
		applyFilters(resultsPage, LabelMMT, req.UserFilters, env)
	}

	env.say("Selecting first hotel (MakeMyTrip)")
	if err := clickVisible(resultsPage, mmtFirstHotel, hotelListTimeout); err != nil {
		return result, fmt.Errorf("could not select first hotel: %w", err)
	}
	time.Sleep(3 * time.Second)

	finalPage := latestPage(resultsPage)
	if env.RestartStream != nil {
		env.RestartStream(finalPage)
	}
	if err := finalPage.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return result, fmt.Errorf("final page did not load: %w", err)
	}

	result.HotelBookingURL = finalPage.URL()
	env.say("MakeMyTrip flow complete!")
	return result, nil
}

func (f *mmtFlow) dismissLoginOverlay(page playwright.Page, log *zap.Logger) {
	if err := waitVisible(page, mmtOverlay, popupTimeout); err != nil {
		log.Info("no login overlay detected")
		return
	}
	if err := page.Click(mmtOverlayClose, playwright.PageClickOptions{
		Timeout: playwright.Float(float64(popupTimeout.Milliseconds())),
	}); err != nil {
		log.Warn("could not close login overlay", zap.Error(err))
		return
	}
	log.Info("login overlay closed")
}

func (f *mmtFlow) selectDestination(page playwright.Page, destination string, log *zap.Logger) error {
	if err := clickVisible(page, mmtCityInput, inputTimeout); err != nil {
		return err
	}
	if err := page.Click(mmtAutosuggest); err != nil {
		return err
	}
	if err := page.Locator(mmtAutosuggest).Fill(destination); err != nil {
		return err
	}
	time.Sleep(3 * time.Second)

	if err := waitVisible(page, mmtFirstSuggestion, inputTimeout); err != nil {
		return err
	}
	time.Sleep(1 * time.Second)
	if err := page.Click(mmtFirstSuggestion); err != nil {
		return err
	}
	time.Sleep(1 * time.Second)

	if value, err := page.InputValue(mmtCityInput); err == nil {
		log.Info("destination selected", zap.String("value", value))
	}
	return nil
}

func (f *mmtFlow) selectDates(page playwright.Page, checkIn, checkOut string) error {
	if err := clickVisible(page, mmtCheckInInput, inputTimeout); err != nil {
		return err
	}
	for _, date := range []string{checkIn, checkOut} {
		selector, err := mmtDateSelector(date)
		if err != nil {
			return err
		}
		if err := clickVisible(page, selector, calendarTimeout); err != nil {
			return err
		}
	}
	return nil
}
