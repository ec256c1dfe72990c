package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"hotel-autopilot/models"
)

type hotelsFlow struct{}

func (f *hotelsFlow) Label() string { return LabelHotels }

func (f *hotelsFlow) Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env Env) (models.SiteFlowResult, error) {
	result := models.SiteFlowResult{Site: LabelHotels}

	if err := navigate(ctx, page, "https://www.hotels.com"); err != nil {
		return result, err
	}

	uitkDismissMenu(page, env.Log)

	env.say("Selecting destination (Hotels.com)")
	if err := uitkSelectDestination(page, req.Destination); err != nil {
		return result, fmt.Errorf("could not select destination: %w", err)
	}

	env.say("Selecting dates (Hotels.com)")
	checkIn, err := hotelsDateLabel(req.CheckInDate)
	if err != nil {
		return result, err
	}
	checkOut, err := hotelsDateLabel(req.CheckOutDate)
	if err != nil {
		return result, err
	}
	if err := uitkSelectDates(page, checkIn, checkOut); err != nil {
		return result, fmt.Errorf("could not select dates: %w", err)
	}

	env.say("Performing search (Hotels.com)")
	if err := uitkSubmitSearch(page); err != nil {
		return result, fmt.Errorf("could not submit search: %w", err)
	}

	if len(req.UserFilters) > 0 {
		env.say("Applying filters (Hotels.com)")
		applyFilters(page, LabelHotels, req.UserFilters, env)
	}

	env.say("Selecting first hotel (Hotels.com)")
	if err := uitkSelectFirstHotel(page); err != nil {
		return result, fmt.Errorf("could not select first hotel: %w", err)
	}
	time.Sleep(3 * time.Second)

	finalPage := latestPage(page)
	if env.RestartStream != nil {
		env.RestartStream(finalPage)
	}
	if err := finalPage.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return result, fmt.Errorf("final page did not load: %w", err)
	}

	result.HotelBookingPrice = uitkExtractPrice(finalPage, env.Log)
	result.HotelBookingURL = finalPage.URL()
	env.say("Hotels.com flow complete!")
	return result, nil
}
