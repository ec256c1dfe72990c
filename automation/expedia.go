package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"hotel-autopilot/models"
)

type expediaFlow struct{}

func (f *expediaFlow) Label() string { return LabelExpedia }

func (f *expediaFlow) Run(ctx context.Context, page playwright.Page, req models.BookingRequest, env Env) (models.SiteFlowResult, error) {
	result := models.SiteFlowResult{Site: LabelExpedia}

	if err := navigate(ctx, page, "https://www.expedia.co.in"); err != nil {
		return result, err
	}

	uitkDismissMenu(page, env.Log)

	env.say("Selecting destination (Expedia)")
	if err := uitkSelectDestination(page, req.Destination); err != nil {
		return result, fmt.Errorf("could not select destination: %w", err)
	}

	env.say("Selecting dates (Expedia)")
	checkIn, err := expediaDateLabel(req.CheckInDate)
	if err != nil {
		return result, err
	}
	checkOut, err := expediaDateLabel(req.CheckOutDate)
	if err != nil {
		return result, err
	}
	if err := uitkSelectDates(page, checkIn, checkOut); err != nil {
		return result, fmt.Errorf("could not select dates: %w", err)
	}

	env.say("Performing search (Expedia)")
	if err := uitkSubmitSearch(page); err != nil {
		return result, fmt.Errorf("could not submit search: %w", err)
	}

	if len(req.UserFilters) > 0 {
		env.say("Applying filters (Expedia)")
		applyFilters(page, LabelExpedia, req.UserFilters, env)
	}

	env.say("Selecting first hotel (Expedia)")
	if err := uitkSelectFirstHotel(page); err != nil {
		return result, fmt.Errorf("could not select first hotel: %w", err)
	}
	time.Sleep(3 * time.Second)

	// The property detail opens in a new tab.
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
	env.say("Expedia flow complete!")
	return result, nil
}
