package models

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// BookingRequest is one client search request. Immutable once validated.
type BookingRequest struct {
	Destination  string   `json:"destination"`
	CheckInDate  string   `json:"check_in_date"`
	CheckOutDate string   `json:"check_out_date"`
	UserFilters  []string `json:"user_filters"`
}

// Validate rejects malformed requests before any browser is launched.
func (r BookingRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	checkIn, err := time.Parse(dateLayout, r.CheckInDate)
	if err != nil {
		return fmt.Errorf("invalid check_in_date %q: expected YYYY-MM-DD", r.CheckInDate)
	}
	checkOut, err := time.Parse(dateLayout, r.CheckOutDate)
	if err != nil {
		return fmt.Errorf("invalid check_out_date %q: expected YYYY-MM-DD", r.CheckOutDate)
	}
	if !checkIn.Before(checkOut) {
		return fmt.Errorf("check_in_date %s must be before check_out_date %s", r.CheckInDate, r.CheckOutDate)
	}
	return nil
}

// SiteFlowResult is the outcome of one completed site flow. A zero price or
// empty URL means the value was unavailable, not an error.
type SiteFlowResult struct {
	Site              string `json:"site"`
	HotelBookingPrice int    `json:"hotelBookingPrice"`
	HotelBookingURL   string `json:"hotelBookingUrl"`
}

// SiteReport records how one site's flow settled. Exactly one report is
// produced per configured site per run.
type SiteReport struct {
	Site   string
	Result SiteFlowResult
	Err    error
}
