package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsChronologicalDates(t *testing.T) {
	req := BookingRequest{
		Destination:  "Delhi",
		CheckInDate:  "2025-02-06",
		CheckOutDate: "2025-02-07",
		UserFilters:  []string{"3 star", "free cancellation"},
	}
	require.NoError(t, req.Validate())
}

func TestValidateRejectsMalformedRequests(t *testing.T) {
	cases := []struct {
		name string
		req  BookingRequest
	}{
		{"missing destination", BookingRequest{CheckInDate: "2025-02-06", CheckOutDate: "2025-02-07"}},
		{"blank destination", BookingRequest{Destination: "   ", CheckInDate: "2025-02-06", CheckOutDate: "2025-02-07"}},
		{"bad check-in format", BookingRequest{Destination: "Delhi", CheckInDate: "06-02-2025", CheckOutDate: "2025-02-07"}},
		{"bad check-out format", BookingRequest{Destination: "Delhi", CheckInDate: "2025-02-06", CheckOutDate: "tomorrow"}},
		{"check-in equals check-out", BookingRequest{Destination: "Delhi", CheckInDate: "2025-02-06", CheckOutDate: "2025-02-06"}},
		{"check-in after check-out", BookingRequest{Destination: "Delhi", CheckInDate: "2025-02-08", CheckOutDate: "2025-02-07"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.req.Validate())
		})
	}
}
