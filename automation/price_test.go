package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"₹47,625", 47625},
		{"$1,299", 1299},
		{"1299", 1299},
		{"  ₹ 2,34,567 per night ", 234567},
		{"Price unavailable", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParsePrice(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseReviewScore(t *testing.T) {
	rating, reviews := parseReviewScore("8.7  Excellent   2,431 reviews")
	assert.Equal(t, "8.7", rating)
	assert.Equal(t, "2,431", reviews)

	rating, reviews = parseReviewScore("no score yet")
	assert.Empty(t, rating)
	assert.Empty(t, reviews)
}
