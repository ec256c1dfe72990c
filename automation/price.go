package automation

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsePrice normalizes a raw price string by stripping currency symbols and
// thousands separators, e.g. "₹47,625" → 47625. A string with no digits
// normalizes to 0.
func ParsePrice(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

var (
	ratingRe  = regexp.MustCompile(`(\d+\.?\d*)`)
	reviewsRe = regexp.MustCompile(`(\d+,?\d*)\s*reviews`)
)

// parseReviewScore pulls a rating and review count out of a review badge's
// text, e.g. "8.7 Excellent 2,431 reviews" → ("8.7", "2,431").
func parseReviewScore(text string) (rating, reviewCount string) {
	clean := strings.Join(strings.Fields(text), " ")
	if m := ratingRe.FindStringSubmatch(clean); m != nil {
		rating = m[1]
	}
	if m := reviewsRe.FindStringSubmatch(clean); m != nil {
		reviewCount = m[1]
	}
	return rating, reviewCount
}
