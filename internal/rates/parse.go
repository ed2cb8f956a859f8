package rates

import (
	"fmt"
	"strings"

	errors2 "github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/shopspring/decimal"
)

// ParseRate reads the number at the start of raw and renders it with two
// fractional digits. Only the leading run of digits and dots is considered,
// and anything from a second dot on is ignored, so "7.7512&nbsp;HKD" gives
// "7.75". Leading whitespace is not skipped.
func ParseRate(raw string) (string, error) {
	end := 0
	dots := 0
	for end < len(raw) {
		c := raw[end]
		if c == '.' {
			dots++
			if dots > 1 {
				break
			}
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}

	num := raw[:end]
	if strings.Trim(num, ".") == "" {
		return "", fmt.Errorf("%w: %q", errors2.ErrMalformedRate, truncate(raw, 32))
	}
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	num = strings.TrimSuffix(num, ".")

	d, err := decimal.NewFromString(num)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors2.ErrMalformedRate, err)
	}
	return d.StringFixed(2), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
