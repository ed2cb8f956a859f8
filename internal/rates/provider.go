// Package rates fetches currency exchange rates from a conversion page.
package rates

import "context"

// Provider returns the rate to convert one unit of from into to, rendered
// with exactly two fractional digits.
type Provider interface {
	Query(ctx context.Context, from, to string) (string, error)
}
