package rates

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/RezaEskandarii/fxworker/types/config"
)

// DefaultSelector locates the result cell on the XE converter page.
const DefaultSelector = ".uccRes .rightCol"

// XE scrapes the rate from the XE currency converter HTML page.
type XE struct {
	client   *http.Client
	endpoint url.URL
	Selector string
}

func NewXE(cfg config.ConverterConfig) *XE {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return &XE{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: url.URL{Scheme: scheme, Host: cfg.Host, Path: cfg.Path},
		Selector: DefaultSelector,
	}
}

func (x *XE) Query(ctx context.Context, from, to string) (string, error) {
	u := x.endpoint
	u.RawQuery = url.Values{
		"Amount": {"1"},
		"From":   {from},
		"To":     {to},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build rate request: %w", err)
	}
	resp, err := x.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request rate %s/%s: %w", from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request rate %s/%s: unexpected status %s", from, to, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse rate page: %w", err)
	}
	cell := doc.Find(x.Selector).First()
	if cell.Length() == 0 {
		return "", fmt.Errorf("rate page for %s/%s: %q not found", from, to, x.Selector)
	}
	inner, err := cell.Html()
	if err != nil {
		return "", fmt.Errorf("rate page for %s/%s: %w", from, to, err)
	}
	return ParseRate(inner)
}
