// Package eastmoney implements the Eastmoney (东方财富) data provider.
// It wraps the public push2 quote API (api/qt/clist/get) into the
// standard provider/fetcher framework.
//
// Eastmoney is a free, no-API-key provider that covers the full
// A-share market plus industry boards. The endpoint expects
// browser-like headers and returns field-coded rows (f2, f3, ...)
// under data.diff.
package eastmoney

import (
	"context"
	"fmt"

	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/internal/provider"
)

const providerName = "eastmoney"

// DefaultBaseURL is the push2 quote endpoint host.
const DefaultBaseURL = "https://82.push2.eastmoney.com"

// Provider implements provider.Provider for Eastmoney.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates an Eastmoney provider against the public endpoint.
func New() *Provider {
	return NewWithBaseURL(DefaultBaseURL)
}

// NewWithBaseURL creates a provider against a custom endpoint host.
// Used by tests to point at a local fixture server.
func NewWithBaseURL(baseURL string) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"东方财富 push2 行情 - full A-share and industry board snapshots",
			"https://quote.eastmoney.com",
		),
		baseURL: baseURL,
	}
	p.RegisterFetcher(newSpotFetcher(baseURL))
	p.RegisterFetcher(newSectorFetcher(baseURL))
	return p
}

// Ping checks connectivity with a single-row list request.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/qt/clist/get?pn=1&pz=1&po=1&np=1&fltt=2&invt=2&fid=f3&fs=%s&fields=f12", p.baseURL, spotMarkets)
	body, err := infra.GetBytes(ctx, url, eastmoneyHeaders())
	if err != nil {
		return fmt.Errorf("eastmoney ping: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("eastmoney ping: empty response")
	}
	return nil
}

func eastmoneyHeaders() map[string]string {
	return map[string]string{
		"Referer": "https://quote.eastmoney.com/",
		"Accept":  "application/json, text/plain, */*",
	}
}
