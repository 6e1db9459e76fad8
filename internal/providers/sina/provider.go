// Package sina implements the Sina (新浪财经) data provider. It wraps
// the legacy hq.sinajs.cn quote endpoint, which serves GBK-encoded
// "var hq_str_..." assignments, into the provider/fetcher framework.
//
// Sina only carries the major-index quotes here; it is registered as a
// second IndexQuote source so the registry can fall back to it when
// Eastmoney is unreachable.
package sina

import (
	"context"
	"fmt"

	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/internal/provider"
)

const providerName = "sina"

// DefaultBaseURL is the legacy quote endpoint host.
const DefaultBaseURL = "http://hq.sinajs.cn"

// Provider implements provider.Provider for Sina.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a Sina provider against the public endpoint.
func New() *Provider {
	return NewWithBaseURL(DefaultBaseURL)
}

// NewWithBaseURL creates a provider against a custom endpoint host.
func NewWithBaseURL(baseURL string) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"新浪财经行情 - major index quotes (GBK legacy endpoint)",
			"https://finance.sina.com.cn",
		),
		baseURL: baseURL,
	}
	p.RegisterFetcher(newIndexFetcher(baseURL))
	return p
}

// Ping checks connectivity with a single-index request.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/list=s_sh000001", p.baseURL)
	if _, err := infra.GetBytesGBK(ctx, url, sinaHeaders()); err != nil {
		return fmt.Errorf("sina ping: %w", err)
	}
	return nil
}

// sinaHeaders returns the Referer the endpoint requires.
func sinaHeaders() map[string]string {
	return map[string]string{"Referer": "http://finance.sina.com.cn"}
}
