package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Browser-mimicking defaults. The Eastmoney and Sina quote endpoints
// reject requests without a plausible User-Agent/Referer.
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout   = 10 * time.Second
)

var httpClient = &http.Client{Timeout: defaultTimeout}

// SetTimeout replaces the shared HTTP client timeout. Intended to be
// called once at startup from configuration.
func SetTimeout(d time.Duration) {
	if d > 0 {
		httpClient = &http.Client{Timeout: d}
	}
}

// DoGet performs a GET with browser headers and returns the response
// body, the status code, and an error for transport failures or
// non-2xx statuses.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, resp.StatusCode, fmt.Errorf("http %d: %s", resp.StatusCode, url)
	}
	return resp.Body, resp.StatusCode, nil
}

// GetBytes performs DoGet and reads the full body.
func GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, _, err := DoGet(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// GetBytesGBK performs DoGet and transcodes the GBK body to UTF-8.
// The legacy Sina quote endpoints still serve GBK.
func GetBytesGBK(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, _, err := DoGet(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	reader := transform.NewReader(body, simplifiedchinese.GBK.NewDecoder())
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decode gbk response: %w", err)
	}
	return data, nil
}
