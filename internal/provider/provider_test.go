package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubFetcher returns canned data or a canned error.
type stubFetcher struct {
	BaseFetcher
	data any
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return NewResult(f.data), nil
}

type stubProvider struct {
	BaseProvider
}

func newStubProvider(name string, fetchers ...Fetcher) *stubProvider {
	p := &stubProvider{BaseProvider: NewBaseProvider(name, "test provider", "https://example.com")}
	for _, f := range fetchers {
		p.RegisterFetcher(f)
	}
	return p
}

func spotFetcher(data any, err error) *stubFetcher {
	return &stubFetcher{
		BaseFetcher: NewBaseFetcher(ModelSpotSnapshot, "stub spot", nil, time.Minute, 100, time.Second),
		data:        data,
		err:         err,
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := newStubProvider("alpha", spotFetcher("data", nil))
	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Info().Name != "alpha" {
		t.Errorf("name = %q", got.Info().Name)
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
	var notFound *ErrProviderNotFound
	if _, err := r.Get("missing"); !errors.As(err, &notFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newStubProvider("")); err == nil {
		t.Error("expected error for empty provider name")
	}
}

func TestRegistryDefaultIsFirstRegistered(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("first", spotFetcher("first-data", nil)))
	_ = r.Register(newStubProvider("second", spotFetcher("second-data", nil)))

	res, err := r.Fetch(context.Background(), ModelSpotSnapshot, QueryParams{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Provider != "first" {
		t.Errorf("default provider = %q, want first", res.Provider)
	}
	if res.Data.(string) != "first-data" {
		t.Errorf("data = %v", res.Data)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("first", spotFetcher("first-data", nil)))
	_ = r.Register(newStubProvider("second", spotFetcher("second-data", nil)))

	if err := r.SetDefault(ModelSpotSnapshot, "second"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	res, err := r.Fetch(context.Background(), ModelSpotSnapshot, QueryParams{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Provider != "second" {
		t.Errorf("provider = %q, want second", res.Provider)
	}

	if err := r.SetDefault(ModelSectorSnapshot, "second"); err == nil {
		t.Error("expected ErrModelNotSupported for unsupported model")
	}
}

func TestRegistryFetchProviderOverride(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("first", spotFetcher("first-data", nil)))
	_ = r.Register(newStubProvider("second", spotFetcher("second-data", nil)))

	res, err := r.Fetch(context.Background(), ModelSpotSnapshot, QueryParams{ParamProvider: "second"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Provider != "second" {
		t.Errorf("provider = %q, want second", res.Provider)
	}
}

func TestRegistryFetchWithFallback(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("broken", spotFetcher(nil, errors.New("upstream down"))))
	_ = r.Register(newStubProvider("healthy", spotFetcher("ok", nil)))

	res, err := r.FetchWithFallback(context.Background(), ModelSpotSnapshot, QueryParams{})
	if err != nil {
		t.Fatalf("FetchWithFallback: %v", err)
	}
	if res.Provider != "healthy" {
		t.Errorf("provider = %q, want healthy", res.Provider)
	}
}

func TestRegistryFetchWithFallbackAllFail(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("a", spotFetcher(nil, errors.New("down"))))
	_ = r.Register(newStubProvider("b", spotFetcher(nil, errors.New("down too"))))

	if _, err := r.FetchWithFallback(context.Background(), ModelSpotSnapshot, QueryParams{}); err == nil {
		t.Error("expected error when all providers fail")
	}
}

func TestRegistryRequiredParamValidation(t *testing.T) {
	r := NewRegistry()
	f := &stubFetcher{
		BaseFetcher: NewBaseFetcher(ModelSpotSnapshot, "stub", []string{ParamCode}, time.Minute, 100, time.Second),
		data:        "ok",
	}
	_ = r.Register(newStubProvider("p", f))

	_, err := r.Fetch(context.Background(), ModelSpotSnapshot, QueryParams{})
	var missing *ErrMissingParam
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if missing.Param != ParamCode {
		t.Errorf("missing param = %q", missing.Param)
	}

	if _, err := r.Fetch(context.Background(), ModelSpotSnapshot, QueryParams{ParamCode: "600519"}); err != nil {
		t.Errorf("Fetch with code: %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(newStubProvider("zeta", spotFetcher(nil, nil)))
	_ = r.Register(newStubProvider("alpha", spotFetcher(nil, nil)))

	infos := r.List()
	if len(infos) != 2 {
		t.Fatalf("len = %d", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("not sorted: %v, %v", infos[0].Name, infos[1].Name)
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey(ModelSpotSnapshot, QueryParams{"b": "2", "a": "1", ParamProvider: "x"})
	b := CacheKey(ModelSpotSnapshot, QueryParams{"a": "1", "b": "2"})
	if a != b {
		t.Errorf("cache keys differ: %q vs %q", a, b)
	}
	if a != "SpotSnapshot:a=1:b=2" {
		t.Errorf("key = %q", a)
	}
}
