// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/internal/providers/eastmoney"
	"github.com/ashareai/ashareai/internal/providers/sina"
)

// RegisterAll creates and registers all available providers with the
// global registry. Both sources are free and need no credentials.
func RegisterAll() error {
	return RegisterAllTo(provider.Global())
}

// RegisterAllTo registers all available providers to the given registry.
// Eastmoney is registered first so it stays the default for the models
// both sources could serve.
func RegisterAllTo(reg *provider.Registry) error {
	if err := reg.Register(eastmoney.New()); err != nil {
		return err
	}
	if err := reg.Register(sina.New()); err != nil {
		return err
	}
	return nil
}
