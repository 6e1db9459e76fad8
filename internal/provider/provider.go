// Package provider defines the data-provider abstraction: a Provider
// interface, a Fetcher interface for each standard model type, and a
// central registry that routes snapshot requests to the appropriate
// upstream source.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ModelType identifies a standard data model. Each ModelType maps to a
// concrete data shape in pkg/models.
type ModelType string

const (
	// ModelSpotSnapshot is the full A-share real-time snapshot,
	// one models.Quote per tradable instrument.
	ModelSpotSnapshot ModelType = "SpotSnapshot"

	// ModelSectorSnapshot is the industry board snapshot,
	// one models.Sector per sector.
	ModelSectorSnapshot ModelType = "SectorSnapshot"

	// ModelIndexQuote is the major-index quote list,
	// []models.IndexQuote.
	ModelIndexQuote ModelType = "IndexQuote"
)

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string      `json:"name"`        // e.g. "eastmoney", "sina"
	Description string      `json:"description"` // human-readable description
	Website     string      `json:"website"`
	Models      []ModelType `json:"models"` // supported standard models
}

// Provider is the interface all data providers implement. Each provider
// registers one Fetcher per supported model type.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Fetcher returns the fetcher for the given model type, or nil.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies upstream connectivity.
	Ping(ctx context.Context) error
}

// QueryParams is the generic parameter map passed to fetchers.
// Common keys:
//   - "code"     : 6-digit instrument code (e.g. "600519")
//   - "limit"    : max results
//   - "provider" : override provider name
type QueryParams map[string]string

const (
	ParamCode     = "code"
	ParamLimit    = "limit"
	ParamProvider = "provider"
)

// FetchResult wraps fetched data with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher retrieves one standard model type from one upstream source.
type Fetcher interface {
	// ModelType returns the standard model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// Fetch retrieves data for the given query parameters. The
	// concrete type of FetchResult.Data depends on the model:
	//   SpotSnapshot   → []models.Quote
	//   SectorSnapshot → []models.Sector
	//   IndexQuote     → []models.IndexQuote
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider has no fetcher for a model.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ValidateParams checks that all required parameters are present.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
