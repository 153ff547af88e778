package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-structure/pkg/utils"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	Local        bool   `json:"local"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderPolygon: {
		Name:         string(provider.ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "Daily aggregates for US equities, ETFs and indices",
		RequiresAuth: true,
	},
	provider.ProviderBinance: {
		Name:         string(provider.ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Daily klines for cryptocurrency trading pairs",
		RequiresAuth: false,
	},
	provider.ProviderCSV: {
		Name:        string(provider.ProviderCSV),
		DisplayName: "CSV files",
		Description: "Local <ticker>.csv files with date and close columns",
		Local:       true,
	},
	provider.ProviderParquet: {
		Name:        string(provider.ProviderParquet),
		DisplayName: "Parquet files",
		Description: "Local <ticker>.parquet files read through DuckDB",
		Local:       true,
	},
}

// GetSupportedProviders returns the sorted names of all supported providers.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema of provider.ProviderConfig.
func GetProviderConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	return utils.GetSchemaFromConfig(provider.ProviderConfig{})
}
