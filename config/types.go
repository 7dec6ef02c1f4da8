package config

// Document is the typed form of the merged pipeline configuration.
type Document struct {
	Databricks         DatabricksConfig             `json:"databricks" yaml:"databricks"`
	Storage            StorageConfig                `json:"storage" yaml:"storage"`
	Currencies         CurrenciesConfig             `json:"currencies" yaml:"currencies"`
	VaR                VaRConfig                    `json:"var_parameters" yaml:"var_parameters"`
	Pipeline           PipelineMeta                 `json:"pipeline" yaml:"pipeline"`
	API                APIConfig                    `json:"api" yaml:"api"`
	PositionGeneration PositionGenerationConfig     `json:"position_generation" yaml:"position_generation"`
	Layers             map[string]map[string]string `json:"layers" yaml:"layers"`
}

// DatabricksConfig names the catalog and schema tables live in.
type DatabricksConfig struct {
	Catalog  string `json:"catalog" yaml:"catalog" validate:"required"`
	Schema   string `json:"schema" yaml:"schema" validate:"required"`
	Username string `json:"username" yaml:"username"`
}

// StorageConfig holds the landing paths for raw files and inferred schemas.
type StorageConfig struct {
	BasePath string       `json:"base_path" yaml:"base_path" validate:"required"`
	RawData  DatasetPaths `json:"raw_data" yaml:"raw_data"`
	Schemas  DatasetPaths `json:"schemas" yaml:"schemas"`
}

// DatasetPaths is one path per dataset under storage.
type DatasetPaths struct {
	FXRates   string `json:"fx_rates" yaml:"fx_rates" validate:"required"`
	Positions string `json:"positions" yaml:"positions" validate:"required"`
}

// CurrenciesConfig lists the pairs to extract, in configuration order.
type CurrenciesConfig struct {
	Pairs []CurrencyPair `json:"pairs" yaml:"pairs" validate:"min=1,dive"`
}

// CurrencyPair describes one traded pair, e.g. EURUSD / "EUR/USD".
type CurrencyPair struct {
	Symbol           string  `json:"symbol" yaml:"symbol" validate:"required"`
	Name             string  `json:"name" yaml:"name" validate:"required"`
	BaseCurrency     string  `json:"base_currency" yaml:"base_currency"`
	QuoteCurrency    string  `json:"quote_currency" yaml:"quote_currency"`
	LiquidityTier    string  `json:"liquidity_tier" yaml:"liquidity_tier"`
	BasePositionSize float64 `json:"base_position_size" yaml:"base_position_size" validate:"gte=0"`
	IsUSDQuote       bool    `json:"is_usd_quote" yaml:"is_usd_quote"`
}

// VaRConfig carries the parameters of the downstream VaR calculation.
type VaRConfig struct {
	ConfidenceLevel        float64 `json:"confidence_level" yaml:"confidence_level" validate:"gt=0,lt=1"`
	PercentileLong         float64 `json:"percentile_long" yaml:"percentile_long"`
	PercentileShort        float64 `json:"percentile_short" yaml:"percentile_short"`
	LookbackDays           int     `json:"lookback_days" yaml:"lookback_days" validate:"gt=0"`
	LookbackIntervalDays   int     `json:"lookback_interval_days" yaml:"lookback_interval_days" validate:"gt=0"`
	MinimumDataDate        string  `json:"minimum_data_date" yaml:"minimum_data_date" validate:"required,datetime=2006-01-02"`
	ReturnAnomalyThreshold float64 `json:"return_anomaly_threshold" yaml:"return_anomaly_threshold" validate:"gte=0"`
}

// PipelineMeta identifies the pipeline and the timezone used for "today".
type PipelineMeta struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Timezone string `json:"timezone" yaml:"timezone" validate:"required,timezone"`
	Version  string `json:"version" yaml:"version"`
}

// APIConfig groups the external API settings.
type APIConfig struct {
	Polygon PolygonConfig `json:"polygon" yaml:"polygon"`
}

// PolygonConfig names where the API key lives; it never holds the key.
type PolygonConfig struct {
	SecretScope string `json:"secret_scope" yaml:"secret_scope" validate:"required"`
	SecretKey   string `json:"secret_key" yaml:"secret_key" validate:"required"`
	BaseURL     string `json:"base_url" yaml:"base_url" validate:"required,url"`
}

// PositionGenerationConfig drives the simulated positions job.
type PositionGenerationConfig struct {
	Desk            string              `json:"desk" yaml:"desk" validate:"required"`
	DirectionBias   DirectionBiasConfig `json:"direction_bias" yaml:"direction_bias"`
	FlatProbability float64             `json:"flat_probability" yaml:"flat_probability" validate:"gte=0,lte=1"`
	RandomWalk      RandomWalkConfig    `json:"random_walk" yaml:"random_walk"`
}

// DirectionBiasConfig holds the LONG and SHORT probabilities of a non-flat
// position.
type DirectionBiasConfig struct {
	LongProbability  float64 `json:"long_probability" yaml:"long_probability" validate:"gte=0,lte=1"`
	ShortProbability float64 `json:"short_probability" yaml:"short_probability" validate:"gte=0,lte=1"`
}

// RandomWalkConfig bounds the random walk as a fraction of the base size.
type RandomWalkConfig struct {
	MaxDeviation float64 `json:"max_deviation" yaml:"max_deviation" validate:"gte=0"`
}

// BasePosition is a pair name with its base position size.
type BasePosition struct {
	Name string
	Size float64
}
