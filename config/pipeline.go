package config

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline is a resolved, validated configuration for one environment. It
// is read-only once New or Load returns.
type Pipeline struct {
	environment string
	dir         string
	doc         Document
	merged      map[string]any
	location    *time.Location
}

// New merges override onto base and validates the result. It either
// returns a fully valid Pipeline or a *ConfigurationError.
func New(environment string, base, override map[string]any) (*Pipeline, error) {
	env, err := ParseEnvironment(environment)
	if err != nil {
		return nil, err
	}

	merged := normalize(Merge(base, override)).(map[string]any)

	if err := checkRequired(merged); err != nil {
		return nil, err
	}
	if err := checkPairs(merged); err != nil {
		return nil, err
	}
	if err := checkTypes(merged); err != nil {
		return nil, err
	}

	doc, err := decode(merged)
	if err != nil {
		return nil, err
	}
	if err := checkValues(&doc); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(doc.Pipeline.Timezone)
	if err != nil {
		return nil, &ConfigurationError{Kind: ErrInvalidValue, Path: "pipeline.timezone", Err: err}
	}

	return &Pipeline{
		environment: env,
		doc:         doc,
		merged:      merged,
		location:    loc,
	}, nil
}

func (p *Pipeline) Environment() string { return p.environment }

// Dir is the directory the documents were read from; empty for New.
func (p *Pipeline) Dir() string { return p.dir }

// Document returns a copy of the typed configuration.
func (p *Pipeline) Document() Document {
	d := p.doc
	d.Currencies.Pairs = p.CurrencyPairs()
	d.Layers = make(map[string]map[string]string, len(p.doc.Layers))
	for layer, tables := range p.doc.Layers {
		cp := make(map[string]string, len(tables))
		for k, v := range tables {
			cp[k] = v
		}
		d.Layers[layer] = cp
	}
	return d
}

// Databricks

func (p *Pipeline) Catalog() string { return p.doc.Databricks.Catalog }
func (p *Pipeline) Schema() string { return p.doc.Databricks.Schema }
func (p *Pipeline) Username() string { return p.doc.Databricks.Username }

// FullyQualifiedSchema returns "catalog.schema".
func (p *Pipeline) FullyQualifiedSchema() string {
	return p.Catalog() + "." + p.Schema()
}

// Storage

func (p *Pipeline) BasePath() string { return p.doc.Storage.BasePath }
func (p *Pipeline) FXRatesRawPath() string { return p.doc.Storage.RawData.FXRates }
func (p *Pipeline) PositionsRawPath() string { return p.doc.Storage.RawData.Positions }
func (p *Pipeline) FXRatesSchemaPath() string { return p.doc.Storage.Schemas.FXRates }
func (p *Pipeline) PositionsSchemaPath() string { return p.doc.Storage.Schemas.Positions }

// VaR parameters

func (p *Pipeline) VaRConfidenceLevel() float64 { return p.doc.VaR.ConfidenceLevel }
func (p *Pipeline) VaRPercentileLong() float64 { return p.doc.VaR.PercentileLong }
func (p *Pipeline) VaRPercentileShort() float64 { return p.doc.VaR.PercentileShort }
func (p *Pipeline) LookbackDays() int { return p.doc.VaR.LookbackDays }
func (p *Pipeline) LookbackIntervalDays() int { return p.doc.VaR.LookbackIntervalDays }
func (p *Pipeline) MinimumDataDate() string { return p.doc.VaR.MinimumDataDate }
func (p *Pipeline) ReturnAnomalyThreshold() float64 { return p.doc.VaR.ReturnAnomalyThreshold }

// Pipeline metadata

func (p *Pipeline) PipelineName() string { return p.doc.Pipeline.Name }
func (p *Pipeline) PipelineTimezone() string { return p.doc.Pipeline.Timezone }
func (p *Pipeline) PipelineVersion() string { return p.doc.Pipeline.Version }

// Location is pipeline.timezone resolved to a *time.Location.
func (p *Pipeline) Location() *time.Location { return p.location }

// Today returns the current date in the pipeline timezone as YYYY-MM-DD.
func (p *Pipeline) Today(now time.Time) string {
	return now.In(p.location).Format(time.DateOnly)
}

// API

func (p *Pipeline) PolygonSecretScope() string { return p.doc.API.Polygon.SecretScope }
func (p *Pipeline) PolygonSecretKey() string { return p.doc.API.Polygon.SecretKey }
func (p *Pipeline) PolygonBaseURL() string { return p.doc.API.Polygon.BaseURL }

// Position generation

func (p *Pipeline) Desk() string { return p.doc.PositionGeneration.Desk }
func (p *Pipeline) LongProbability() float64 {
	return p.doc.PositionGeneration.DirectionBias.LongProbability
}
func (p *Pipeline) ShortProbability() float64 {
	return p.doc.PositionGeneration.DirectionBias.ShortProbability
}
func (p *Pipeline) FlatProbability() float64 { return p.doc.PositionGeneration.FlatProbability }
func (p *Pipeline) MaxDeviation() float64 { return p.doc.PositionGeneration.RandomWalk.MaxDeviation }

// Currency pairs

// CurrencyPairs returns the configured pairs in declared order.
func (p *Pipeline) CurrencyPairs() []CurrencyPair {
	out := make([]CurrencyPair, len(p.doc.Currencies.Pairs))
	copy(out, p.doc.Currencies.Pairs)
	return out
}

func (p *Pipeline) CurrencySymbols() []string {
	out := make([]string, 0, len(p.doc.Currencies.Pairs))
	for _, cp := range p.doc.Currencies.Pairs {
		out = append(out, cp.Symbol)
	}
	return out
}

func (p *Pipeline) CurrencyNames() []string {
	out := make([]string, 0, len(p.doc.Currencies.Pairs))
	for _, cp := range p.doc.Currencies.Pairs {
		out = append(out, cp.Name)
	}
	return out
}

// BasePositions maps pair name to base position size. When two pairs share
// a name the later one wins.
func (p *Pipeline) BasePositions() map[string]float64 {
	out := make(map[string]float64, len(p.doc.Currencies.Pairs))
	for _, cp := range p.doc.Currencies.Pairs {
		out[cp.Name] = cp.BasePositionSize
	}
	return out
}

// OrderedBasePositions holds the same entries as BasePositions, ordered by
// the first appearance of each name.
func (p *Pipeline) OrderedBasePositions() []BasePosition {
	index := make(map[string]int, len(p.doc.Currencies.Pairs))
	out := make([]BasePosition, 0, len(p.doc.Currencies.Pairs))
	for _, cp := range p.doc.Currencies.Pairs {
		if i, ok := index[cp.Name]; ok {
			out[i].Size = cp.BasePositionSize
			continue
		}
		index[cp.Name] = len(out)
		out = append(out, BasePosition{Name: cp.Name, Size: cp.BasePositionSize})
	}
	return out
}

// CurrencyPair returns the first pair whose symbol matches.
func (p *Pipeline) CurrencyPair(symbol string) (CurrencyPair, bool) {
	for _, cp := range p.doc.Currencies.Pairs {
		if cp.Symbol == symbol {
			return cp, true
		}
	}
	return CurrencyPair{}, false
}

// Tables

// TableName returns "catalog.schema.table" for layers[layer][table].
func (p *Pipeline) TableName(layer, table string) (string, error) {
	name, err := p.layerTable(layer, table)
	if err != nil {
		return "", err
	}
	return p.FullyQualifiedSchema() + "." + name, nil
}

func (p *Pipeline) layerTable(layer, table string) (string, error) {
	tables, ok := p.doc.Layers[layer]
	if !ok {
		return "", newError(ErrUnknownTable, "layers."+layer, "unknown layer")
	}
	name, ok := tables[table]
	if !ok {
		return "", newError(ErrUnknownTable, "layers."+layer+"."+table, "")
	}
	if name == "" {
		return "", newError(ErrUnknownTable, "layers."+layer+"."+table, "empty table name")
	}
	return name, nil
}

// sqlTables are the layer tables exposed through SQLParameters.
var sqlTables = []struct{ param, layer, table string }{
	{"bronze_fx_rates", "bronze", "fx_rates"},
	{"bronze_positions", "bronze", "positions"},
	{"silver_fx_rates", "silver", "fx_rates"},
	{"silver_fx_rates_staging", "silver", "fx_rates_staging"},
	{"silver_fx_returns", "silver", "fx_returns"},
	{"silver_positions", "silver", "positions"},
	{"gold_var", "gold", "var"},
}

// SQLParameters bundles the values SQL transformations are parameterised
// with.
func (p *Pipeline) SQLParameters() (map[string]any, error) {
	params := map[string]any{
		"catalog":                  p.Catalog(),
		"schema":                   p.Schema(),
		"fully_qualified_schema":   p.FullyQualifiedSchema(),
		"fx_rates_raw_path":        p.FXRatesRawPath(),
		"positions_raw_path":       p.PositionsRawPath(),
		"fx_rates_schema_path":     p.FXRatesSchemaPath(),
		"positions_schema_path":    p.PositionsSchemaPath(),
		"confidence_level":         p.VaRConfidenceLevel(),
		"percentile_long":          p.VaRPercentileLong(),
		"percentile_short":         p.VaRPercentileShort(),
		"lookback_days":            p.LookbackDays(),
		"lookback_interval_days":   p.LookbackIntervalDays(),
		"minimum_data_date":        p.MinimumDataDate(),
		"return_anomaly_threshold": p.ReturnAnomalyThreshold(),
	}
	for _, t := range sqlTables {
		name, err := p.layerTable(t.layer, t.table)
		if err != nil {
			return nil, err
		}
		params[t.param] = name
	}
	return params, nil
}

// Generic access

// Get returns the value at a dotted path of the merged document, or def if
// any segment is missing or a non-mapping is reached first.
func (p *Pipeline) Get(path string, def any) any {
	v, ok := lookup(p.merged, path)
	if !ok {
		return def
	}
	return cloneValue(v)
}

// AsMap returns a deep copy of the merged document.
func (p *Pipeline) AsMap() map[string]any {
	return cloneValue(p.merged).(map[string]any)
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(environment=%s, catalog=%s, schema=%s)",
		p.environment, p.Catalog(), p.Schema())
}

// Summary is a short multi-line description used by the CLI.
func (p *Pipeline) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Environment: %s\n", p.environment)
	fmt.Fprintf(&b, "  Schema: %s\n", p.FullyQualifiedSchema())
	fmt.Fprintf(&b, "  Pipeline: %s %s (%s)\n", p.PipelineName(), p.PipelineVersion(), p.PipelineTimezone())
	fmt.Fprintf(&b, "  Pairs: %s\n", strings.Join(p.CurrencySymbols(), ", "))
	fmt.Fprintf(&b, "  Desk: %s\n", p.Desk())
	return b.String()
}
