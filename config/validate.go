package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RequiredFields is checked in order against the merged document, so the
// first missing path reported is always the same for a given input.
var RequiredFields = []string{
	"databricks.catalog",
	"databricks.schema",
	"storage.base_path",
	"currencies.pairs",
	"var_parameters.confidence_level",

	// Dereferenced unconditionally by the extraction and position jobs.
	"databricks.username",
	"storage.raw_data.fx_rates",
	"storage.raw_data.positions",
	"storage.schemas.fx_rates",
	"storage.schemas.positions",
	"var_parameters.percentile_long",
	"var_parameters.percentile_short",
	"var_parameters.lookback_days",
	"var_parameters.lookback_interval_days",
	"var_parameters.minimum_data_date",
	"var_parameters.return_anomaly_threshold",
	"pipeline.name",
	"pipeline.timezone",
	"pipeline.version",
	"api.polygon.secret_scope",
	"api.polygon.secret_key",
	"api.polygon.base_url",
	"position_generation.desk",
	"position_generation.direction_bias.long_probability",
	"position_generation.direction_bias.short_probability",
	"position_generation.flat_probability",
	"position_generation.random_walk.max_deviation",
}

const pairsPath = "currencies.pairs"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// checkRequired reports the first entry of RequiredFields absent from doc.
func checkRequired(doc map[string]any) error {
	for _, path := range RequiredFields {
		if _, ok := lookup(doc, path); !ok {
			return newError(ErrMissingField, path, "")
		}
	}
	return nil
}

// checkPairs enforces the shape of currencies.pairs before it is decoded.
func checkPairs(doc map[string]any) error {
	v, _ := lookup(doc, pairsPath)
	pairs, ok := v.([]any)
	if !ok {
		return newError(ErrPairsType, pairsPath, "got "+kindOf(v))
	}
	if len(pairs) == 0 {
		return newError(ErrPairsEmpty, pairsPath, "")
	}

	for i, p := range pairs {
		m, ok := p.(map[string]any)
		if !ok {
			return newError(ErrInvalidValue, fmt.Sprintf("%s[%d]", pairsPath, i), "got "+kindOf(p)+", want a mapping")
		}
		for _, field := range []string{"symbol", "name"} {
			if _, ok := m[field]; !ok {
				return newError(ErrMissingField, fmt.Sprintf("%s[%d].%s", pairsPath, i, field), "")
			}
		}
	}
	return nil
}

// checkTypes walks doc alongside the Document schema and reports the first
// value that cannot populate its field. Numbers are not accepted for text
// fields: version 1.0 would otherwise come back as "1".
func checkTypes(doc map[string]any) error {
	return checkType(reflect.TypeFor[Document](), doc, "")
}

func checkType(t reflect.Type, v any, path string) error {
	if v == nil {
		return nil
	}
	mismatch := func(want string) error {
		return newError(ErrParse, path, fmt.Sprintf("got %s %v, want %s", kindOf(v), v, want))
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch("a mapping")
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			fv, ok := m[name]
			if name == "" || name == "-" || !ok {
				continue
			}
			if err := checkType(f.Type, fv, joinPath(path, name)); err != nil {
				return err
			}
		}
	case reflect.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch("a mapping")
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := checkType(t.Elem(), m[k], joinPath(path, k)); err != nil {
				return err
			}
		}
	case reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			return mismatch("a list")
		}
		for i, item := range items {
			if err := checkType(t.Elem(), item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.String:
		if _, ok := v.(string); !ok {
			return mismatch("a string (quote the value)")
		}
	case reflect.Int:
		switch n := v.(type) {
		case int, int64, uint64:
		case float64:
			if n != math.Trunc(n) {
				return mismatch("an integer")
			}
		default:
			return mismatch("an integer")
		}
	case reflect.Float64:
		switch v.(type) {
		case int, int64, uint64, float64:
		default:
			return mismatch("a number")
		}
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			return mismatch("a boolean")
		}
	}
	return nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// decode maps the merged document onto Document.
func decode(doc map[string]any) (Document, error) {
	var out Document
	data, err := yaml.Marshal(doc)
	if err != nil {
		return out, &ConfigurationError{Kind: ErrParse, Detail: "re-encode merged document", Err: err}
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, &ConfigurationError{Kind: ErrParse, Detail: "merged document does not match schema", Err: err}
	}
	return out, nil
}

// checkValues runs the struct tag rules on d and reports the first failure
// by its dotted yaml path.
func checkValues(d *Document) error {
	err := structValidator().Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Kind: ErrInvalidValue, Err: err}
	}

	fe := verrs[0]
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	detail := fmt.Sprintf("failed %q check", fe.Tag())
	if fe.Param() != "" {
		detail = fmt.Sprintf("failed %q check with %s", fe.Tag(), fe.Param())
	}
	return newError(ErrInvalidValue, path, fmt.Sprintf("%s, got %v", detail, fe.Value()))
}
