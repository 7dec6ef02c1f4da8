package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BaseFile is the environment independent document every environment
// override is merged on top of.
const BaseFile = "pipeline_config.yaml"

// Environments lists the accepted environment names.
var Environments = []string{"dev", "prod"}

// ParseEnvironment normalises name to lower case and checks it is one of
// Environments.
func ParseEnvironment(name string) (string, error) {
	env := strings.ToLower(strings.TrimSpace(name))
	for _, e := range Environments {
		if env == e {
			return env, nil
		}
	}
	return "", newError(ErrInvalidEnvironment, "",
		fmt.Sprintf("got %q, want one of %s", name, strings.Join(Environments, ", ")))
}

// DefaultDir returns the config directory shipped next to the running
// binary, or ./config when that directory does not exist.
func DefaultDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "config")
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
	}
	return "config"
}

// Load reads pipeline_config.yaml and {environment}.yaml from dir, merges
// them and validates the result. An empty dir selects DefaultDir.
func Load(environment, dir string) (*Pipeline, error) {
	env, err := ParseEnvironment(environment)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = DefaultDir()
	}

	base, err := ReadDocument(filepath.Join(dir, BaseFile))
	if err != nil {
		return nil, err
	}
	override, err := ReadDocument(filepath.Join(dir, env+".yaml"))
	if err != nil {
		return nil, err
	}

	p, err := New(env, base, override)
	if err != nil {
		return nil, err
	}
	p.dir = dir
	return p, nil
}

// Value loads the configuration for environment and returns the value at
// path, or def when the path is absent.
func Value(environment, dir, path string, def any) (any, error) {
	p, err := Load(environment, dir)
	if err != nil {
		return nil, err
	}
	return p.Get(path, def), nil
}

// ReadDocument decodes a YAML file into a generic mapping. An empty or null
// document yields an empty mapping.
func ReadDocument(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrFileNotFound, path, "")
		}
		return nil, &ConfigurationError{Kind: ErrRead, Path: path, Err: err}
	}
	defer f.Close()

	return decodeDocument(f, path)
}

func decodeDocument(r io.Reader, name string) (map[string]any, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, &ConfigurationError{Kind: ErrParse, Path: name, Err: err}
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, newError(ErrParse, name, fmt.Sprintf("top-level document is %s, want a mapping", kindOf(raw)))
	}
	return doc, nil
}

// normalize converts the map[interface{}]interface{} yaml produces for
// non-string keys so the merge only has to deal with map[string]any. Unquoted
// timestamps are turned back into text: a bare date stays YYYY-MM-DD.
func normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		if h, m, sec := t.Clock(); h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339Nano)
	case map[string]any:
		for k, vv := range t {
			t[k] = normalize(vv)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[fmt.Sprint(k)] = normalize(vv)
		}
		return m
	case []any:
		for i, vv := range t {
			t[i] = normalize(vv)
		}
		return t
	default:
		return v
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any, map[any]any:
		return "a mapping"
	case []any:
		return "a list"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
