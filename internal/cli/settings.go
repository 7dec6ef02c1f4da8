package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/internal/logger"
	"github.com/rustyeddy/fxrisk/internal/telemetry"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/secrets"
)

// RootConfig holds the persistent flags. Defaults come from the FXRISK_*
// environment variables.
type RootConfig struct {
	Env         string `env:"FXRISK_ENV" envDefault:"dev"`
	ConfigDir   string `env:"FXRISK_CONFIG_DIR"`
	LogLevel    string `env:"FXRISK_LOG_LEVEL" envDefault:"info"`
	LogJSON     bool   `env:"FXRISK_LOG_JSON"`
	NoColor     bool
	DBPath      string `env:"FXRISK_DB" envDefault:"./fxrisk.sqlite"`
	MetricsFile string `env:"FXRISK_METRICS_FILE"`

	secrets secrets.Store
}

func loadRootConfig(environ map[string]string) (*RootConfig, error) {
	rc := &RootConfig{}
	if err := env.ParseWithOptions(rc, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	rc.secrets = secrets.NewEnvStoreFrom(environ)
	return rc, nil
}

// pipeline loads and validates the configuration for rc.Env.
func (rc *RootConfig) pipeline() (*config.Pipeline, error) {
	return config.Load(rc.Env, rc.ConfigDir)
}

func (rc *RootConfig) logger(w io.Writer) *logger.Logger {
	return logger.New("fxrisk", logger.Options{
		Level:   rc.LogLevel,
		Console: !rc.LogJSON,
		NoColor: rc.NoColor,
		Out:     w,
	})
}

func (rc *RootConfig) journal() (*journal.SQLite, error) {
	if dir := filepath.Dir(rc.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	j, err := journal.NewSQLite(rc.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", rc.DBPath, err)
	}
	return j, nil
}

// writeMetrics exports m when --metrics-file is set. Failures are logged,
// not returned, so they never mask the job result.
func (rc *RootConfig) writeMetrics(m *telemetry.Metrics, log *logger.Logger) {
	if rc.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(rc.MetricsFile); err != nil {
		log.Warn().Err(err).Str("path", rc.MetricsFile).Msg("write metrics")
	}
}
