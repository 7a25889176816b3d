package observability

import (
	"strings"

	"github.com/smallbiznis/mensaplan/internal/config"
)

// Config is the slice of application config the telemetry stack consumes.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "mensaplan"
	}
	t := cfg.Telemetry
	return Config{
		ServiceName:          name,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             t.LogLevel,
		LogFormat:            t.LogFormat,
		OtelEnabled:          t.OTelEnabled,
		OtelExporterEndpoint: t.OTLPEndpoint,
		OtelExporterProtocol: t.OTLPProtocol,
		OtelSamplingRatio:    t.SamplingRatio,
	}
}

// Debug reports whether verbose request logging should be on.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
