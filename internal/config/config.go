package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	promconfig "github.com/prometheus/common/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	HawkularURL        = "HAWKULAR_URL"
	HawkularTenant     = "HAWKULAR_TENANT"
	HawkularHTTPConfig = "HAWKULAR_HTTP_CONFIG"
	LogLevel           = "LOG_LEVEL"
	TransportMode      = "TRANSPORT_MODE"
	ServerPort         = "MCP_SERVER_PORT"
	RefreshInterval    = "REFRESH_INTERVAL"
	FanoutLimit        = "FANOUT_LIMIT"
	RateLimit          = "RATE_LIMIT"
	OTLPEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	SegmentKey         = "SEGMENT_KEY"
)

const (
	ModeStdio = "stdio"
	ModeHTTP  = "http"

	DefaultURL             = "http://127.0.0.1:8080/hawkular/alerts"
	DefaultPort            = "8000"
	DefaultRefreshInterval = 5 * time.Second
	DefaultFanoutLimit     = 8
	DefaultRateLimit       = 20.0
)

// viper keys, each bound to one environment variable and one flag
const (
	keyURL             = "url"
	keyTenant          = "tenant"
	keyHTTPConfig      = "http-config"
	keyLogLevel        = "log-level"
	keyTransportMode   = "transport"
	keyPort            = "port"
	keyRefreshInterval = "refresh-interval"
	keyFanoutLimit     = "fanout-limit"
	keyRateLimit       = "rate-limit"
	keyOTLPEndpoint    = "otlp-endpoint"
	keySegmentKey      = "segment-key"
)

var envKeys = map[string]string{
	keyURL:             HawkularURL,
	keyTenant:          HawkularTenant,
	keyHTTPConfig:      HawkularHTTPConfig,
	keyLogLevel:        LogLevel,
	keyTransportMode:   TransportMode,
	keyPort:            ServerPort,
	keyRefreshInterval: RefreshInterval,
	keyFanoutLimit:     FanoutLimit,
	keyRateLimit:       RateLimit,
	keyOTLPEndpoint:    OTLPEndpoint,
	keySegmentKey:      SegmentKey,
}

type Config struct {
	URL             string
	Tenant          string
	HTTPConfigFile  string
	LogLevel        string
	TransportMode   string
	Port            string
	RefreshInterval time.Duration
	FanoutLimit     int
	RateLimit       float64
	OTLPEndpoint    string
	SegmentKey      string

	// HTTPConfig is parsed from HTTPConfigFile, nil when none is set.
	HTTPConfig *promconfig.HTTPClientConfig
}

// NewViper returns a viper instance with defaults and environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyURL, DefaultURL)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyTransportMode, ModeStdio)
	v.SetDefault(keyPort, DefaultPort)
	v.SetDefault(keyRefreshInterval, DefaultRefreshInterval)
	v.SetDefault(keyFanoutLimit, DefaultFanoutLimit)
	v.SetDefault(keyRateLimit, DefaultRateLimit)
	for key, env := range envKeys {
		// BindEnv only fails without arguments
		_ = v.BindEnv(key, env)
	}
	return v
}

// RegisterFlags adds the global flags to fs and binds them to v. Flags win
// over environment variables.
func RegisterFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String(keyURL, DefaultURL, "Hawkular Alerting base URL ($"+HawkularURL+")")
	fs.String(keyTenant, "", "tenant sent as Hawkular-Tenant ($"+HawkularTenant+")")
	fs.String(keyHTTPConfig, "", "YAML file with auth and TLS settings for the backend ($"+HawkularHTTPConfig+")")
	fs.String(keyLogLevel, "info", "log level: debug, info or error ($"+LogLevel+")")
	fs.String(keyTransportMode, ModeStdio, "MCP transport: stdio or http ($"+TransportMode+")")
	fs.String(keyPort, DefaultPort, "HTTP listen port ($"+ServerPort+")")
	fs.Duration(keyRefreshInterval, DefaultRefreshInterval, "dashboard refresh interval ($"+RefreshInterval+")")
	fs.Int(keyFanoutLimit, DefaultFanoutLimit, "concurrent detail requests per view ($"+FanoutLimit+")")
	fs.Float64(keyRateLimit, DefaultRateLimit, "backend requests per second, 0 disables ($"+RateLimit+")")
	fs.String(keyOTLPEndpoint, "", "OTLP gRPC endpoint for traces and metrics ($"+OTLPEndpoint+")")
	fs.String(keySegmentKey, "", "Segment write key for usage analytics ($"+SegmentKey+")")
	for key := range envKeys {
		if err := v.BindPFlag(key, fs.Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// LoadConfig reads the configuration from the environment only.
func LoadConfig() (*Config, error) {
	return Load(NewViper())
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		URL:             v.GetString(keyURL),
		Tenant:          v.GetString(keyTenant),
		HTTPConfigFile:  v.GetString(keyHTTPConfig),
		LogLevel:        v.GetString(keyLogLevel),
		TransportMode:   v.GetString(keyTransportMode),
		Port:            v.GetString(keyPort),
		RefreshInterval: v.GetDuration(keyRefreshInterval),
		FanoutLimit:     v.GetInt(keyFanoutLimit),
		RateLimit:       v.GetFloat64(keyRateLimit),
		OTLPEndpoint:    v.GetString(keyOTLPEndpoint),
		SegmentKey:      v.GetString(keySegmentKey),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.HTTPConfigFile != "" {
		httpCfg, err := LoadHTTPConfigFile(cfg.HTTPConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.HTTPConfig = httpCfg
	}
	return cfg, nil
}

// Validate checks values that would only fail later at request time.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("environment variable `%s` not set", HawkularURL)
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid `%s` %q: expected an http(s) URL", HawkularURL, c.URL)
	}
	switch c.TransportMode {
	case ModeStdio, ModeHTTP:
	default:
		return fmt.Errorf("invalid `%s` %q: use %s or %s", TransportMode, c.TransportMode, ModeStdio, ModeHTTP)
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid `%s` %q", ServerPort, c.Port)
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("invalid `%s` %s: must be at least 1s", RefreshInterval, c.RefreshInterval)
	}
	if c.FanoutLimit < 1 {
		return fmt.Errorf("invalid `%s` %d: must be positive", FanoutLimit, c.FanoutLimit)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid `%s` %v: must not be negative", RateLimit, c.RateLimit)
	}
	return nil
}

// LoadHTTPConfigFile parses a Prometheus style HTTP client config. Relative
// file references inside it resolve against the file's directory.
func LoadHTTPConfigFile(filename string) (*promconfig.HTTPClientConfig, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read http config: %w", err)
	}
	cfg := promconfig.DefaultHTTPClientConfig
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse http config %s: %w", filename, err)
	}
	cfg.SetDirectory(filepath.Dir(filename))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid http config %s: %w", filename, err)
	}
	return &cfg, nil
}
