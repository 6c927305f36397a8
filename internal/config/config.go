// Package config loads the studio backend settings from the environment.
//
// Every variable has a default. A variable that is set but cannot be parsed
// is an error, as is any section that fails validation; Load reports all of
// them at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig lists the origins allowed to call the API. Empty allows all.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// RateConfig is the per-visitor token bucket policy. Writes have their own
// bucket.
type RateConfig struct {
	RPS        float64 // RATE_RPS
	Burst      int     // RATE_BURST
	WriteRPS   float64 // RATE_WRITE_RPS
	WriteBurst int     // RATE_WRITE_BURST
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AdminConfig gates the admin console. The key comparison is a convenience
// gate for the studio operators, not an authentication system.
type AdminConfig struct {
	Key      string        // ADMIN_KEY
	JWTKey   string        // JWT_SECRET
	TokenTTL time.Duration // ADMIN_TOKEN_TTL
}

// PushConfig defines the push-notification collaborator (FCM legacy HTTP API).
type PushConfig struct {
	Endpoint  string        // FCM_ENDPOINT
	ServerKey string        // FCM_SERVER_KEY; empty keeps delivery in simulation
	Timeout   time.Duration // PUSH_TIMEOUT
	IconURL   string        // PUSH_ICON_URL
}

// FeedConfig defines change-feed fan-out settings.
type FeedConfig struct {
	RedisURL string // REDIS_URL; empty disables the cross-instance relay
	Channel  string // FEED_CHANNEL
	Buffer   int    // FEED_BUFFER, per-subscription queue length
}

// WidgetConfig carries the timings used by the client-side widgets.
type WidgetConfig struct {
	NotifyTTL   time.Duration // NOTIFY_TTL
	TypingDelay time.Duration // AUTOREPLY_TYPING_DELAY
	ReplyDelay  time.Duration // AUTOREPLY_DELAY
}

// Config holds all configuration values for the application.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DBPath         string
	IdempotencyTTL time.Duration

	Rate     RateConfig
	CORS     CORSConfig
	Security SecurityConfig

	Admin  AdminConfig
	Push   PushConfig
	Feed   FeedConfig
	Widget WidgetConfig

	OTEL OTELConfig
}

// MustLoad is Load for main; it panics on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, applies defaults and normalization, and
// validates the result.
func Load() (Config, error) {
	var e env
	cfg := Config{
		Port:              e.str("PORT", "8080"),
		ReadTimeout:       e.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.dur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.dur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(e.str("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(e.str("LOG_LEVEL", "info")),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/api/v1")),

		DBPath:         e.str("DB_PATH", "studio.db"),
		IdempotencyTTL: e.dur("IDEMPOTENCY_TTL", 24*time.Hour),

		Rate: RateConfig{
			RPS:        e.number("RATE_RPS", 5),
			Burst:      e.integer("RATE_BURST", 10),
			WriteRPS:   e.number("RATE_WRITE_RPS", 0.5),
			WriteBurst: e.integer("RATE_WRITE_BURST", 5),
		},
		CORS: CORSConfig{AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Admin: AdminConfig{
			Key:      e.str("ADMIN_KEY", ""),
			JWTKey:   e.str("JWT_SECRET", ""),
			TokenTTL: e.dur("ADMIN_TOKEN_TTL", 12*time.Hour),
		},
		Push: PushConfig{
			Endpoint:  e.str("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			ServerKey: e.str("FCM_SERVER_KEY", ""),
			Timeout:   e.dur("PUSH_TIMEOUT", 10*time.Second),
			IconURL:   e.str("PUSH_ICON_URL", ""),
		},
		Feed: FeedConfig{
			RedisURL: e.str("REDIS_URL", ""),
			Channel:  e.str("FEED_CHANNEL", "studio:feed"),
			Buffer:   e.integer("FEED_BUFFER", 256),
		},
		Widget: WidgetConfig{
			NotifyTTL:   e.dur("NOTIFY_TTL", 5*time.Second),
			TypingDelay: e.dur("AUTOREPLY_TYPING_DELAY", time.Second),
			ReplyDelay:  e.dur("AUTOREPLY_DELAY", 3*time.Second),
		},

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "studio-backend"),
			SampleRatio: e.number("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	err := errors.Join(
		errors.Join(e.errs...),
		cfg.validateServer(),
		cfg.Rate.validate(),
		cfg.Admin.validate(),
		cfg.Push.validate(),
		cfg.Feed.validate(),
		cfg.Widget.validate(),
		cfg.OTEL.validate(),
	)
	return cfg, err
}

func (c Config) validateServer() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive durations"))
	}
	if c.MaxHeaderBytes <= 0 {
		errs = append(errs, errors.New("MAX_HEADER_BYTES must be > 0"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be > 0"))
	}
	if c.Security.HSTSMaxAge < 0 {
		errs = append(errs, errors.New("HSTS_MAX_AGE must be >= 0"))
	}
	return errors.Join(errs...)
}

func (r RateConfig) validate() error {
	var errs []error
	if r.RPS < 0 || r.WriteRPS < 0 {
		errs = append(errs, errors.New("RATE_RPS and RATE_WRITE_RPS must be >= 0"))
	}
	if r.Burst < 1 || r.WriteBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST and RATE_WRITE_BURST must be >= 1"))
	}
	return errors.Join(errs...)
}

func (a AdminConfig) validate() error {
	var errs []error
	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_TOKEN_TTL must be > 0"))
	}
	if a.Key != "" && strings.TrimSpace(a.JWTKey) == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set when ADMIN_KEY is set"))
	}
	return errors.Join(errs...)
}

func (p PushConfig) validate() error {
	if p.Timeout <= 0 {
		return errors.New("PUSH_TIMEOUT must be > 0")
	}
	return nil
}

func (f FeedConfig) validate() error {
	var errs []error
	if f.Buffer < 1 {
		errs = append(errs, errors.New("FEED_BUFFER must be >= 1"))
	}
	if strings.TrimSpace(f.Channel) == "" {
		errs = append(errs, errors.New("FEED_CHANNEL must not be empty"))
	}
	return errors.Join(errs...)
}

func (w WidgetConfig) validate() error {
	if w.NotifyTTL <= 0 || w.TypingDelay < 0 || w.ReplyDelay < 0 {
		return errors.New("widget timings must be non-negative (NOTIFY_TTL > 0)")
	}
	return nil
}

func (o OTELConfig) validate() error {
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// env reads variables and remembers the ones it could not parse. Unset and
// empty variables take the default.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (e *env) bad(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q is not a valid %s", k, v, want))
}

func (e *env) str(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func (e *env) number(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.bad(k, v, "number")
		return def
	}
	return f
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.bad(k, v, "integer")
		return def
	}
	return i
}

func (e *env) flag(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.bad(k, v, "boolean")
	return def
}

func (e *env) dur(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.bad(k, v, "duration")
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips trailing ones, except
// for the root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
