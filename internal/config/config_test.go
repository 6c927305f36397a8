package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
	if cfg.Port != "8080" || cfg.APIBasePath != "/api/v1" || cfg.DBPath != "studio.db" || cfg.GinMode != "release" {
		t.Fatalf("server defaults: %+v", cfg)
	}
	if cfg.Rate != (RateConfig{RPS: 5, Burst: 10, WriteRPS: 0.5, WriteBurst: 5}) {
		t.Fatalf("rate defaults: %+v", cfg.Rate)
	}
	if cfg.Feed.RedisURL != "" || cfg.Feed.Channel != "studio:feed" || cfg.Feed.Buffer != 256 {
		t.Fatalf("feed defaults: %+v", cfg.Feed)
	}
	if cfg.Widget != (WidgetConfig{NotifyTTL: 5 * time.Second, TypingDelay: time.Second, ReplyDelay: 3 * time.Second}) {
		t.Fatalf("widget defaults: %+v", cfg.Widget)
	}
	if cfg.Admin.Key != "" || cfg.Admin.TokenTTL != 12*time.Hour {
		t.Fatalf("admin defaults: %+v", cfg.Admin)
	}
	if cfg.CORS.AllowedOrigins != nil {
		t.Fatalf("cors default should allow all: %#v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := map[string]string{
		"PORT":                        "8088",
		"READ_TIMEOUT":                "2s",
		"MAX_HEADER_BYTES":            "8192",
		"GIN_MODE":                    "weird",
		"LOG_LEVEL":                   "WARNING",
		"LOG_PRETTY":                  " yes ",
		"SWAGGER_ENABLED":             "on",
		"API_BASE_PATH":               "studio/v2/",
		"DB_PATH":                     "db.sqlite",
		"RATE_RPS":                    "2.5",
		"RATE_WRITE_BURST":            "3",
		"CORS_ALLOWED_ORIGINS":        " https://xevon.studio , , http://localhost:5173 ",
		"ENABLE_HSTS":                 "TRUE",
		"HSTS_MAX_AGE":                "24h",
		"IDEMPOTENCY_TTL":             "48h",
		"ADMIN_KEY":                   "studio-key",
		"JWT_SECRET":                  "s3cret",
		"ADMIN_TOKEN_TTL":             "2h",
		"FCM_SERVER_KEY":              "srv",
		"PUSH_TIMEOUT":                "3s",
		"REDIS_URL":                   "redis://localhost:6379/0",
		"FEED_BUFFER":                 "16",
		"AUTOREPLY_DELAY":             "20ms",
		"OTEL_ENABLED":                "1",
		"OTEL_EXPORTER_OTLP_INSECURE": "off",
		"OTEL_TRACES_SAMPLER_ARG":     "0.25",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.ReadTimeout != 2*time.Second || cfg.MaxHeaderBytes != 8192 || cfg.GinMode != "release" {
		t.Fatalf("server: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/studio/v2" {
		t.Fatalf("logging/docs: %+v", cfg)
	}
	if cfg.Rate != (RateConfig{RPS: 2.5, Burst: 10, WriteRPS: 0.5, WriteBurst: 3}) {
		t.Fatalf("rate: %+v", cfg.Rate)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://xevon.studio", "http://localhost:5173"}) {
		t.Fatalf("cors: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour || cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("security/idempotency: %+v", cfg)
	}
	if cfg.Admin != (AdminConfig{Key: "studio-key", JWTKey: "s3cret", TokenTTL: 2 * time.Hour}) {
		t.Fatalf("admin: %+v", cfg.Admin)
	}
	if cfg.Push.ServerKey != "srv" || cfg.Push.Timeout != 3*time.Second || cfg.Push.Endpoint != "https://fcm.googleapis.com/fcm/send" {
		t.Fatalf("push: %+v", cfg.Push)
	}
	if cfg.Feed.RedisURL != "redis://localhost:6379/0" || cfg.Feed.Buffer != 16 {
		t.Fatalf("feed: %+v", cfg.Feed)
	}
	if cfg.Widget.ReplyDelay != 20*time.Millisecond || cfg.Widget.NotifyTTL != 5*time.Second {
		t.Fatalf("widget: %+v", cfg.Widget)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Insecure || cfg.OTEL.SampleRatio != 0.25 || cfg.OTEL.ServiceName != "studio-backend" {
		t.Fatalf("otel: %+v", cfg.OTEL)
	}
}

func TestLoad_MalformedValuesAreErrors(t *testing.T) {
	cases := map[string]string{
		"RATE_RPS":        "fast",
		"FEED_BUFFER":     "lots",
		"LOG_PRETTY":      "maybe",
		"PUSH_TIMEOUT":    "soon",
		"ADMIN_TOKEN_TTL": "12",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), k+"=") {
				t.Fatalf("expected parse error naming %s, got: %v", k, err)
			}
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"blank port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank db path", map[string]string{"DB_PATH": "  "}, "DB_PATH must not be empty"},
		{"idempotency ttl", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"hsts", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"negative write rps", map[string]string{"RATE_WRITE_RPS": "-1"}, "RATE_WRITE_RPS"},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"admin without secret", map[string]string{"ADMIN_KEY": "k", "JWT_SECRET": "  "}, "JWT_SECRET"},
		{"push timeout", map[string]string{"PUSH_TIMEOUT": "0s"}, "PUSH_TIMEOUT"},
		{"feed buffer", map[string]string{"FEED_BUFFER": "0"}, "FEED_BUFFER"},
		{"feed channel", map[string]string{"FEED_CHANNEL": " "}, "FEED_CHANNEL"},
		{"notify ttl", map[string]string{"NOTIFY_TTL": "0s"}, "NOTIFY_TTL"},
		{"sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("FEED_BUFFER", "0")
	t.Setenv("RATE_RPS", "x")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"LOG_LEVEL", "FEED_BUFFER", "RATE_RPS="} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("joined error missing %q: %v", want, err)
		}
	}
}

func TestMustLoad(t *testing.T) {
	if cfg := MustLoad(); cfg.APIBasePath == "" {
		t.Fatalf("empty config from MustLoad")
	}

	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if recover() == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestEnvFlagSpellings(t *testing.T) {
	var e env
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on"} {
		k := "STUDIO_FLAG_T" + string(rune('a'+i))
		t.Setenv(k, v)
		if !e.flag(k, false) {
			t.Fatalf("flag(%q) = false", v)
		}
	}
	for i, v := range []string{"0", "false", " no ", "N", "off"} {
		k := "STUDIO_FLAG_F" + string(rune('a'+i))
		t.Setenv(k, v)
		if e.flag(k, true) {
			t.Fatalf("flag(%q) = true", v)
		}
	}
	t.Setenv("STUDIO_FLAG_EMPTY", "")
	if !e.flag("STUDIO_FLAG_EMPTY", true) {
		t.Fatalf("empty value should take the default")
	}
	if len(e.errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", e.errs)
	}
}

func TestSplitCSVAndBasePath(t *testing.T) {
	if splitCSV("") != nil || splitCSV(" , ") != nil {
		t.Fatalf("blank lists should be nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV: %#v", got)
	}
	for in, want := range map[string]string{"": "/", " / ": "/", "v1": "/v1", "/v1/": "/v1", "//api//": "/api"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}
