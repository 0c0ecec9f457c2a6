package conf

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

const (
	defaultBindAddress     = ":8080"
	defaultSkebUrl         = "https://skeb.jp"
	defaultRequestTimeout  = 15
	defaultRateLimit       = 6
	defaultWindowInSec     = 60
	defaultMaxIdentities   = 8192
)

type Local struct {
	BindAddress         string
	SkebUrls            []string
	RequestTimeoutInSec int
	RateLimit           RateLimit
	Redis               *Redis
	Logging             Logging
}

type RateLimit struct {
	MaxRequests int
	WindowInSec int
	// MaxTrackedIdentities bounds the in-memory window table.
	// Ignored when redis is configured.
	MaxTrackedIdentities int
	// TrustForwardedFor must be enabled only when the service is
	// deployed behind a trusted reverse proxy. Otherwise the client
	// identity is the transport-level peer address.
	TrustForwardedFor bool
}

type Redis struct {
	Address  string
	Username string
	Password string
}

type Logging struct {
	LogLevel         log.Level
	RequestLogEnable bool
}

// Load reads configuration from the environment, with a best-effort
// .env file on top.
func Load() (Local, error) {
	_ = godotenv.Load(".env")

	logLevel, err := parseLogLevel(getOr("LOG_LEVEL", "info"))
	if err != nil {
		return Local{}, err
	}

	requestTimeout, err := intOr("REQUEST_TIMEOUT_IN_SEC", defaultRequestTimeout)
	if err != nil {
		return Local{}, err
	}
	maxRequests, err := intOr("RATE_LIMIT_MAX_REQUESTS", defaultRateLimit)
	if err != nil {
		return Local{}, err
	}
	windowInSec, err := intOr("RATE_LIMIT_WINDOW_IN_SEC", defaultWindowInSec)
	if err != nil {
		return Local{}, err
	}
	maxIdentities, err := intOr("RATE_LIMIT_MAX_IDENTITIES", defaultMaxIdentities)
	if err != nil {
		return Local{}, err
	}

	cfg := Local{
		BindAddress:         getOr("BIND_ADDRESS", defaultBindAddress),
		SkebUrls:            splitList(getOr("SKEB_API_URLS", defaultSkebUrl)),
		RequestTimeoutInSec: requestTimeout,
		RateLimit: RateLimit{
			MaxRequests:          maxRequests,
			WindowInSec:          windowInSec,
			MaxTrackedIdentities: maxIdentities,
			TrustForwardedFor:    strings.EqualFold(getOr("TRUST_FORWARDED_FOR", "true"), "true"),
		},
		Logging: Logging{
			LogLevel:         logLevel,
			RequestLogEnable: strings.EqualFold(os.Getenv("REQUEST_LOG_ENABLE"), "true"),
		},
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis = &Redis{
			Address:  redisAddress,
			Username: os.Getenv("REDIS_USERNAME"),
			Password: os.Getenv("REDIS_PASSWORD"),
		}
	}

	err = cfg.Validate()
	if err != nil {
		return Local{}, errors.WithMessage(err, "validate config")
	}

	return cfg, nil
}

func (c Local) Validate() error {
	if len(c.SkebUrls) == 0 {
		return errors.New("at least one skeb api url is required")
	}
	for _, u := range c.SkebUrls {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return errors.Errorf("invalid skeb api url: %s", u)
		}
	}
	if c.RequestTimeoutInSec <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowInSec <= 0 {
		return errors.New("rate limit and window must be positive")
	}
	if c.Redis == nil && c.RateLimit.MaxTrackedIdentities <= 0 {
		return errors.New("max tracked identities must be positive if redis is not used")
	}
	return nil
}

func parseLogLevel(value string) (log.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	default:
		return 0, errors.Errorf("unexpected log level: %s", value)
	}
}

func getOr(key string, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func intOr(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.WithMessagef(err, "parse %s", key)
	}
	return parsed, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
