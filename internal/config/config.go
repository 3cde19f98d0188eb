package config

import "time"

type Config struct {
	Environment    Environment
	Log            Log
	HTTP           HTTPServer
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"store.db"`

	Redis   Redis   `envPrefix:"REDIS_"`
	Tebex   Tebex   `envPrefix:"TEBEX_"`
	Session Session `envPrefix:"SESSION_"`
	Store   Store   `envPrefix:"STORE_"`
}

type Tebex struct {
	HeadlessURL   string `env:"HEADLESS_URL" envDefault:"https://headless.tebex.io/api"`
	PluginURL     string `env:"PLUGIN_URL" envDefault:"https://plugin.tebex.io"`
	PublicToken   string `env:"PUBLIC_TOKEN"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// Servers maps a server name (Factions, Prison) to its webstore token.
	Servers         map[string]string `env:"SERVERS" envKeyValSeparator:":"`
	Timeout         time.Duration     `env:"TIMEOUT" envDefault:"15s"`
	BreakerFailures uint32            `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration     `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Session struct {
	HashKey  string `env:"HASH_KEY"`
	BlockKey string `env:"BLOCK_KEY"`

	// CookieMaxAge bounds the lifetime of the basketId cookie.
	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h"`
}

type Store struct {
	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	SalesTTL         time.Duration `env:"SALES_TTL" envDefault:"60s"`
	BannedUsers      []string      `env:"BANNED_USERS" envSeparator:","`
	BannedCountries  []string      `env:"BANNED_COUNTRIES" envSeparator:","`
	LoginRateLimit   int64         `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateWindow  time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	BasketRateLimit  int64         `env:"BASKET_RATE_LIMIT" envDefault:"30"`
	BasketRateWindow time.Duration `env:"BASKET_RATE_WINDOW" envDefault:"1m"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
