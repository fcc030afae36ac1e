package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port    string `env:"PORT,default=8080"`
	GinMode string `env:"GIN_MODE,default=release"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	DB DBConfig

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	CORSOrigins    string `env:"CORS_ORIGINS"`
	RateLimitRPS   int    `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int    `env:"RATE_LIMIT_BURST,default=40"`

	PartialPaymentRatio   string `env:"PARTIAL_PAYMENT_RATIO,default=0.5"`
	FallbackPaymentMethod string `env:"FALLBACK_PAYMENT_METHOD,default=CARD"`

	SeedDemo     bool   `env:"SEED_DEMO,default=true"`
	DemoEmail    string `env:"DEMO_EMAIL,default=demo@opsdash.local"`
	DemoPassword string `env:"DEMO_PASSWORD,default=demo1234"`

	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT,default=10s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT,default=5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT,default=20s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=15s"`
}

type DBConfig struct {
	URL         string `env:"MYSQL_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	User string `env:"DB_USER,default=root"`
	Pass string `env:"DB_PASS"`
	Host string `env:"DB_HOST,default=127.0.0.1"`
	Port string `env:"DB_PORT,default=3306"`
	Name string `env:"DB_NAME,default=opsdash"`

	LogLevel        string        `env:"DB_LOG_LEVEL,default=warn"`
	SlowThreshold   time.Duration `env:"DB_SLOW_THRESHOLD,default=1s"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`
}

// Load reads an optional .env file and decodes the environment. The returned bool
// reports whether a .env file was found.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, loaded, fmt.Errorf("decode environment: %w", err)
	}
	if _, err := cfg.PartialRatio(); err != nil {
		return nil, loaded, err
	}
	return &cfg, loaded, nil
}

// PartialRatio is the server-wide share collected by a "partial payment" shortcut
// when neither the retreat nor the tenant overrides it.
func (c *Config) PartialRatio() (decimal.Decimal, error) {
	r, err := decimal.NewFromString(strings.TrimSpace(c.PartialPaymentRatio))
	if err != nil {
		return decimal.Zero, fmt.Errorf("PARTIAL_PAYMENT_RATIO: %w", err)
	}
	if !r.IsPositive() || !r.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("PARTIAL_PAYMENT_RATIO must be between 0 and 1, got %s", r)
	}
	return r, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// ParseCORSOrigins splits CORS_ORIGINS on commas; empty means any origin.
func (c *Config) ParseCORSOrigins() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// mysqlParams are forced onto every DSN. clientFoundRows makes UPDATE report matched
// rows, which the ownership-scoped updates rely on to detect a miss.
var mysqlParams = map[string]string{
	"charset":         "utf8mb4",
	"parseTime":       "True",
	"loc":             "UTC",
	"clientFoundRows": "true",
}

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	for k, v := range mysqlParams {
		if q.Get(k) == "" {
			q.Set(k, v)
		}
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

// mysqlDSNFromRaw takes a driver-format DSN and forces the flags the stores rely on.
// Other parameters are kept as given.
func mysqlDSNFromRaw(raw string) (string, string, error) {
	cfg, err := mysqldrv.ParseDSN(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", "", fmt.Errorf("mysql dsn missing database name")
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), cfg.DBName, nil
}

// DSN resolves the MySQL DSN: MYSQL_URL, then DATABASE_URL, then the DB_* parts.
func (c DBConfig) DSN() (string, string, error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		raw = strings.TrimSpace(c.DatabaseURL)
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return mysqlDSNFromRaw(raw)
	}

	q := url.Values{}
	for k, v := range mysqlParams {
		q.Set(k, v)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", c.User, c.Pass, c.Host, c.Port, c.Name, q.Encode())
	return dsn, c.Name, nil
}
