package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIBase     = "http://localhost:8000"
	DefaultUsersDBFile = "../fusion_project/users_db.json"
)

type Config struct {
	// smoke client
	APIBase     string
	UsersDBFile string
	HTTPTimeout time.Duration

	// authstub
	Env, Port                 string
	ReadTimeout, WriteTimeout time.Duration
	DBDsn                     string
	DBTimeout                 time.Duration
	JWTIssuer                 string
	JWTSecret                 string
	JWTKeys                   string
	JWTCurrentKID             string
	SessionTTL                time.Duration
	TrustProxyHeaders         bool
	MaxBodyBytes              int64
	MetricsAllowCIDR          string
	BcryptCost                int
	LoginFailDelay            time.Duration
	RateRPS                   float64
	RateBurst                 int
	RateAuthRPS               float64
	RateAuthBurst             int

	RedisAddr, RedisPass string
	RedisDB              int
	BruteLimit           int
	BruteWindow          time.Duration

	OTELEndpoint string
	OTELSample   float64
}

// -------- helpers --------
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func mustDur(k, def string) time.Duration {
	v := getenv(k, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(k + ": invalid duration " + v)
	}
	return d
}
func mustInt(k, def string) int {
	v := getenv(k, def)
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(k + ": invalid int " + v)
	}
	return n
}
func mustFloat(k, def string) float64 {
	v := getenv(k, def)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		panic(k + ": invalid float " + v)
	}
	return f
}
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	a := strings.Split(s, ",")
	for i := range a {
		a[i] = strings.TrimSpace(a[i])
	}
	return a
}

// mysqlDSNFromEnv builds a DSN from DB_* only when DB_HOST is set; an empty
// result selects the JSON file store.
func mysqlDSNFromEnv() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := getenv("DB_PORT", "3306")
	name := getenv("DB_DATABASE", "auth")
	user := getenv("DB_USERNAME", "auth")
	pass := getenv("DB_PASSWORD", "auth")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4",
		user, pass, host, port, name)
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBase:     strings.TrimRight(getenv("API_BASE", DefaultAPIBase), "/"),
		UsersDBFile: getenv("USERS_DB_FILE", DefaultUsersDBFile),
		HTTPTimeout: mustDur("HTTP_TIMEOUT", "0s"),

		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8000"),
		ReadTimeout:  mustDur("APP_READ_TIMEOUT", "5s"),
		WriteTimeout: mustDur("APP_WRITE_TIMEOUT", "10s"),
		DBDsn:        mysqlDSNFromEnv(),
		DBTimeout:    mustDur("DB_TIMEOUT", "3s"),

		JWTIssuer:     getenv("JWT_ISSUER", "authstub"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTKeys:       os.Getenv("JWT_KEYS"),
		JWTCurrentKID: os.Getenv("JWT_CURRENT_KID"),
		SessionTTL:    mustDur("SESSION_TTL", "24h"),

		TrustProxyHeaders: getenv("TRUST_PROXY", "false") == "true",

		MaxBodyBytes:     int64(mustInt("MAX_BODY_BYTES", "65536")),
		MetricsAllowCIDR: getenv("METRICS_ALLOW", "127.0.0.1/32"),
		BcryptCost:       mustInt("BCRYPT_COST", "12"),
		LoginFailDelay:   mustDur("LOGIN_FAIL_DELAY", "250ms"),
		RateRPS:          mustFloat("RATE_RPS", "10"),
		RateBurst:        mustInt("RATE_BURST", "10"),
		RateAuthRPS:      mustFloat("RATE_AUTH_RPS", "5"),
		RateAuthBurst:    mustInt("RATE_AUTH_BURST", "10"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     mustInt("REDIS_DB", "0"),
		BruteLimit:  mustInt("BRUTE_LIMIT", "5"),
		BruteWindow: mustDur("BRUTE_WINDOW", "15m"),

		OTELEndpoint: os.Getenv("OTEL_ENDPOINT"),
		OTELSample:   mustFloat("OTEL_SAMPLE", "0"),
	}
}

// MetricsCIDRs allows METRICS_ALLOW to carry a comma-separated list.
func (c Config) MetricsCIDRs() []string { return splitCSV(c.MetricsAllowCIDR) }
